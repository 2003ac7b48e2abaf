package utils

import (
	"math/rand"
	"os"
)

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// Min returns the smaller of two ints.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomAlphabetString generates a lower case string of the given length.
func RandomAlphabetString(length int) string {
	runes := make([]byte, length)
	for i := range runes {
		runes[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(runes)
}

// IsProdEnv returns true iff the process runs with the production
// environment.
func IsProdEnv() bool {
	return os.Getenv("STRAND_ENV") == "prod"
}
