package model

import "time"

/*

Friendship is the derived symmetric fact "A and B follow each other"

It is keyed by the unordered user pair, stored canonically with
UserAID < UserBID. A row exists if and only if both FollowEdge(A→B) and
FollowEdge(B→A) currently exist. It is never written by a client action
directly, only by the friendship deriver inside the follow/unfollow
transaction.

*/
type Friendship struct {
	UserAID   string `gorm:"primaryKey"`
	UserBID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// CanonicalPair orders two user ids into the canonical (a < b) friendship key.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
