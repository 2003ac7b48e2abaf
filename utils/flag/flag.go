/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
	"os"
	"strings"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment bool
	ServiceName   string
	ByPassAuth    bool
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "name reported to logging and tracing")
	flag.BoolVar(&ByPassAuth, "no_auth", false, "skip the auth middleware, local development only")
	// Parsing here would reject the -test.* flags that `go test` passes,
	// since they are registered after package init. Defaults above are
	// already assigned, so test binaries keep the same values.
	if !strings.HasSuffix(os.Args[0], ".test") {
		flag.Parse()
	}
}
