package version

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/pflag"
)

// set by -ldflags at build time
var (
	version   = "dev"
	gitCommit = "unknown"
)

var printVersion bool

// AddFlags ...
func AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&printVersion, "version", false, "print version and exit")
}

// PrintVersionOrContinue prints version info and exits if --version was set.
func PrintVersionOrContinue() {
	fmt.Printf("version: %s, commit: %s, go: %s\n", version, gitCommit, runtime.Version())
	if printVersion {
		os.Exit(0)
	}
}
