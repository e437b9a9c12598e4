// Command minilock encrypts files for one or more recipients in the miniLock format.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/minilock/internal/commands"
	"github.com/idelchi/minilock/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "unknown - unofficial build"

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minilock: %v\n", err)

		os.Exit(1)
	}
}
