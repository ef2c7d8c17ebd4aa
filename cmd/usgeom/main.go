package main

import (
	"os"

	"github.com/ironsheep/usgeom/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{
		Version: Version,
		Commit:  GitCommit,
		Date:    BuildTime,
	}))
}
