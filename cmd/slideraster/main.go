package main

import (
	"github.com/ironlake/slideraster/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cli.Execute(Version, GitCommit)
}
