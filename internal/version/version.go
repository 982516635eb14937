// Package version exposes build information set through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/longkey1/gptmd/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

// Short returns the version number only.
func Short() string {
	return Version
}

// Info returns the full build description.
func Info() string {
	return fmt.Sprintf("gptmd %s\n  commit: %s\n  built:  %s\n  go:     %s",
		Version, CommitSHA, BuildTime, runtime.Version())
}
