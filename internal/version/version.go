// Package version provides build-time version information.
package version

import "fmt"

// Name is the application name shown in titles and logs.
const Name = "RefBoard"

// These variables are set at build time using -ldflags
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String describes the build in one line.
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", Name, Version, GitCommit, BuildTime)
}
