// Package version holds build information, set with -ldflags:
//
//	go build -ldflags "-X github.com/Sanjai-Magilan/insurance-assistant/pkg/version.Version=1.2.0"
package version

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)
