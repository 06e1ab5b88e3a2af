// Package version holds build metadata injected via -ldflags.
package version

//nolint:gochecknoglobals
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
