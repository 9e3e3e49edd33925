// Package version holds build metadata injected with -ldflags.
package version

// Version is overridden at build time: -X github.com/aristath/fundrisk/internal/version.Version=...
var Version = "dev"
