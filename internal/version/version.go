// Package version carries build metadata injected via -ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3 -X .../internal/version.Commit=abc1234"
var (
	Version = "dev"
	Commit  = "unknown"
)
