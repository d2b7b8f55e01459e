// Package version holds build metadata injected via ldflags.
package version

// SDKID identifies this client in the User-Agent header.
const SDKID = "nyris-go"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
