// Package version holds build metadata set via -ldflags "-X".
package version

//nolint:revive // Overwritten by the linker.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders "version (commit, date)" for logs and the health endpoint.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
