// Package version holds the build identity stamped into the rustdex
// binary. The CLI, SCIP exports, and snapshot headers all read the
// version from here rather than carrying their own copies.
package version

// Release builds override these through ldflags:
//
//	go build -ldflags "-X rustdex/internal/version.Version=1.0.0 -X rustdex/internal/version.Commit=abc123"
var (
	// Version is the rustdex semantic version.
	Version = "0.4.0"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Info renders the version, with a short commit suffix when the build
// stamped one in.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full renders the multi-line block behind `rustdex version`.
func Full() string {
	return "rustdex version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
