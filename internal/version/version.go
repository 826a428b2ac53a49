// Package version holds build version information.
package version

// Version is the crate-checker release version. Overridable at build
// time with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "1.0.0"

// Commit is the VCS revision the binary was built from.
var Commit = "unknown"
