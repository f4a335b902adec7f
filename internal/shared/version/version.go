// Package version carries the build version stamped at link time.
package version

// Version is overridden with -ldflags at release builds.
var Version = "dev"
