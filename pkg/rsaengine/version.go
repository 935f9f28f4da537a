package rsaengine

// Version is populated at build time via ldflags.
var Version = "v0.0.0-in-progress"

// EngineVersion returns the build version. In development it defaults to
// v0.0.0-in-progress.
func EngineVersion() string {
	return Version
}
