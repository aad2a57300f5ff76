package version

// Version is the current release of cardindex.
const Version = "0.3.0"

// BuildVersion returns the version string for display.
func BuildVersion() string {
	return "cardindex version " + Version
}
