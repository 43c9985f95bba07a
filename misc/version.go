// Package misc keeps program identity values which are set at build time.
package misc

// Values below are overwritten with -ldflags "-X pptgen/misc.version=..." by
// the build.
var (
	appName = "pptgen"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
