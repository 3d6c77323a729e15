package cli

import "fmt"

// These will be set by build scripts
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func versionTemplate() string {
	return fmt.Sprintf("replay %s\nGit Commit: %s\nBuild Date: %s\n", version, gitCommit, buildDate)
}
