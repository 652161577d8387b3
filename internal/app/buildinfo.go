package app

import (
	"fmt"
	"runtime/debug"
)

// Build information set with -ldflags "-X github.com/hyperifyio/doclens/internal/app.BuildVersion=...".
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// Version describes the running binary. When no commit was stamped at link
// time the VCS revision recorded by the go tool is used.
func Version() string {
	commit := BuildCommit
	if commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					commit = s.Value
				}
			}
		}
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (commit %s, built %s)", BuildVersion, commit, BuildDate)
}
