// Package version reports build information for nescore.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X nescore/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string
	Arch      string
	Modified  bool
}

// GetBuildInfo fills in anything not set by -ldflags from the VCS stamp the
// go command embeds.
func GetBuildInfo() BuildInfo {
	bi := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return bi
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "unknown" {
				bi.GitCommit = setting.Value
			}
		case "vcs.time":
			if BuildTime == "unknown" {
				bi.BuildTime = setting.Value
			}
		case "vcs.modified":
			bi.Modified = setting.Value == "true"
		}
	}
	return bi
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// GetVersion returns a simple version string
func GetVersion() string {
	bi := GetBuildInfo()
	if bi.Version == "dev" && bi.GitCommit != "unknown" {
		v := "dev-" + shortCommit(bi.GitCommit)
		if bi.Modified {
			v += "-dirty"
		}
		return v
	}
	return bi.Version
}

// WriteBuildInfo prints the build information, one field per line.
func WriteBuildInfo(w io.Writer) {
	bi := GetBuildInfo()
	fmt.Fprintf(w, "nescore %s\n", GetVersion())
	fmt.Fprintf(w, "Git Commit:  %s\n", bi.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", bi.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", bi.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", bi.Platform, bi.Arch)
}
