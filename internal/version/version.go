// Package version provides build information for nescore
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// Set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
	Modified  bool   `json:"modified"`
}

// GetBuildInfo merges the ldflags values with VCS stamps from the binary
func GetBuildInfo() BuildInfo {
	buildInfo := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if GitCommit == "unknown" {
					buildInfo.GitCommit = setting.Value
				}
			case "vcs.time":
				if BuildTime == "unknown" {
					buildInfo.BuildTime = setting.Value
				}
			case "vcs.modified":
				buildInfo.Modified = setting.Value == "true"
			}
		}
	}

	return buildInfo
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// GetVersion returns a simple version string
func GetVersion() string {
	if Version == "dev" {
		if commit := GetBuildInfo().GitCommit; commit != "unknown" {
			return "dev-" + shortCommit(commit)
		}
	}
	return Version
}

// GetDetailedVersion returns a one-line version string
func GetDetailedVersion() string {
	buildInfo := GetBuildInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "nescore version %s", buildInfo.Version)

	if buildInfo.GitCommit != "unknown" {
		fmt.Fprintf(&b, " (commit %s", shortCommit(buildInfo.GitCommit))
		if buildInfo.Modified {
			b.WriteString(", modified")
		}
		b.WriteString(")")
	}

	if buildInfo.BuildTime != "unknown" {
		if parsedTime, err := time.Parse(time.RFC3339, buildInfo.BuildTime); err == nil {
			fmt.Fprintf(&b, " built on %s", parsedTime.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintf(&b, " built on %s", buildInfo.BuildTime)
		}
	}

	fmt.Fprintf(&b, " with %s for %s/%s", buildInfo.GoVersion, buildInfo.Platform, buildInfo.Arch)
	return b.String()
}

// PrintBuildInfo writes formatted build information to w
func PrintBuildInfo(w io.Writer) {
	buildInfo := GetBuildInfo()

	fmt.Fprintf(w, "nescore - 6502 instruction interpreter\n")
	fmt.Fprintf(w, "Version:     %s\n", buildInfo.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", buildInfo.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", buildInfo.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", buildInfo.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", buildInfo.Platform, buildInfo.Arch)
}
