package app

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// Version is filled by ldflags in release builds.
	Version = "dev"
	// BuildDate is filled by ldflags in release builds.
	BuildDate = ""
	// Commit is filled by ldflags; falls back to the embedded VCS revision.
	Commit = ""
)

const shortCommitLen = 7

var readBuildInfo = debug.ReadBuildInfo

func BuildVersion() string {
	version := strings.TrimSpace(Version)
	if version == "" {
		return "dev"
	}

	return version
}

func BuildDateYMD() string {
	raw := strings.TrimSpace(BuildDate)
	if raw == "" {
		return ""
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.Format("2006-01-02")
	}

	if len(raw) >= len("2006-01-02") {
		date := raw[:len("2006-01-02")]
		if _, err := time.Parse("2006-01-02", date); err == nil {
			return date
		}
	}

	return raw
}

func BuildCommit() string {
	commit := strings.TrimSpace(Commit)
	if commit == "" {
		commit = vcsRevision()
	}
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}

	return commit
}

func vcsRevision() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}

	return ""
}

// BuildString renders "<version> (<date>, <commit>)", omitting unknown parts.
func BuildString() string {
	var extra []string
	if date := BuildDateYMD(); date != "" {
		extra = append(extra, date)
	}
	if commit := BuildCommit(); commit != "" {
		extra = append(extra, commit)
	}
	if len(extra) == 0 {
		return BuildVersion()
	}

	return fmt.Sprintf("%s (%s)", BuildVersion(), strings.Join(extra, ", "))
}
