// Package main provides the setflowctl entry point.
package main

import (
	"os"
	"runtime/debug"

	"github.com/claude/setflow/internal/cli"
)

// Version information set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	fillVersionFromBuildInfo()
	cli.SetVersionInfo(version, commit)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func fillVersionFromBuildInfo() {
	if version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	commit = revisionFromSettings(info.Settings)
}

func revisionFromSettings(settings []debug.BuildSetting) string {
	var revision string
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if len(revision) < 7 {
		return "unknown"
	}
	c := revision[:7]
	if dirty {
		c += "-dirty"
	}
	return c
}
