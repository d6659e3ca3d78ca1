// Package version reports how the versio binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Release builds stamp these with
//
//	-ldflags "-X github.com/Aman-CERP/versio/pkg/version.Version=$(VERSION)"
//
// and likewise for Commit and Date.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"

	GoVersion = runtime.Version()
)

// BuildInfo is the JSON shape printed by `versio version --json`.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo collects the build metadata. Commit and Date fall back to the
// VCS stamp the go command embeds when ldflags were not used.
func GetInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "unknown":
				info.Commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && info.Date == "unknown":
				info.Date = s.Value
			}
		}
	}
	return info
}

// String is the one-line form used by `versio version`.
func String() string {
	i := GetInfo()
	return fmt.Sprintf("versio %s (commit: %s, built: %s, go: %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}

// Short returns Version alone.
func Short() string {
	return Version
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
