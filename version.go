package bearchat

import (
	"fmt"
	"runtime"
)

// Name identifies bearchat in CLI output and outbound requests.
const Name = "bearchat"

// Release metadata, set at build time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/bearchat.Version=1.0.0 -X github.com/ZaguanLabs/bearchat.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns Version with the short commit appended when known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// BuildSummary describes the running binary for --version output.
func BuildSummary() string {
	return fmt.Sprintf("%s %s (built %s, %s %s/%s)",
		Name, FullVersion(), BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies bearchat and its platform to the translation API.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s)", Name, Version, runtime.GOOS, runtime.GOARCH)
}
