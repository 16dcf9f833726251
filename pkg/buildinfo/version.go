// Package buildinfo holds the version stamped into lpm at build time.
//
//	go build -ldflags "-X github.com/loupeteam/lpm/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/loupeteam/lpm/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/loupeteam/lpm/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies lpm to package registries.
func UserAgent() string {
	return "lpm/" + Version + " (https://github.com/loupeteam/lpm)"
}
