// Package buildinfo carries the mdtouml name and the version stamped in at
// link time:
//
//	go build -ldflags "-X github.com/matzehuels/mdtouml/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/mdtouml/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/mdtouml/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/mdtouml
//
// The version shows up in three places: `mdtouml --version`, the User-Agent
// sent to the rendering server and the footer of generated viewer pages.
package buildinfo

import "fmt"

// Name is the program name.
const Name = "mdtouml"

// Link-time values. Left unset, they describe a local development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s", Name, Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies mdtouml to the rendering server.
func UserAgent() string {
	return Name + "/" + Version
}
