package manifest

import (
	"strconv"
	"strings"
)

const (
	docsURL     = "https://loupeteam.github.io/LoupeDocs/libraries/"
	repoURL     = "https://github.com/loupeteam/"
	libraryRole = "library"
)

// LibraryInfo describes an Automation Studio library for which a manifest
// is generated.
type LibraryInfo struct {
	FullName     string       // scoped package name
	BaseName     string       // library directory name as written
	Version      string       // version from the library file
	Description  string       // description from the library file
	Dependencies Dependencies // in-scope dependencies with constraints
}

// NewLibraryManifest builds the manifest published for a library.
//
// The lpm block of an existing manifest is kept only when it already
// declares the library role; otherwise it is replaced by {"type":"library"}.
func NewLibraryManifest(info LibraryInfo, existing *Extension) *Manifest {
	lower := strings.ToLower(info.BaseName)
	desc := info.Description
	if desc == "" {
		desc = "Loupe's " + lower + " library for Automation Runtime"
	}
	ext := existing
	if ext == nil || ext.Type != libraryRole {
		ext = &Extension{Type: libraryRole}
	}
	deps := info.Dependencies
	if deps == nil {
		deps = Dependencies{}
	}
	return &Manifest{
		Name:         strings.ToLower(info.FullName),
		Version:      FormatVersion(info.Version),
		Description:  desc,
		Homepage:     docsURL + lower + ".html",
		Author:       "Loupe",
		License:      "MIT",
		Repository:   &Repository{Type: "git", URL: repoURL + info.BaseName},
		LPM:          ext,
		Dependencies: deps,
	}
}

// FormatVersion normalizes an Automation Studio version ("1.02.0") to
// semantic form ("1.2.0"). Components that are not numbers are kept.
func FormatVersion(v string) string {
	parts := strings.Split(strings.TrimSpace(v), ".")
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			parts[i] = strconv.Itoa(n)
		}
	}
	return strings.Join(parts, ".")
}

// VersionConstraint renders a library dependency's version window as an
// npm range. An open window on both ends becomes "*".
func VersionConstraint(min, max string) string {
	var parts []string
	if min != "" {
		parts = append(parts, ">="+FormatVersion(min))
	}
	if max != "" {
		parts = append(parts, "<="+FormatVersion(max))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}
