package deps

import (
	"regexp"
	"strings"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// Scope is the organizational npm scope every managed package lives under.
const Scope = "@loupeteam"

var (
	scopeRe   = regexp.MustCompile(`(?i)^(?:@loupeteam[\\/]|[\\/])?([\w@.]+)$`)
	versionRe = regexp.MustCompile(`(?i)^(\w+)@?(?:@v?(\d+\.\d+\.\d+))?$`)
)

// Reference identifies a scoped package plus an optional exact version pin.
//
// Name is always the lower-cased base name without the scope prefix.
// Version is empty or of the form "v<major>.<minor>.<patch>" with any
// leading zeros kept as written.
type Reference struct {
	Name    string
	Version string
}

// ParseReference parses user or manifest input into a Reference.
//
// Accepted forms include "atn", "ATN", "atn@", "/atn", "@loupeteam/atn",
// "@loupeteam\atn", "atn@3.1.0" and "atn@v03.01.00". Names under any other
// scope, or versions that are not three dotted numbers, are rejected with
// an INVALID_PACKAGE error.
func ParseReference(s string) (Reference, error) {
	m := scopeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Reference{}, lpmerrors.New(lpmerrors.ErrCodeInvalidPackage, "invalid package reference: %q", s)
	}
	v := versionRe.FindStringSubmatch(m[1])
	if v == nil {
		return Reference{}, lpmerrors.New(lpmerrors.ErrCodeInvalidPackage, "invalid package reference: %q", s)
	}
	ref := Reference{Name: strings.ToLower(v[1])}
	if v[2] != "" {
		ref.Version = "v" + v[2]
	}
	return ref, nil
}

// ParseReferences parses every input, stopping at the first invalid one.
func ParseReferences(inputs []string) ([]Reference, error) {
	refs := make([]Reference, 0, len(inputs))
	for _, in := range inputs {
		ref, err := ParseReference(in)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// BaseName returns the package name without the scope.
func (r Reference) BaseName() string { return r.Name }

// FullName returns the scoped package name, e.g. "@loupeteam/atn".
func (r Reference) FullName() string { return Scope + "/" + r.Name }

// Spec returns the argument handed to the upstream package manager.
func (r Reference) Spec() string {
	if r.Version == "" {
		return r.FullName()
	}
	return r.FullName() + "@" + strings.TrimPrefix(r.Version, "v")
}

// String returns the scoped name followed by "@version" when pinned.
func (r Reference) String() string {
	if r.Version == "" {
		return r.FullName()
	}
	return r.FullName() + "@" + r.Version
}

// key is the identity used for case-insensitive deduplication.
func (r Reference) key() string { return strings.ToLower(r.Name) }

// SameAs reports whether r and o name the same package, ignoring case and version.
func (r Reference) SameAs(o Reference) bool { return r.key() == o.key() }
