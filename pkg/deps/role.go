package deps

import (
	"strings"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// Role is the fixed classification of a package. It decides where the
// package is placed in a project and how it is deployed.
type Role int

const (
	// Undefined means no role could be determined. It is handled like Library.
	Undefined Role = iota
	// Project is a complete starter project overlaid onto the project root.
	Project
	// HMIProject is overlaid like Project, manifest included, and is never
	// expanded for dependencies.
	HMIProject
	// Program is a deployable unit of logic with optional task wiring.
	Program
	// Package is handled exactly like Program.
	Package
	// Library is reusable code placed under the library subtree.
	Library
)

var roleNames = [...]string{
	Undefined:  "undefined",
	Project:    "project",
	HMIProject: "hmi-project",
	Program:    "program",
	Package:    "package",
	Library:    "library",
}

// String returns the manifest spelling of the role.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return roleNames[Undefined]
	}
	return roleNames[r]
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ParseRole maps a declared lpm.type value to a Role. Unknown values map to
// Undefined so a manifest can never make classification fail.
func ParseRole(s string) Role {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == s {
			return Role(r)
		}
	}
	return Undefined
}

// RoleHandler receives exactly one callback per dispatched package.
// Program and Package share a handler, as do Library and Undefined.
type RoleHandler interface {
	Project(ref Reference) error
	HMIProject(ref Reference) error
	Program(ref Reference) error
	Library(ref Reference) error
}

// Dispatch routes ref to the handler method for role.
func Dispatch(role Role, ref Reference, h RoleHandler) error {
	switch role {
	case Project:
		return h.Project(ref)
	case HMIProject:
		return h.HMIProject(ref)
	case Program, Package:
		return h.Program(ref)
	case Library, Undefined:
		return h.Library(ref)
	}
	return lpmerrors.New(lpmerrors.ErrCodeInternal, "unhandled role %d for %s", int(role), ref)
}
