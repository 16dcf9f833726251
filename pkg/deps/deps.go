package deps

import (
	"context"
	"errors"
)

const (
	DefaultMaxDepth = 50 // Default maximum dependency depth
)

// ErrNoNode is returned (possibly wrapped) by a [Tree] when a path does not
// correspond to a node of the requested kind. Callers treat it as absence.
var ErrNoNode = errors.New("no such node")

// Options configures dependency resolution behavior.
type Options struct {
	MaxDepth int                  // Maximum depth to traverse (default: 50)
	Logger   func(string, ...any) // Progress/debug callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Registry answers whether a package exists under [Scope] upstream.
// It is consulted to filter the declared dependencies of source packages.
type Registry interface {
	Exists(ctx context.Context, ref Reference) (bool, error)
}

// Tree is the structured project-tree capability used by the engine.
// All paths are slash separated and relative to the project root.
//
// The structural checks never fail; a path that cannot be read simply does
// not have the shape asked about.
type Tree interface {
	// IsProject reports whether dir holds a project file (*.apj).
	IsProject(dir string) bool
	// IsLibrary reports whether dir holds a library file (*.lby).
	IsLibrary(dir string) bool
	// IsPackage reports whether dir holds a package file (Package.pkg).
	IsPackage(dir string) bool

	// LibraryDependencies returns the dependency names a library declares.
	LibraryDependencies(dir string) ([]string, error)

	// OpenNode opens the package node at dir. It fails with [ErrNoNode]
	// when dir is not a package.
	OpenNode(dir string) (Node, error)
	// EnsurePackagePath creates every missing package node along dir. The
	// first segment must already be a package.
	EnsurePackagePath(dir string) error
	// Overlay merges the content of src into dst, replacing files that
	// exist in both. Entries for which skip returns true are not copied.
	Overlay(src, dst string, skip func(name string) bool) error

	// OpenTarget opens the deployment descriptor of a build configuration.
	OpenTarget(config string) (Target, error)
}

// Node is an open package node of a [Tree].
type Node interface {
	// Dir returns the node's path.
	Dir() string
	// AddEmptyPackage creates and registers an empty child package.
	AddEmptyPackage(name string) (Node, error)
	// RemoveObject removes a child and its registration. It fails with
	// [ErrNoNode] when no such child exists.
	RemoveObject(name string) error
	// AddObject copies src into the node and registers it, replacing any
	// registration of the same name.
	AddObject(src string) error
}

// Target is the open deployment descriptor of one build configuration.
// Changes are only persisted by Save.
type Target interface {
	// Config returns the build configuration name.
	Config() string
	// DeployLibrary registers the library folder/name with attribute overrides.
	DeployLibrary(folder, name string, attrs map[string]string) error
	// DeployTask registers the program source found under location in taskClass.
	DeployTask(location, source, taskClass string) error
	// SetPreBuildStep sets the configuration's pre-build command.
	SetPreBuildStep(cmd string) error
	// Save writes the descriptor back.
	Save() error
}
