// Package project implements the Automation Studio project tree on top of
// a virtual filesystem.
//
// A project is a directory holding a project file (*.apj), a Logical tree
// of packages (each a directory with a Package.pkg listing its objects) and
// a Physical tree with one directory per build configuration. [Tree]
// satisfies deps.Tree, so the resolver, synchronizer and deployment
// orchestrator never touch these files directly.
//
// Tests use an in-memory filesystem:
//
//	t := project.New(memoryfs.New())
//
// while the command line opens the working directory:
//
//	t, err := project.Open(dir)
package project

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/projectionfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

const (
	packageFile  = "Package.pkg"
	physicalFile = "Physical.pkg"
)

// Tree is a project tree rooted at the root of its filesystem.
type Tree struct {
	fs vfs.FileSystem
}

var _ deps.Tree = (*Tree)(nil)

// New returns a Tree over fs.
func New(fs vfs.FileSystem) *Tree {
	return &Tree{fs: fs}
}

// Open returns a Tree over the directory dir of the host filesystem.
func Open(dir string) (*Tree, error) {
	fs, err := projectionfs.New(osfs.New(), dir)
	if err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidPath, err, "open %s", dir)
	}
	return New(fs), nil
}

// FS returns the filesystem the tree lives on.
func (t *Tree) FS() vfs.FileSystem { return t.fs }

// =============================================================================
// Structure
// =============================================================================

// IsProject reports whether dir holds a project file.
func (t *Tree) IsProject(dir string) bool {
	_, ok := findFile(t.fs, dir, hasSuffix(".apj"))
	return ok
}

// IsLibrary reports whether dir holds a library file.
func (t *Tree) IsLibrary(dir string) bool {
	_, ok := findFile(t.fs, dir, hasSuffix(".lby"))
	return ok
}

// IsPackage reports whether dir holds a package file.
func (t *Tree) IsPackage(dir string) bool {
	_, ok := findFile(t.fs, dir, named(packageFile))
	return ok
}

// IsProgram reports whether dir holds a program file (*.prg).
func (t *Tree) IsProgram(dir string) bool {
	_, ok := findFile(t.fs, dir, hasSuffix(".prg"))
	return ok
}

// Exists reports whether p names a file or directory.
func (t *Tree) Exists(p string) bool {
	_, err := t.fs.Stat(p)
	return err == nil
}

// BuildConfigs returns the build configurations of the project, as listed
// in Physical/Physical.pkg or, when that file is missing, as found in the
// Physical directory.
func (t *Tree) BuildConfigs() ([]string, error) {
	doc, err := readXML(t.fs, path.Join(deps.PhysicalDir, physicalFile))
	if err != nil {
		if !errors.Is(err, vfs.ErrNotExist) {
			return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidFormat, err, "read build configurations")
		}
		var out []string
		for _, e := range listDir(t.fs, deps.PhysicalDir) {
			if e.dir {
				out = append(out, e.name)
			}
		}
		return out, nil
	}
	var out []string
	if objs := doc.Root().SelectElement("Objects"); objs != nil {
		for _, o := range objs.SelectElements("Object") {
			if strings.EqualFold(o.SelectAttrValue("Type", ""), "Configuration") {
				out = append(out, strings.TrimSpace(o.Text()))
			}
		}
	}
	return out, nil
}

// =============================================================================
// Libraries
// =============================================================================

// LibraryDependencies returns the names of the libraries the library in
// dir depends on.
func (t *Tree) LibraryDependencies(dir string) ([]string, error) {
	lib, err := t.Library(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(lib.Dependencies))
	for i, d := range lib.Dependencies {
		names[i] = d.Name
	}
	return names, nil
}

// =============================================================================
// Packages
// =============================================================================

// OpenNode opens the package in dir.
func (t *Tree) OpenNode(dir string) (deps.Node, error) {
	p, err := t.OpenPackage(dir)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EnsurePackagePath creates every package missing along dir. The first
// segment (normally Logical) must already be a package.
func (t *Tree) EnsurePackagePath(dir string) error {
	segs := strings.Split(path.Clean(dir), "/")
	node, err := t.OpenPackage(segs[0])
	if err != nil {
		return err
	}
	for _, seg := range segs[1:] {
		next := path.Join(node.Dir(), seg)
		if t.IsPackage(next) {
			if node, err = t.OpenPackage(next); err != nil {
				return err
			}
			continue
		}
		if node, err = node.CreatePackage(seg); err != nil {
			return err
		}
	}
	return nil
}

// Overlay copies the content of src into dst, replacing files present in
// both. skip is consulted for entries at every depth.
func (t *Tree) Overlay(src, dst string, skip func(name string) bool) error {
	if err := copyTree(t.fs, src, dst, skip); err != nil {
		return lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "overlay %s onto %s", src, dst)
	}
	return nil
}

// =============================================================================
// Deployment
// =============================================================================

// OpenTarget opens the deployment descriptor of config.
func (t *Tree) OpenTarget(config string) (deps.Target, error) {
	d, err := t.OpenDeployment(config)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func noNode(kind, p string) error {
	return fmt.Errorf("%s %s: %w", kind, p, deps.ErrNoNode)
}
