package deps

import (
	"path"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/loupeteam/lpm/pkg/manifest"
)

// Classifier determines the role of packages on disk.
type Classifier struct {
	fs   vfs.FileSystem
	tree Tree
}

// NewClassifier returns a Classifier reading manifests from fs and falling
// back to structural detection through tree.
func NewClassifier(fs vfs.FileSystem, tree Tree) *Classifier {
	return &Classifier{fs: fs, tree: tree}
}

// Classify returns the role of the package in dir.
//
// A declared lpm.type wins. Otherwise the directory is probed for a project
// file, a library file and a package file, in that order. Classify never
// fails: anything unrecognized is Undefined.
func (c *Classifier) Classify(dir string) Role {
	if t, ok := manifest.String(c.fs, path.Join(dir, ManifestFile), "lpm", "type"); ok {
		return ParseRole(t)
	}
	switch {
	case c.tree.IsProject(dir):
		return Project
	case c.tree.IsLibrary(dir):
		return Library
	case c.tree.IsPackage(dir):
		return Package
	}
	return Undefined
}

// ClassifyRef classifies ref where it is materialized. See [Classifier.Locate].
func (c *Classifier) ClassifyRef(ref Reference) Role {
	dir, _ := c.Locate(ref)
	return c.Classify(dir)
}

// Locate returns the directory holding ref: the binary cache when npm
// left a manifest there, else its source location. binary reports which.
// A binary directory without a manifest is a leftover and does not count.
func (c *Classifier) Locate(ref Reference) (dir string, binary bool) {
	if manifest.Exists(c.fs, BinaryManifest(ref)) {
		return BinaryDir(ref), true
	}
	return SourceDir(ref), false
}

// ClassifyManifest returns the role declared by an already loaded manifest.
// A manifest without a declaration is a library.
func ClassifyManifest(m *manifest.Manifest) Role {
	if m.Type() == "" {
		return Library
	}
	return ParseRole(m.Type())
}
