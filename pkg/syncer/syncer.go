// Package syncer places resolved packages into the logical tree of a
// project.
//
// Packages are taken from the binary cache (node_modules) and placed
// according to their role:
//
//   - project: overlaid onto the project root, every package.json left out
//   - hmi-project: overlaid onto the project root as is
//   - program, package: each item copied into Logical/<destination>
//   - library, undefined: the whole directory copied into
//     Logical/<destination>, by default Logical/Libraries/Loupe
//
// Programs and libraries are only placed when the root is a project.
// Synchronizing the same set twice leaves the tree unchanged.
package syncer

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/manifest"
)

// Root is the project root inside the tree.
const Root = "."

// Synchronizer copies packages from the binary cache into the project.
type Synchronizer struct {
	fs         vfs.FileSystem
	tree       deps.Tree
	classifier *deps.Classifier
	Logger     *log.Logger
}

// New returns a Synchronizer. If logger is nil, log.Default() is used.
func New(fs vfs.FileSystem, tree deps.Tree, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Synchronizer{
		fs:         fs,
		tree:       tree,
		classifier: deps.NewClassifier(fs, tree),
		Logger:     logger,
	}
}

// Sync places every package of set, in set order. Packages without a
// manifest in the binary cache are skipped.
func (s *Synchronizer) Sync(ctx context.Context, set *deps.Set) error {
	h := &placer{s: s, inProject: s.tree.IsProject(Root)}
	for _, ref := range set.Refs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir := deps.BinaryDir(ref)
		if !manifest.Exists(s.fs, deps.BinaryManifest(ref)) {
			s.Logger.Debug("not in binary cache, skipping", "package", ref)
			continue
		}
		role := s.classifier.Classify(dir)
		s.Logger.Debug("synchronizing", "package", ref, "role", role)
		if err := deps.Dispatch(role, ref, h); err != nil {
			return err
		}
	}
	return nil
}

// placer handles one role each.
type placer struct {
	s         *Synchronizer
	inProject bool
}

func (p *placer) Project(ref deps.Reference) error {
	return p.s.tree.Overlay(deps.BinaryDir(ref), Root, isManifest)
}

func (p *placer) HMIProject(ref deps.Reference) error {
	return p.s.tree.Overlay(deps.BinaryDir(ref), Root, nil)
}

func (p *placer) Program(ref deps.Reference) error {
	if !p.inProject {
		p.s.Logger.Debug("not in a project, skipping", "package", ref)
		return nil
	}
	declared, err := p.s.destination(ref)
	if err != nil {
		return err
	}
	dest := deps.LogicalPath(declared, deps.LogicalDir)
	if dest != deps.LogicalDir {
		if err := p.s.tree.EnsurePackagePath(dest); err != nil {
			return err
		}
	}
	node, err := p.s.tree.OpenNode(dest)
	if err != nil {
		return err
	}

	src := deps.BinaryDir(ref)
	items, err := vfs.ReadDir(p.s.fs, src)
	if err != nil {
		return err
	}
	for _, item := range items {
		name := item.Name()
		if deps.IsFiltered(name) {
			continue
		}
		if err := removeIfPresent(node, name); err != nil {
			return err
		}
		if err := node.AddObject(path.Join(src, name)); err != nil {
			return err
		}
	}
	return nil
}

func (p *placer) Library(ref deps.Reference) error {
	if !p.inProject {
		p.s.Logger.Debug("not in a project, skipping", "package", ref)
		return nil
	}
	declared, err := p.s.destination(ref)
	if err != nil {
		return err
	}
	dest := deps.LogicalPath(declared, deps.LibraryDir)
	if err := p.s.tree.EnsurePackagePath(dest); err != nil {
		return err
	}
	node, err := p.s.tree.OpenNode(dest)
	if err != nil {
		return err
	}
	if err := removeIfPresent(node, ref.BaseName()); err != nil {
		return err
	}
	return node.AddObject(deps.BinaryDir(ref))
}

// destination returns the logical destination ref declares, or "". A
// destination leaving the Logical tree is an error.
func (s *Synchronizer) destination(ref deps.Reference) (string, error) {
	dest, ok := manifest.String(s.fs, deps.BinaryManifest(ref), "lpm", "logical", "destination")
	if !ok || dest == "" {
		return "", nil
	}
	if err := lpmerrors.ValidateDestination(dest); err != nil {
		return "", lpmerrors.Wrap(lpmerrors.ErrCodeInvalidManifest, err, "%s: invalid logical destination", ref.FullName())
	}
	return dest, nil
}

func removeIfPresent(node deps.Node, name string) error {
	if err := node.RemoveObject(name); err != nil && !errors.Is(err, deps.ErrNoNode) {
		return err
	}
	return nil
}

func isManifest(name string) bool {
	return strings.EqualFold(name, deps.ManifestFile)
}
