package deps

import (
	"context"
	"errors"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/manifest"
)

// Edge is a declared dependency from one resolved package to another.
type Edge struct {
	From Reference
	To   Reference
}

// Result is the outcome of [Resolver.Walk].
type Result struct {
	Set   *Set            // resolved packages in first-seen order
	Edges []Edge          // declared dependencies between packages of Set
	roles map[string]Role // role of every classified package
}

// Role returns the role ref was classified as during the walk, or
// Undefined if it was never classified.
func (r *Result) Role(ref Reference) Role {
	if r == nil {
		return Undefined
	}
	return r.roles[ref.key()]
}

// Resolver expands root references into their transitive dependency set.
type Resolver struct {
	fs         vfs.FileSystem
	tree       Tree
	registry   Registry
	classifier *Classifier
	opts       Options
}

// NewResolver returns a Resolver. registry filters the declared
// dependencies of source packages; when nil, source packages contribute no
// dependencies.
func NewResolver(fs vfs.FileSystem, tree Tree, registry Registry, opts Options) *Resolver {
	return &Resolver{
		fs:         fs,
		tree:       tree,
		registry:   registry,
		classifier: NewClassifier(fs, tree),
		opts:       opts.WithDefaults(),
	}
}

// Resolve returns roots and everything they depend on. See [Resolver.Walk].
func (r *Resolver) Resolve(ctx context.Context, roots []Reference) (*Set, error) {
	res, err := r.Walk(ctx, roots)
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// Walk expands roots depth-first.
//
// Each package is followed by its dependencies before its next sibling.
// When a package at some level is an hmi-project, that level contributes
// exactly the references it was given and nothing below it. Version pins
// of transitive dependencies are not carried.
func (r *Resolver) Walk(ctx context.Context, roots []Reference) (*Result, error) {
	w := &walker{
		r:       r,
		ctx:     ctx,
		onStack: make(map[string]bool),
		roles:   make(map[string]Role),
	}
	refs, err := w.level(roots, 0)
	if err != nil {
		return nil, err
	}
	set := NewSet(refs...)

	var edges []Edge
	seen := make(map[[2]string]bool)
	for _, e := range w.edges {
		k := [2]string{e.From.key(), e.To.key()}
		if seen[k] || !set.Contains(e.From) || !set.Contains(e.To) {
			continue
		}
		seen[k] = true
		edges = append(edges, e)
	}
	return &Result{Set: set, Edges: edges, roles: w.roles}, nil
}

type walker struct {
	r       *Resolver
	ctx     context.Context
	stack   []Reference
	onStack map[string]bool
	edges   []Edge
	roles   map[string]Role
}

func (w *walker) level(refs []Reference, depth int) ([]Reference, error) {
	if len(refs) > 0 && depth > w.r.opts.MaxDepth {
		return nil, lpmerrors.New(lpmerrors.ErrCodeDependencyTooDeep,
			"dependency chain exceeds %d levels: %s", w.r.opts.MaxDepth, w.path(refs[0]))
	}

	var out []Reference
	for _, ref := range refs {
		if err := w.ctx.Err(); err != nil {
			return nil, err
		}
		if w.onStack[ref.key()] {
			return nil, lpmerrors.New(lpmerrors.ErrCodeCyclicDependency, "dependency cycle: %s", w.path(ref))
		}

		role := w.r.classifier.ClassifyRef(ref)
		w.roles[ref.key()] = role
		if role == HMIProject {
			w.r.opts.Logger("%s is an hmi-project, not expanding its level", ref)
			return refs, nil
		}
		out = append(out, ref)

		children, err := w.r.dependencies(w.ctx, ref)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			w.edges = append(w.edges, Edge{From: ref, To: c})
		}

		w.push(ref)
		sub, err := w.level(children, depth+1)
		w.pop()
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func (w *walker) push(ref Reference) {
	w.stack = append(w.stack, ref)
	w.onStack[ref.key()] = true
}

func (w *walker) pop() {
	last := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	delete(w.onStack, last.key())
}

func (w *walker) path(next Reference) string {
	parts := make([]string, 0, len(w.stack)+1)
	for _, r := range w.stack {
		parts = append(parts, r.FullName())
	}
	parts = append(parts, next.FullName())
	return strings.Join(parts, " -> ")
}

// dependencies returns the direct in-scope dependencies of ref.
func (r *Resolver) dependencies(ctx context.Context, ref Reference) ([]Reference, error) {
	if _, binary := r.classifier.Locate(ref); binary {
		return r.binaryDependencies(ref)
	}
	if r.tree.IsLibrary(SourceDir(ref)) {
		return r.sourceDependencies(ctx, ref)
	}
	return nil, nil
}

func (r *Resolver) binaryDependencies(ref Reference) ([]Reference, error) {
	m, err := manifest.Read(r.fs, BinaryManifest(ref))
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var out []Reference
	for _, name := range m.Dependencies.Names() {
		if !strings.HasPrefix(strings.ToLower(name), Scope+"/") {
			r.opts.Logger("%s: skipping out-of-scope dependency %s", ref, name)
			continue
		}
		dep, err := ParseReference(name)
		if err != nil {
			r.opts.Logger("%s: skipping dependency %s: %v", ref, name, err)
			continue
		}
		out = append(out, dep)
	}
	return out, nil
}

func (r *Resolver) sourceDependencies(ctx context.Context, ref Reference) ([]Reference, error) {
	if r.registry == nil {
		return nil, nil
	}
	names, err := r.tree.LibraryDependencies(SourceDir(ref))
	if err != nil {
		return nil, err
	}
	var out []Reference
	for _, name := range names {
		dep, err := ParseReference(name)
		if err != nil {
			continue
		}
		ok, err := r.registry.Exists(ctx, dep)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.opts.Logger("%s: cannot check %s upstream, skipping: %v", ref, dep, err)
			continue
		}
		if ok {
			out = append(out, dep)
		}
	}
	return out, nil
}
