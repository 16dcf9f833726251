package deps

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/mandelsoft/vfs/pkg/vfs"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

func TestResolveBinary(t *testing.T) {
	fs := newFS()
	tree := newFakeTree()
	binaryPackage(t, fs, "atn", "library", "@loupeteam/stringext", "@loupeteam/vartools", "lodash", "@other/pkg")
	binaryPackage(t, fs, "stringext", "library", "@loupeteam/vartools")
	binaryPackage(t, fs, "vartools", "library")

	r := NewResolver(fs, tree, nil, Options{})
	res, err := r.Walk(context.Background(), mustRefs(t, "atn@1.0.0"))
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"@loupeteam/atn", "@loupeteam/stringext", "@loupeteam/vartools"}
	if diff := deep.Equal(res.Set.Names(), want); diff != nil {
		t.Errorf("Names(): %v", diff)
	}
	if v := res.Set.Refs()[0].Version; v != "v1.0.0" {
		t.Errorf("root version = %q, want v1.0.0", v)
	}
	if res.Role(Reference{Name: "stringext"}) != Library {
		t.Errorf("Role(stringext) = %v", res.Role(Reference{Name: "stringext"}))
	}

	var edges []string
	for _, e := range res.Edges {
		edges = append(edges, e.From.Name+">"+e.To.Name)
	}
	wantEdges := []string{"atn>stringext", "atn>vartools", "stringext>vartools"}
	if diff := deep.Equal(edges, wantEdges); diff != nil {
		t.Errorf("Edges: %v", diff)
	}
}

func TestResolveDeduplicatesAcrossCase(t *testing.T) {
	fs := newFS()
	binaryPackage(t, fs, "atn", "library")

	set, err := NewResolver(fs, newFakeTree(), nil, Options{}).Resolve(context.Background(), mustRefs(t, "ATN", "atn", "@loupeteam/Atn"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1: %v", set.Len(), set.Names())
	}
}

func TestResolveHMIProjectStopsLevel(t *testing.T) {
	fs := newFS()
	binaryPackage(t, fs, "main", "program", "@loupeteam/helper")
	binaryPackage(t, fs, "helper", "library")
	binaryPackage(t, fs, "webhmi", "hmi-project", "@loupeteam/widgets")
	binaryPackage(t, fs, "widgets", "library")

	set, err := NewResolver(fs, newFakeTree(), nil, Options{}).Resolve(context.Background(), mustRefs(t, "main", "webhmi"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"@loupeteam/main", "@loupeteam/webhmi"}
	if diff := deep.Equal(set.Names(), want); diff != nil {
		t.Errorf("Names(): %v", diff)
	}
}

func TestResolveCycle(t *testing.T) {
	fs := newFS()
	binaryPackage(t, fs, "a", "library", "@loupeteam/b")
	binaryPackage(t, fs, "b", "library", "@loupeteam/c")
	binaryPackage(t, fs, "c", "library", "@loupeteam/a")

	_, err := NewResolver(fs, newFakeTree(), nil, Options{}).Resolve(context.Background(), mustRefs(t, "a"))
	if !lpmerrors.Is(err, lpmerrors.ErrCodeCyclicDependency) {
		t.Fatalf("Resolve() error = %v, want CYCLIC_DEPENDENCY", err)
	}
	if !strings.Contains(err.Error(), "@loupeteam/a -> @loupeteam/b -> @loupeteam/c -> @loupeteam/a") {
		t.Errorf("error should name the cycle: %v", err)
	}
}

func TestResolveDiamondIsNotACycle(t *testing.T) {
	fs := newFS()
	binaryPackage(t, fs, "top", "library", "@loupeteam/left", "@loupeteam/right")
	binaryPackage(t, fs, "left", "library", "@loupeteam/base")
	binaryPackage(t, fs, "right", "library", "@loupeteam/base")
	binaryPackage(t, fs, "base", "library")

	set, err := NewResolver(fs, newFakeTree(), nil, Options{}).Resolve(context.Background(), mustRefs(t, "top"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"@loupeteam/top", "@loupeteam/left", "@loupeteam/base", "@loupeteam/right"}
	if diff := deep.Equal(set.Names(), want); diff != nil {
		t.Errorf("Names(): %v", diff)
	}
}

func TestResolveMaxDepth(t *testing.T) {
	fs := newFS()
	binaryPackage(t, fs, "a", "library", "@loupeteam/b")
	binaryPackage(t, fs, "b", "library", "@loupeteam/c")
	binaryPackage(t, fs, "c", "library", "@loupeteam/d")
	binaryPackage(t, fs, "d", "library")

	r := NewResolver(fs, newFakeTree(), nil, Options{MaxDepth: 2})
	_, err := r.Resolve(context.Background(), mustRefs(t, "a"))
	if !lpmerrors.Is(err, lpmerrors.ErrCodeDependencyTooDeep) {
		t.Fatalf("Resolve() error = %v, want DEPENDENCY_TOO_DEEP", err)
	}

	r = NewResolver(fs, newFakeTree(), nil, Options{MaxDepth: 3})
	if _, err := r.Resolve(context.Background(), mustRefs(t, "a")); err != nil {
		t.Fatalf("Resolve() with enough depth error: %v", err)
	}
}

func TestResolveSource(t *testing.T) {
	fs := newFS()
	tree := newFakeTree()
	src := SourceDir(Reference{Name: "atn"})
	tree.libraries[src] = true
	tree.libDeps[src] = []string{"AsBrStr", "StringExt", "VarTools", "sys_lib"}
	binaryPackage(t, fs, "stringext", "library")

	reg := &fakeRegistry{names: map[string]bool{"stringext": true}}
	set, err := NewResolver(fs, tree, reg, Options{}).Resolve(context.Background(), mustRefs(t, "atn"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"@loupeteam/atn", "@loupeteam/stringext"}
	if diff := deep.Equal(set.Names(), want); diff != nil {
		t.Errorf("Names(): %v", diff)
	}
	if reg.calls != 4 {
		t.Errorf("registry calls = %d, want 4", reg.calls)
	}
}

func TestResolveSourceWithLeftoverBinaryDir(t *testing.T) {
	fs := newFS()
	bin := BinaryDir(Reference{Name: "atn"})
	if err := fs.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := vfs.WriteFile(fs, path.Join(bin, "README.md"), []byte("atn"), 0o644); err != nil {
		t.Fatal(err)
	}
	tree := newFakeTree()
	src := SourceDir(Reference{Name: "atn"})
	tree.libraries[src] = true
	tree.libDeps[src] = []string{"StringExt"}

	reg := &fakeRegistry{names: map[string]bool{"stringext": true}}
	set, err := NewResolver(fs, tree, reg, Options{}).Resolve(context.Background(), mustRefs(t, "atn"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"@loupeteam/atn", "@loupeteam/stringext"}
	if diff := deep.Equal(set.Names(), want); diff != nil {
		t.Errorf("Names(): %v", diff)
	}
}

func TestResolveSourceWithoutRegistry(t *testing.T) {
	tree := newFakeTree()
	src := SourceDir(Reference{Name: "atn"})
	tree.libraries[src] = true
	tree.libDeps[src] = []string{"StringExt"}

	set, err := NewResolver(newFS(), tree, nil, Options{}).Resolve(context.Background(), mustRefs(t, "atn"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if diff := deep.Equal(set.Names(), []string{"@loupeteam/atn"}); diff != nil {
		t.Errorf("Names(): %v", diff)
	}
}

func TestResolveCanceled(t *testing.T) {
	fs := newFS()
	binaryPackage(t, fs, "atn", "library")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResolver(fs, newFakeTree(), nil, Options{}).Resolve(ctx, mustRefs(t, "atn"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestResolveEmpty(t *testing.T) {
	set, err := NewResolver(newFS(), newFakeTree(), nil, Options{}).Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}
