package deps

import (
	"context"
	"path"
	"strings"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// fakeTree answers structural questions from fixed sets of directories.
type fakeTree struct {
	projects  map[string]bool
	libraries map[string]bool
	packages  map[string]bool
	libDeps   map[string][]string
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		projects:  map[string]bool{},
		libraries: map[string]bool{},
		packages:  map[string]bool{},
		libDeps:   map[string][]string{},
	}
}

func (f *fakeTree) IsProject(dir string) bool { return f.projects[dir] }
func (f *fakeTree) IsLibrary(dir string) bool { return f.libraries[dir] }
func (f *fakeTree) IsPackage(dir string) bool { return f.packages[dir] }

func (f *fakeTree) LibraryDependencies(dir string) ([]string, error) {
	return f.libDeps[dir], nil
}

func (f *fakeTree) OpenNode(string) (Node, error)                  { return nil, ErrNoNode }
func (f *fakeTree) EnsurePackagePath(string) error                 { return nil }
func (f *fakeTree) Overlay(string, string, func(string) bool) error { return nil }
func (f *fakeTree) OpenTarget(string) (Target, error)              { return nil, ErrNoNode }

// fakeRegistry reports the listed names as existing.
type fakeRegistry struct {
	names map[string]bool
	calls int
}

func (f *fakeRegistry) Exists(_ context.Context, ref Reference) (bool, error) {
	f.calls++
	return f.names[ref.Name], nil
}

// binaryPackage materializes a package in node_modules with the given
// lpm type and dependency names.
func binaryPackage(t *testing.T, fs vfs.FileSystem, name, role string, deps ...string) {
	t.Helper()
	dir := path.Join(ModulesDir, Scope, name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	var entries []string
	for _, d := range deps {
		entries = append(entries, `"`+d+`": "*"`)
	}
	body := `{"name": "` + Scope + "/" + name + `"`
	if role != "" {
		body += `, "lpm": {"type": "` + role + `"}`
	}
	body += `, "dependencies": {` + strings.Join(entries, ", ") + `}}`
	if err := vfs.WriteFile(fs, path.Join(dir, ManifestFile), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func mustRefs(t *testing.T, inputs ...string) []Reference {
	t.Helper()
	refs, err := ParseReferences(inputs)
	if err != nil {
		t.Fatalf("ParseReferences(%v): %v", inputs, err)
	}
	return refs
}

func newFS() vfs.FileSystem { return memoryfs.New() }
