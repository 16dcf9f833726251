package project_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/loupeteam/lpm/pkg/deps"
	"github.com/loupeteam/lpm/pkg/project"
	"github.com/loupeteam/lpm/pkg/project/projecttest"
)

func TestStructure(t *testing.T) {
	tree := projecttest.New(t, "Intel")
	fs := tree.FS()
	projecttest.WriteFile(t, fs, "lib/atn.lby", projecttest.LibraryFile("1.00.0", "IEC"))
	projecttest.WriteFile(t, fs, "prg/IEC.prg", projecttest.ProgramFile("IEC"))

	tests := []struct {
		dir                        string
		project, library, pkg, prg bool
	}{
		{".", true, false, false, false},
		{"Logical", false, false, true, false},
		{"lib", false, true, false, false},
		{"prg", false, false, false, true},
		{"missing", false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			if got := tree.IsProject(tt.dir); got != tt.project {
				t.Errorf("IsProject() = %v, want %v", got, tt.project)
			}
			if got := tree.IsLibrary(tt.dir); got != tt.library {
				t.Errorf("IsLibrary() = %v, want %v", got, tt.library)
			}
			if got := tree.IsPackage(tt.dir); got != tt.pkg {
				t.Errorf("IsPackage() = %v, want %v", got, tt.pkg)
			}
			if got := tree.IsProgram(tt.dir); got != tt.prg {
				t.Errorf("IsProgram() = %v, want %v", got, tt.prg)
			}
		})
	}
}

func TestBuildConfigs(t *testing.T) {
	tree := projecttest.New(t, "Intel", "ARM")
	got, err := tree.BuildConfigs()
	if err != nil {
		t.Fatalf("BuildConfigs() error: %v", err)
	}
	if diff := deep.Equal(got, []string{"Intel", "ARM"}); diff != nil {
		t.Errorf("BuildConfigs(): %v", diff)
	}
}

func TestBuildConfigsWithoutPhysicalPackage(t *testing.T) {
	tree := projecttest.New(t, "Sim", "Arm")
	if err := tree.FS().Remove("Physical/Physical.pkg"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, err := tree.BuildConfigs()
	if err != nil {
		t.Fatalf("BuildConfigs() error: %v", err)
	}
	if diff := deep.Equal(got, []string{"Arm", "Sim"}); diff != nil {
		t.Errorf("BuildConfigs(): %v", diff)
	}
}

func TestLibrary(t *testing.T) {
	tree := projecttest.New(t)
	projecttest.WriteFile(t, tree.FS(), "Logical/Libraries/Loupe/atn/atn.lby",
		projecttest.LibraryFile("3.01.0", "binary", "AsBrStr", "StringExt"))

	lib, err := tree.Library("Logical/Libraries/Loupe/atn")
	if err != nil {
		t.Fatalf("Library() error: %v", err)
	}
	if lib.Name != "atn" || lib.Version != "3.01.0" || lib.Language() != "Binary" {
		t.Errorf("Library() = %+v", lib)
	}
	names, err := tree.LibraryDependencies("Logical/Libraries/Loupe/atn")
	if err != nil {
		t.Fatalf("LibraryDependencies() error: %v", err)
	}
	if diff := deep.Equal(names, []string{"AsBrStr", "StringExt"}); diff != nil {
		t.Errorf("LibraryDependencies(): %v", diff)
	}
	if lib.Dependencies[0].FromVersion != "1.00.0" {
		t.Errorf("FromVersion = %q", lib.Dependencies[0].FromVersion)
	}

	if _, err := tree.Library("Logical"); !errors.Is(err, deps.ErrNoNode) {
		t.Errorf("Library(Logical) error = %v, want ErrNoNode", err)
	}
}

func TestEnsurePackagePath(t *testing.T) {
	tree := projecttest.New(t)
	if err := tree.EnsurePackagePath("Logical/Libraries/Loupe/Extra"); err != nil {
		t.Fatalf("EnsurePackagePath() error: %v", err)
	}
	for _, dir := range []string{"Logical/Libraries/Loupe", "Logical/Libraries/Loupe/Extra"} {
		if !tree.IsPackage(dir) {
			t.Errorf("IsPackage(%s) = false", dir)
		}
	}
	libs, err := tree.OpenPackage("Logical/Libraries")
	if err != nil {
		t.Fatalf("OpenPackage() error: %v", err)
	}
	if libs.ObjectType("Loupe") != project.ObjectPackage {
		t.Errorf("Loupe not registered as package: %v", libs.Objects())
	}

	// Running again changes nothing.
	before := projecttest.ReadFile(t, tree.FS(), "Logical/Libraries/Package.pkg")
	if err := tree.EnsurePackagePath("Logical/Libraries/Loupe/Extra"); err != nil {
		t.Fatalf("EnsurePackagePath() again error: %v", err)
	}
	if after := projecttest.ReadFile(t, tree.FS(), "Logical/Libraries/Package.pkg"); after != before {
		t.Errorf("second run changed Package.pkg:\n%s", after)
	}
}

func TestEnsurePackagePathNeedsRoot(t *testing.T) {
	tree := projecttest.New(t)
	if err := tree.EnsurePackagePath("Nowhere/Else"); !errors.Is(err, deps.ErrNoNode) {
		t.Fatalf("EnsurePackagePath() error = %v, want ErrNoNode", err)
	}
}

func TestOverlay(t *testing.T) {
	tree := projecttest.New(t)
	fs := tree.FS()
	projecttest.WriteFile(t, fs, "src/package.json", `{}`)
	projecttest.WriteFile(t, fs, "src/Logical/Main/package.json", `{}`)
	projecttest.WriteFile(t, fs, "src/Logical/Main/Main.st", "PROGRAM")
	projecttest.WriteFile(t, fs, "dst/Logical/Main/Main.st", "OLD")
	projecttest.WriteFile(t, fs, "dst/keep.txt", "kept")

	skip := func(name string) bool { return strings.EqualFold(name, "package.json") }
	if err := tree.Overlay("src", "dst", skip); err != nil {
		t.Fatalf("Overlay() error: %v", err)
	}
	if got := projecttest.ReadFile(t, fs, "dst/Logical/Main/Main.st"); got != "PROGRAM" {
		t.Errorf("Main.st = %q, want replaced", got)
	}
	if got := projecttest.ReadFile(t, fs, "dst/keep.txt"); got != "kept" {
		t.Errorf("keep.txt = %q", got)
	}
	for _, p := range []string{"dst/package.json", "dst/Logical/Main/package.json"} {
		if tree.Exists(p) {
			t.Errorf("%s should have been skipped", p)
		}
	}
}
