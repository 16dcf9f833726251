// Package pipeline runs lpm's end-to-end operations on a project.
//
// Each operation chains the engine's stages the same way for every entry
// point:
//
//  1. Fetch: npm materializes packages in node_modules, or git clones
//     library sources into the logical tree
//  2. Resolve: the resolver expands the requested packages into their
//     transitive dependency set
//  3. Sync: every resolved package is placed into the logical tree
//  4. Deploy: every resolved package is registered with the configured
//     build configurations
//
// # Usage
//
//	runner := pipeline.NewRunner(tree, root, npmClient, gitClient, registry, logger)
//	report, err := runner.Install(ctx, pipeline.InstallOptions{
//	    Packages: []string{"atn", "vartools@1.2.0"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Set.Names())
//
// Stages run one after the other; a failed stage stops the operation and
// leaves what earlier stages did in place.
package pipeline

import (
	"context"

	"github.com/loupeteam/lpm/pkg/deps"
)

// PackageManager materializes packages in node_modules.
type PackageManager interface {
	Init(ctx context.Context) error
	Install(ctx context.Context, specs ...string) error
	Uninstall(ctx context.Context, names ...string) error
}

// Cloner fetches library sources.
type Cloner interface {
	// URL returns the repository of the library name.
	URL(name string) string
	// Clone clones url into dir, a host path, at version when not empty.
	Clone(ctx context.Context, url, dir, version string) error
}

// InstallOptions configures [Runner.Install].
type InstallOptions struct {
	// Packages to install. Empty means every dependency the project
	// manifest declares.
	Packages []string
	// Source clones library sources instead of installing binaries.
	Source bool
	// NoDeploy skips the deploy stage.
	NoDeploy bool
}

// Report describes what an operation did.
type Report struct {
	// Requested are the parsed packages the operation was asked for.
	Requested []deps.Reference
	// Result is the resolution of Requested.
	Result *deps.Result
	// Configs are the build configurations deployed to.
	Configs []string
	// Undeployed is set when nothing was deployed because no deployment
	// configurations are set up, and none of the requested packages is a
	// project.
	Undeployed bool
}

// Set returns the resolved packages, or an empty set.
func (r *Report) Set() *deps.Set {
	if r == nil || r.Result == nil {
		return deps.NewSet()
	}
	return r.Result.Set
}

// InitKind is what [Runner.Init] found in the directory.
type InitKind int

const (
	// InitAuto lets [Runner.Init] detect the kind.
	InitAuto InitKind = iota
	// InitStandalone is a directory with neither project nor library.
	InitStandalone
	// InitProject is an Automation Studio project.
	InitProject
	// InitLibrary is an Automation Studio library.
	InitLibrary
)

func (k InitKind) String() string {
	switch k {
	case InitProject:
		return "project"
	case InitLibrary:
		return "library"
	case InitStandalone:
		return "stand-alone"
	}
	return "auto"
}

// InitOptions configures [Runner.Init].
type InitOptions struct {
	// Starter is installed and overlaid into a directory that holds no
	// project yet.
	Starter string
	// Import installs the libraries already present in the project.
	Import bool
	// Kind overrides detection when not InitAuto.
	Kind InitKind
}

// DefaultStarter is the starter project offered to empty directories.
const DefaultStarter = "starterasproject49"
