package pipeline

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/loupeteam/lpm/pkg/deploy"
	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/manifest"
	"github.com/loupeteam/lpm/pkg/project"
	"github.com/loupeteam/lpm/pkg/syncer"
)

// Runner executes operations on one project.
//
// A Runner holds no state between operations. Operations on the same
// project must not run concurrently.
type Runner struct {
	Tree     *project.Tree
	Root     string // host directory of Tree
	NPM      PackageManager
	Git      Cloner
	Registry deps.Registry
	Options  deps.Options
	Logger   *log.Logger
}

// NewRunner creates a runner for the project tree rooted at root.
// registry may be nil, in which case source libraries contribute no
// dependencies. If logger is nil, log.Default() is used.
func NewRunner(tree *project.Tree, root string, npm PackageManager, git Cloner, registry deps.Registry, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Tree:     tree,
		Root:     root,
		NPM:      npm,
		Git:      git,
		Registry: registry,
		Logger:   logger,
	}
}

// =============================================================================
// Install
// =============================================================================

// Install fetches packages, then resolves, synchronizes and deploys them.
func (r *Runner) Install(ctx context.Context, opts InstallOptions) (*Report, error) {
	refs, err := deps.ParseReferences(opts.Packages)
	if err != nil {
		return nil, err
	}
	if opts.Source {
		return r.installSource(ctx, refs, opts)
	}

	if len(refs) == 0 {
		r.Logger.Info("installing all dependencies")
		if err := r.NPM.Install(ctx); err != nil {
			return nil, err
		}
		if refs, err = r.Roots(); err != nil {
			return nil, err
		}
	} else {
		r.Logger.Info("installing", "packages", fullNames(refs))
		if err := r.NPM.Install(ctx, specs(refs)...); err != nil {
			return nil, err
		}
	}

	report, err := r.resolve(ctx, refs)
	if err != nil {
		return nil, err
	}
	if err := r.sync(ctx, report.Set()); err != nil {
		return report, err
	}
	if opts.NoDeploy {
		return report, nil
	}
	return report, r.deploy(ctx, report, nil)
}

// installSource clones each library into the library folder and installs
// the binaries of the in-scope libraries it depends on.
func (r *Runner) installSource(ctx context.Context, refs []deps.Reference, opts InstallOptions) (*Report, error) {
	if !r.Tree.IsProject(syncer.Root) {
		return nil, lpmerrors.New(lpmerrors.ErrCodeNotAProject, "source install needs an Automation Studio project")
	}
	if len(refs) == 0 {
		return nil, lpmerrors.New(lpmerrors.ErrCodeInvalidInput, "name at least one library to clone")
	}
	if err := r.Tree.EnsurePackagePath(deps.LibraryDir); err != nil {
		return nil, err
	}
	loupe, err := r.Tree.OpenPackage(deps.LibraryDir)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		dir := deps.SourceDir(ref)
		if r.Tree.Exists(dir) {
			return nil, lpmerrors.New(lpmerrors.ErrCodeOperationFailed, "library folder %s already exists", dir)
		}
		r.Logger.Info("cloning", "package", ref, "dir", dir)
		if err := r.Git.Clone(ctx, r.Git.URL(ref.BaseName()), filepath.Join(r.Root, filepath.FromSlash(dir)), ref.Version); err != nil {
			return nil, err
		}
		if err := loupe.Register(ref.BaseName()); err != nil {
			return nil, err
		}
	}

	// The first pass finds the binaries the sources depend on; once
	// installed, the second pass sees their own dependencies.
	first, err := r.resolve(ctx, refs)
	if err != nil {
		return nil, err
	}
	requested := deps.NewSet(refs...)
	var binaries []deps.Reference
	for _, ref := range first.Set().Refs() {
		if !requested.Contains(ref) {
			binaries = append(binaries, ref)
		}
	}
	if len(binaries) == 0 {
		r.Logger.Debug("sources have no in-scope dependencies")
	} else {
		r.Logger.Info("installing dependencies", "packages", fullNames(binaries))
		if err := r.NPM.Install(ctx, specs(binaries)...); err != nil {
			return nil, err
		}
	}

	report, err := r.resolve(ctx, refs)
	if err != nil {
		return nil, err
	}
	placed := deps.NewSet()
	for _, ref := range report.Set().Refs() {
		if !requested.Contains(ref) {
			placed.Add(ref)
		}
	}
	if err := r.sync(ctx, placed); err != nil {
		return report, err
	}
	if opts.NoDeploy {
		return report, nil
	}
	return report, r.deploy(ctx, report, nil)
}

// Uninstall removes packages from node_modules and the project manifest.
// Content already placed into the logical tree is left alone.
func (r *Runner) Uninstall(ctx context.Context, packages []string) (*Report, error) {
	refs, err := deps.ParseReferences(packages)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, lpmerrors.New(lpmerrors.ErrCodeInvalidInput, "name at least one package to uninstall")
	}
	r.Logger.Info("uninstalling", "packages", fullNames(refs))
	if err := r.NPM.Uninstall(ctx, fullNames(refs)...); err != nil {
		return nil, err
	}
	return &Report{Requested: refs}, nil
}

// =============================================================================
// Resolve, Sync, Deploy
// =============================================================================

// Resolve resolves packages, or the project's declared dependencies when
// packages is empty.
func (r *Runner) Resolve(ctx context.Context, packages []string) (*Report, error) {
	refs, err := r.refsOrRoots(packages)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, refs)
}

// Sync resolves packages like [Runner.Resolve] and places them into the
// logical tree.
func (r *Runner) Sync(ctx context.Context, packages []string) (*Report, error) {
	report, err := r.Resolve(ctx, packages)
	if err != nil {
		return nil, err
	}
	return report, r.sync(ctx, report.Set())
}

// Deploy resolves packages like [Runner.Resolve] and deploys them to
// configs, or to the configured deployment configurations when configs is
// empty.
func (r *Runner) Deploy(ctx context.Context, packages, configs []string) (*Report, error) {
	report, err := r.Resolve(ctx, packages)
	if err != nil {
		return nil, err
	}
	return report, r.deploy(ctx, report, configs)
}

// Roots returns the in-scope dependencies the project manifest declares.
func (r *Runner) Roots() ([]deps.Reference, error) {
	m, err := manifest.Read(r.Tree.FS(), deps.ManifestFile)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return nil, lpmerrors.New(lpmerrors.ErrCodeNotFound, "%s not found, run lpm init first", deps.ManifestFile)
		}
		return nil, err
	}
	var refs []deps.Reference
	for _, name := range m.Dependencies.Names() {
		if !strings.HasPrefix(strings.ToLower(name), deps.Scope+"/") {
			continue
		}
		ref, err := deps.ParseReference(name)
		if err != nil {
			r.Logger.Warn("skipping dependency", "name", name, "error", err)
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (r *Runner) refsOrRoots(packages []string) ([]deps.Reference, error) {
	refs, err := deps.ParseReferences(packages)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return r.Roots()
	}
	return refs, nil
}

func (r *Runner) resolve(ctx context.Context, refs []deps.Reference) (*Report, error) {
	opts := r.Options
	if opts.Logger == nil {
		opts.Logger = r.Logger.Debugf
	}
	res, err := deps.NewResolver(r.Tree.FS(), r.Tree, r.Registry, opts).Walk(ctx, refs)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("resolved", "packages", res.Set.Names(), "edges", len(res.Edges))
	return &Report{Requested: refs, Result: res}, nil
}

func (r *Runner) sync(ctx context.Context, set *deps.Set) error {
	return syncer.New(r.Tree.FS(), r.Tree, r.Logger).Sync(ctx, set)
}

func (r *Runner) deploy(ctx context.Context, report *Report, configs []string) error {
	if len(configs) == 0 {
		configs = manifest.ReadConfig(r.Tree.FS(), deps.ManifestFile).DeploymentConfigs
	}
	if len(configs) == 0 {
		report.Undeployed = !r.requestedProject(report)
		return nil
	}
	report.Configs = configs
	r.Logger.Info("deploying", "packages", report.Set().Len(), "configs", configs)
	return deploy.New(r.Tree.FS(), r.Tree, r.Logger).DeployAll(ctx, configs, report.Set())
}

func (r *Runner) requestedProject(report *Report) bool {
	for _, ref := range report.Requested {
		if report.Result.Role(ref) == deps.Project {
			return true
		}
	}
	return false
}

// =============================================================================
// Project setup
// =============================================================================

// Init prepares the directory for lpm according to what it holds.
//
// A project gets a package.json and, with opts.Import, the libraries it
// already contains installed. A library gets its publishable manifest. Any
// other directory gets a package.json and, with opts.Starter, a starter
// project installed into it. opts.Kind forces the treatment.
func (r *Runner) Init(ctx context.Context, opts InitOptions) (InitKind, *Report, error) {
	kind := opts.Kind
	if kind == InitAuto {
		kind = r.Detect()
	}
	switch kind {
	case InitProject:
		if err := r.ensureManifest(ctx); err != nil {
			return InitProject, nil, err
		}
		if !opts.Import {
			return InitProject, nil, nil
		}
		report, err := r.Import(ctx)
		return InitProject, report, err

	case InitLibrary:
		return InitLibrary, nil, r.writeLibraryManifest(ctx)

	default:
		if err := r.ensureManifest(ctx); err != nil {
			return InitStandalone, nil, err
		}
		if opts.Starter == "" {
			return InitStandalone, nil, nil
		}
		report, err := r.Install(ctx, InstallOptions{Packages: []string{opts.Starter}, NoDeploy: true})
		return InitStandalone, report, err
	}
}

// Detect returns what [Runner.Init] would find in the directory.
func (r *Runner) Detect() InitKind {
	switch {
	case r.Tree.IsProject(syncer.Root):
		return InitProject
	case r.Tree.IsLibrary(syncer.Root):
		return InitLibrary
	}
	return InitStandalone
}

func (r *Runner) ensureManifest(ctx context.Context) error {
	if manifest.Exists(r.Tree.FS(), deps.ManifestFile) {
		r.Logger.Debug("manifest exists, keeping it", "file", deps.ManifestFile)
		return nil
	}
	return r.NPM.Init(ctx)
}

// writeLibraryManifest generates package.json for the library at the root.
// Library dependencies the registry does not know are left out.
func (r *Runner) writeLibraryManifest(ctx context.Context) error {
	fs := r.Tree.FS()
	lib, err := r.Tree.Library(syncer.Root)
	if err != nil {
		return err
	}
	var existing *manifest.Extension
	if m, err := manifest.Read(fs, deps.ManifestFile); err == nil {
		existing = m.LPM
	}

	name := r.libraryName()
	info := manifest.LibraryInfo{
		FullName:     deps.Scope + "/" + name,
		BaseName:     name,
		Version:      lib.Version,
		Description:  lib.Description,
		Dependencies: manifest.Dependencies{},
	}
	for _, d := range lib.Dependencies {
		ref, err := deps.ParseReference(d.Name)
		if err != nil {
			continue
		}
		if r.Registry != nil {
			ok, err := r.Registry.Exists(ctx, ref)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.Logger.Warn("cannot check dependency, leaving it out", "package", ref, "error", err)
				continue
			}
			if !ok {
				continue
			}
		}
		info.Dependencies = append(info.Dependencies, manifest.Dependency{
			Name:       ref.FullName(),
			Constraint: manifest.VersionConstraint(d.FromVersion, d.ToVersion),
		})
	}
	r.Logger.Info("writing library manifest", "package", info.FullName, "dependencies", len(info.Dependencies))
	return manifest.Write(fs, deps.ManifestFile, manifest.NewLibraryManifest(info, existing))
}

// libraryName is the directory name of the root, as written on disk.
func (r *Runner) libraryName() string {
	abs, err := filepath.Abs(r.Root)
	if err != nil {
		return filepath.Base(r.Root)
	}
	return filepath.Base(abs)
}

// Import installs, resolves and synchronizes the libraries already present
// in the project's library folder, at the versions found there. A project
// without a library folder imports nothing.
func (r *Runner) Import(ctx context.Context) (*Report, error) {
	dir, ok := r.libraryFolder()
	if !ok {
		r.Logger.Info("no existing libraries found")
		return &Report{}, nil
	}
	pkg, err := r.Tree.OpenPackage(dir)
	if err != nil {
		return nil, err
	}
	var refs []deps.Reference
	for _, name := range pkg.Objects() {
		lib, err := r.Tree.Library(path.Join(dir, name))
		if err != nil {
			r.Logger.Debug("not a library, skipping", "object", name)
			continue
		}
		ref, err := deps.ParseReference(name + "@" + manifest.FormatVersion(lib.Version))
		if err != nil {
			if ref, err = deps.ParseReference(name); err != nil {
				continue
			}
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return &Report{}, nil
	}
	r.Logger.Info("importing", "packages", fullNames(refs), "from", dir)
	if err := r.NPM.Install(ctx, specs(refs)...); err != nil {
		return nil, err
	}
	report, err := r.resolve(ctx, refs)
	if err != nil {
		return nil, err
	}
	return report, r.sync(ctx, report.Set())
}

// legacyLibraryDir is where older projects keep the same libraries.
var legacyLibraryDir = path.Join(deps.LogicalDir, "Libraries", "_ARG")

func (r *Runner) libraryFolder() (string, bool) {
	for _, dir := range []string{deps.LibraryDir, legacyLibraryDir} {
		if r.Tree.IsPackage(dir) {
			return dir, true
		}
	}
	return "", false
}

// Configure stores the deployment configurations and, when gitClient is
// not nil, the git client in the project manifest. Every configuration
// must exist in the project.
func (r *Runner) Configure(configs []string, gitClient *string) error {
	if !r.Tree.IsProject(syncer.Root) {
		return lpmerrors.New(lpmerrors.ErrCodeNotAProject, "configuration is only supported at the root of a project")
	}
	known, err := r.Tree.BuildConfigs()
	if err != nil {
		return err
	}
	for _, c := range configs {
		if !containsFold(known, c) {
			return lpmerrors.New(lpmerrors.ErrCodeInvalidInput, "unknown configuration %q (have %s)", c, strings.Join(known, ", "))
		}
	}
	if configs == nil {
		configs = []string{}
	}
	fs := r.Tree.FS()
	if err := manifest.WriteConfigField(fs, deps.ManifestFile, "deploymentConfigs", configs); err != nil {
		return err
	}
	if gitClient != nil {
		return manifest.WriteConfigField(fs, deps.ManifestFile, "gitClient", *gitClient)
	}
	return nil
}

// Status describes a directory.
type Status struct {
	Initialized bool      // a package.json exists
	Role        deps.Role // role of the directory
	Config      manifest.Config
	Configs     []string // build configurations of the project
}

// Status reports what the directory holds.
func (r *Runner) Status() Status {
	fs := r.Tree.FS()
	s := Status{
		Initialized: manifest.Exists(fs, deps.ManifestFile),
		Role:        deps.NewClassifier(fs, r.Tree).Classify(syncer.Root),
	}
	if s.Initialized {
		s.Config = manifest.ReadConfig(fs, deps.ManifestFile)
	}
	if r.Tree.IsProject(syncer.Root) {
		s.Configs, _ = r.Tree.BuildConfigs()
	}
	return s
}

// Type returns the role of arg, a directory of the project or a package
// reference looked up where it is materialized.
func (r *Runner) Type(arg string) (deps.Role, error) {
	classifier := deps.NewClassifier(r.Tree.FS(), r.Tree)
	if p := path.Clean(filepath.ToSlash(arg)); r.Tree.Exists(p) {
		return classifier.Classify(p), nil
	}
	ref, err := deps.ParseReference(arg)
	if err != nil {
		return deps.Undefined, err
	}
	return classifier.ClassifyRef(ref), nil
}

// =============================================================================
// Helpers
// =============================================================================

func specs(refs []deps.Reference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Spec()
	}
	return out
}

func fullNames(refs []deps.Reference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.FullName()
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
