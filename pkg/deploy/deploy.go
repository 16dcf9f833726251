// Package deploy registers resolved packages in the deployment descriptors
// of a project's build configurations.
//
// Libraries are added to the software table with the attributes their
// manifest declares for the configuration. Programs and packages add the
// tasks their manifest declares and may set the configuration's pre-build
// step. Packages only present as source are always deployed as libraries.
package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/loupeteam/lpm/pkg/deps"
	"github.com/loupeteam/lpm/pkg/manifest"
)

// Orchestrator deploys packages to build configurations.
type Orchestrator struct {
	fs     vfs.FileSystem
	tree   deps.Tree
	Logger *log.Logger
}

// New returns an Orchestrator. If logger is nil, log.Default() is used.
func New(fs vfs.FileSystem, tree deps.Tree, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{fs: fs, tree: tree, Logger: logger}
}

// DeployAll deploys set to each configuration in turn. A failing
// configuration does not stop the others; all failures are returned
// joined. Nothing is rolled back.
func (o *Orchestrator) DeployAll(ctx context.Context, configs []string, set *deps.Set) error {
	var errs []error
	for _, config := range configs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.Deploy(ctx, config, set); err != nil {
			if ctx.Err() != nil {
				return err
			}
			o.Logger.Warn("deployment failed", "config", config, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", config, err))
			continue
		}
		o.Logger.Info("deployed", "config", config, "packages", set.Len())
	}
	return errors.Join(errs...)
}

// Deploy registers every package of set in the deployment descriptor of
// config and saves it. Deploying the same set twice changes nothing.
func (o *Orchestrator) Deploy(ctx context.Context, config string, set *deps.Set) error {
	target, err := o.tree.OpenTarget(config)
	if err != nil {
		return err
	}
	for _, ref := range set.Refs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.deployOne(target, ref); err != nil {
			return fmt.Errorf("deploy %s: %w", ref, err)
		}
	}
	return target.Save()
}

func (o *Orchestrator) deployOne(target deps.Target, ref deps.Reference) error {
	if !manifest.Exists(o.fs, deps.BinaryManifest(ref)) {
		m, err := o.optionalManifest(deps.SourceManifest(ref))
		if err != nil {
			return err
		}
		o.Logger.Debug("deploying source library", "package", ref, "config", target.Config())
		return target.DeployLibrary(deps.LibraryDir, ref.BaseName(), attributes(m, target.Config()))
	}

	m, err := manifest.Read(o.fs, deps.BinaryManifest(ref))
	if err != nil {
		return err
	}
	role := deps.ClassifyManifest(m)
	o.Logger.Debug("deploying", "package", ref, "role", role, "config", target.Config())
	return deps.Dispatch(role, ref, &registrar{target: target, m: m})
}

func (o *Orchestrator) optionalManifest(p string) (*manifest.Manifest, error) {
	m, err := manifest.Read(o.fs, p)
	if errors.Is(err, manifest.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// registrar deploys one package according to its role.
type registrar struct {
	target deps.Target
	m      *manifest.Manifest
}

func (r *registrar) Project(deps.Reference) error    { return nil }
func (r *registrar) HMIProject(deps.Reference) error { return nil }

func (r *registrar) Library(ref deps.Reference) error {
	folder := deps.LogicalPath(r.m.Destination(), deps.LibraryDir)
	return r.target.DeployLibrary(folder, ref.BaseName(), attributes(r.m, r.target.Config()))
}

func (r *registrar) Program(deps.Reference) error {
	config := r.target.Config()
	cpu := r.m.CPU()
	for _, task := range cpu.Tasks(config) {
		if err := r.target.DeployTask(r.m.Destination(), task.Source, task.Destination); err != nil {
			return err
		}
	}
	step := cpu.PreBuildStep(config)
	if step == "" {
		step = r.m.PreBuildStep()
	}
	if step == "" {
		return nil
	}
	return r.target.SetPreBuildStep(step)
}

// attributes returns the library attribute overrides m declares for
// config, rendered as XML attribute values.
func attributes(m *manifest.Manifest, config string) map[string]string {
	out := map[string]string{}
	for k, v := range m.CPU().Attributes(config) {
		out[k] = fmt.Sprint(v)
	}
	return out
}
