// Package manifest reads and writes package.json manifests and their lpm
// extension block.
//
// Manifests are hand-edited, so input is passed through jsonc before
// decoding: comments and trailing commas do not make a read fail.
//
// Two access styles are offered. [Read] decodes the whole manifest into a
// [Manifest]. [Field] looks up a single value by key path and reports
// absence as an ordinary result:
//
//	if dest, ok := manifest.String(fs, "node_modules/@loupeteam/atn/package.json", "lpm", "logical", "destination"); ok {
//	    // explicit destination
//	}
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// ErrNotFound is returned by [Read] when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// Manifest is a decoded package.json.
type Manifest struct {
	Name         string       `json:"name"`
	Version      string       `json:"version,omitempty"`
	Description  string       `json:"description,omitempty"`
	Homepage     string       `json:"homepage,omitempty"`
	Author       any          `json:"author,omitempty"`
	License      string       `json:"license,omitempty"`
	Repository   *Repository  `json:"repository,omitempty"`
	LPM          *Extension   `json:"lpm,omitempty"`
	Dependencies Dependencies `json:"dependencies,omitempty"`
	Config       *Config      `json:"lpmConfig,omitempty"`
}

// Repository is the manifest's source repository. npm accepts either a
// URL string or an object; both decode into this type.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

// UnmarshalJSON accepts the string shorthand as well as the object form.
func (r *Repository) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.URL = s
		return nil
	}
	type plain Repository
	return json.Unmarshal(data, (*plain)(r))
}

// Extension is the vendor block stored under the "lpm" key.
type Extension struct {
	Type     string    `json:"type,omitempty"`
	Logical  *Logical  `json:"logical,omitempty"`
	Physical *Physical `json:"physical,omitempty"`
}

// Logical holds placement preferences.
type Logical struct {
	Destination string `json:"destination,omitempty"`
}

// Physical holds deployment directives.
type Physical struct {
	CPU           *CPUDirectives `json:"cpu,omitempty"`
	Configuration *Configuration `json:"configuration,omitempty"`
}

// Configuration holds configuration-wide deployment settings.
type Configuration struct {
	PreBuildStep string `json:"preBuildStep,omitempty"`
}

// Config is the project-level block stored under "lpmConfig".
type Config struct {
	DeploymentConfigs []string `json:"deploymentConfigs,omitempty"`
	GitClient         *string  `json:"gitClient,omitempty"`
}

// Dependency is one entry of the dependencies mapping.
type Dependency struct {
	Name       string
	Constraint string
}

// Dependencies keeps the manifest's dependency mapping in document order.
type Dependencies []Dependency

// UnmarshalJSON decodes a JSON object preserving key order.
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*d = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("dependencies: expected object, got %s", res.Type)
	}
	var out Dependencies
	res.ForEach(func(key, value gjson.Result) bool {
		out = append(out, Dependency{Name: key.String(), Constraint: value.String()})
		return true
	})
	*d = out
	return nil
}

// MarshalJSON encodes the dependencies as a JSON object in slice order.
func (d Dependencies) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, dep := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(dep.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(dep.Constraint)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// Names returns the dependency names in document order.
func (d Dependencies) Names() []string {
	names := make([]string, len(d))
	for i, dep := range d {
		names[i] = dep.Name
	}
	return names
}

// Type returns the declared role string, or "" when none is declared.
func (m *Manifest) Type() string {
	if m == nil || m.LPM == nil {
		return ""
	}
	return m.LPM.Type
}

// Destination returns the declared logical destination, or "".
func (m *Manifest) Destination() string {
	if m == nil || m.LPM == nil || m.LPM.Logical == nil {
		return ""
	}
	return m.LPM.Logical.Destination
}

// CPU returns the declared per-configuration directives, or nil.
func (m *Manifest) CPU() *CPUDirectives {
	if m == nil || m.LPM == nil || m.LPM.Physical == nil {
		return nil
	}
	return m.LPM.Physical.CPU
}

// PreBuildStep returns the configuration-wide pre-build command, or "".
func (m *Manifest) PreBuildStep() string {
	if m == nil || m.LPM == nil || m.LPM.Physical == nil || m.LPM.Physical.Configuration == nil {
		return ""
	}
	return m.LPM.Physical.Configuration.PreBuildStep
}

// Read decodes the manifest at path. A missing file yields an error
// matching [ErrNotFound]; malformed content yields INVALID_MANIFEST.
func Read(fs vfs.FileSystem, path string) (*Manifest, error) {
	data, err := load(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes manifest content. name is only used in error messages.
func Parse(data []byte, name string) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	return &m, nil
}

// Exists reports whether a manifest file is present at path.
func Exists(fs vfs.FileSystem, path string) bool {
	fi, err := fs.Stat(path)
	return err == nil && !fi.IsDir()
}

// Marshal encodes m with two-space indentation and a trailing newline.
func Marshal(m *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Write encodes m and replaces the file at path.
func Write(fs vfs.FileSystem, path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return vfs.WriteFile(fs, path, data, 0o644)
}

func load(fs vfs.FileSystem, path string) ([]byte, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return data, nil
}
