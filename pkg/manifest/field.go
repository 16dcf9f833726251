package manifest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// ConfigKey is the top-level key holding project-level configuration.
const ConfigKey = "lpmConfig"

// Field returns the value at the key path inside the manifest at path.
// The second result is false when the file, any key along the path, or the
// value itself (JSON null) is absent. Field never fails.
func Field(fs vfs.FileSystem, path string, keys ...string) (any, bool) {
	res, ok := lookup(fs, path, keys)
	if !ok {
		return nil, false
	}
	return res.Value(), true
}

// String is like [Field] but only reports string values.
func String(fs vfs.FileSystem, path string, keys ...string) (string, bool) {
	res, ok := lookup(fs, path, keys)
	if !ok || res.Type != gjson.String {
		return "", false
	}
	return res.String(), true
}

// Strings is like [Field] but only reports arrays, keeping their string
// elements in order.
func Strings(fs vfs.FileSystem, path string, keys ...string) ([]string, bool) {
	res, ok := lookup(fs, path, keys)
	if !ok || !res.IsArray() {
		return nil, false
	}
	out := []string{}
	for _, v := range res.Array() {
		if v.Type == gjson.String {
			out = append(out, v.String())
		}
	}
	return out, true
}

func lookup(fs vfs.FileSystem, path string, keys []string) (gjson.Result, bool) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return gjson.Result{}, false
	}
	res := gjson.GetBytes(jsonc.ToJSON(data), keyPath(keys))
	if !res.Exists() || res.Type == gjson.Null {
		return gjson.Result{}, false
	}
	return res, true
}

// WriteConfigField sets lpmConfig.<name> to value in the manifest at path,
// creating the lpmConfig object when absent. All other content is kept in
// its original key order; the whole file is rewritten with two-space
// indentation. Concurrent edits are not detected.
func WriteConfigField(fs vfs.FileSystem, path, name string, value any) error {
	data, err := load(fs, path)
	if err != nil {
		return err
	}
	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) {
		return lpmerrors.New(lpmerrors.ErrCodeInvalidManifest, "parse %s: invalid JSON", path)
	}
	if cfg := gjson.GetBytes(data, ConfigKey); cfg.Exists() && !cfg.IsObject() {
		data, err = sjson.SetBytes(data, ConfigKey, map[string]any{})
		if err != nil {
			return lpmerrors.Wrap(lpmerrors.ErrCodeInvalidManifest, err, "reset %s in %s", ConfigKey, path)
		}
	}
	out, err := sjson.SetBytes(data, ConfigKey+"."+escapeKey(name), value)
	if err != nil {
		return lpmerrors.Wrap(lpmerrors.ErrCodeInvalidManifest, err, "set %s.%s in %s", ConfigKey, name, path)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "  "); err != nil {
		return lpmerrors.Wrap(lpmerrors.ErrCodeInvalidManifest, err, "format %s", path)
	}
	buf.WriteByte('\n')
	return vfs.WriteFile(fs, path, buf.Bytes(), 0o644)
}

// ReadConfig returns the project-level configuration of the manifest at
// path. Absent fields are left at their zero value.
func ReadConfig(fs vfs.FileSystem, path string) Config {
	var cfg Config
	if configs, ok := Strings(fs, path, ConfigKey, "deploymentConfigs"); ok {
		cfg.DeploymentConfigs = configs
	}
	if client, ok := String(fs, path, ConfigKey, "gitClient"); ok {
		cfg.GitClient = &client
	}
	return cfg
}

func keyPath(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = escapeKey(k)
	}
	return strings.Join(parts, ".")
}

// escapeKey makes k a literal path component for gjson and sjson.
func escapeKey(k string) string {
	var b strings.Builder
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '\\', '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
		}
		b.WriteByte(k[i])
	}
	return b.String()
}
