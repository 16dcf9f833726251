package manifest

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CPUDirective is one per-configuration deployment block of lpm.physical.cpu.
type CPUDirective struct {
	// Config names the build configuration the block applies to. nil means
	// the block carries no config key and applies to any configuration.
	Config       *string        `json:"config,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Source       string         `json:"source,omitempty"`
	Destination  string         `json:"destination,omitempty"`
	PreBuildStep string         `json:"preBuildStep,omitempty"`
}

// Matches reports whether the block applies to config. A block without a
// config key matches every configuration; otherwise names are compared
// case-insensitively.
func (c CPUDirective) Matches(config string) bool {
	return c.Config == nil || strings.EqualFold(*c.Config, config)
}

// IsTask reports whether the block declares a task source and destination.
func (c CPUDirective) IsTask() bool {
	return c.Source != "" && c.Destination != ""
}

// CPUDirectives is lpm.physical.cpu, which manifests write either as a list
// of blocks or as a single block.
type CPUDirectives struct {
	Entries []CPUDirective
	// Single is set when the manifest declared one block instead of a list.
	Single bool
}

// UnmarshalJSON accepts a list of blocks or one block.
func (d *CPUDirectives) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		d.Single = false
		return json.Unmarshal(data, &d.Entries)
	}
	var one CPUDirective
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	d.Entries = []CPUDirective{one}
	d.Single = true
	return nil
}

// MarshalJSON writes the same shape that was read.
func (d CPUDirectives) MarshalJSON() ([]byte, error) {
	if d.Single && len(d.Entries) == 1 {
		return json.Marshal(d.Entries[0])
	}
	return json.Marshal(d.Entries)
}

// Attributes returns the attribute overrides that apply to config.
//
// For a list, the first block whose config matches case-insensitively wins;
// a block without a config key matches as well. A single block applies to
// every configuration. Without any declaration the result is empty.
func (d *CPUDirectives) Attributes(config string) map[string]any {
	if d == nil {
		return map[string]any{}
	}
	if d.Single {
		if len(d.Entries) == 1 && d.Entries[0].Attributes != nil {
			return d.Entries[0].Attributes
		}
		return map[string]any{}
	}
	for _, e := range d.Entries {
		if e.Matches(config) {
			if e.Attributes == nil {
				return map[string]any{}
			}
			return e.Attributes
		}
	}
	return map[string]any{}
}

// Tasks returns the task blocks that apply to config, in manifest order.
func (d *CPUDirectives) Tasks(config string) []CPUDirective {
	if d == nil {
		return nil
	}
	var out []CPUDirective
	for _, e := range d.Entries {
		if e.IsTask() && e.Matches(config) {
			out = append(out, e)
		}
	}
	return out
}

// PreBuildStep returns the pre-build command of the last block applying to
// config that declares one, or "".
func (d *CPUDirectives) PreBuildStep(config string) string {
	if d == nil {
		return ""
	}
	step := ""
	for _, e := range d.Entries {
		if e.PreBuildStep != "" && e.Matches(config) {
			step = e.PreBuildStep
		}
	}
	return step
}
