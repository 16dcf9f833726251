package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes g as indented JSON.
func WriteJSON(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML writes g as YAML.
func WriteYAML(g Graph, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write writes g in format, one of FormatJSON, FormatYAML and FormatDOT.
// Use [RenderSVG] for FormatSVG.
func Write(g Graph, format string, w io.Writer) error {
	switch format {
	case FormatJSON:
		return WriteJSON(g, w)
	case FormatYAML:
		return WriteYAML(g, w)
	case FormatDOT:
		_, err := io.WriteString(w, ToDOT(g))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
