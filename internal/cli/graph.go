package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/loupeteam/lpm/pkg/graph"
)

// validFormats maps each output command to the formats it accepts.
var validFormats = map[string][]string{
	"resolve": {graph.FormatJSON, graph.FormatYAML},
	"graph":   {graph.FormatDOT, graph.FormatSVG, graph.FormatJSON, graph.FormatYAML},
}

// validateFormat checks that format is accepted by command.
func validateFormat(command, format string) error {
	for _, f := range validFormats[command] {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s (must be one of %v)", format, validFormats[command])
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "resolve [package...]",
		Short: "Print the resolved dependency set",
		Long: `Print the installed packages and everything they depend on, in the order they
are placed, together with their roles and dependency edges.

Without packages, the dependencies of package.json are resolved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat("resolve", format); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args, format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", graph.FormatJSON, "output format: json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "graph [package...]",
		Short: "Draw the resolved dependency graph",
		Long: `Draw the resolved dependency graph as Graphviz DOT or SVG.

Roots are drawn bold; projects, programs and unclassified packages are
filled by role.`,
		Example: `  lpm graph | dot -Tpng > deps.png
  lpm graph atn -f svg -o atn.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat("graph", format); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args, format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", graph.FormatDOT, "output format: dot, svg, json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, packages []string, format, output string) error {
	e, err := c.newEnv()
	if err != nil {
		return err
	}
	report, err := e.runner.Resolve(ctx, packages)
	if err != nil {
		return err
	}
	g := graph.FromResult(report.Result)

	var buf bytes.Buffer
	if format == graph.FormatSVG {
		spinner := startSpinner(ctx, os.Stderr, "Rendering SVG...")
		svg, err := graph.RenderSVG(ctx, graph.ToDOT(g))
		spinner.Stop()
		if err != nil {
			return err
		}
		buf.Write(svg)
	} else if err := graph.Write(g, format, &buf); err != nil {
		return err
	}

	return writeOutput(output, buf.Bytes())
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := io.Copy(os.Stdout, bytes.NewReader(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Wrote output")
	printFile(path)
	return nil
}
