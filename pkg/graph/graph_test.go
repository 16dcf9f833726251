package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"gopkg.in/yaml.v3"

	"github.com/loupeteam/lpm/pkg/deps"
	"github.com/loupeteam/lpm/pkg/project/projecttest"
)

// resolve builds a project where main depends on atn and vartools, and
// atn depends on stringext.
func resolve(t *testing.T) *deps.Result {
	t.Helper()
	tree := projecttest.New(t)
	fs := tree.FS()
	projecttest.AddBinaryPackage(t, fs, "main", `{"name": "@loupeteam/main", "lpm": {"type": "program"},
		"dependencies": {"@loupeteam/atn": "^1.0.0", "@loupeteam/vartools": "*"}}`, nil)
	projecttest.AddBinaryPackage(t, fs, "atn", `{"name": "@loupeteam/atn", "lpm": {"type": "library"},
		"dependencies": {"@loupeteam/stringext": "*", "left-pad": "*"}}`, nil)
	projecttest.AddBinaryPackage(t, fs, "vartools", `{"name": "@loupeteam/vartools"}`, nil)
	projecttest.AddBinaryPackage(t, fs, "stringext", `{"name": "@loupeteam/stringext"}`, nil)

	roots, err := deps.ParseReferences([]string{"main@v1.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := deps.NewResolver(fs, tree, nil, deps.Options{}).Walk(context.Background(), roots)
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	return res
}

func TestFromResult(t *testing.T) {
	g := FromResult(resolve(t))

	want := Graph{
		Nodes: []Node{
			{ID: "@loupeteam/main", Version: "v1.0.0", Role: "program", Root: true},
			{ID: "@loupeteam/atn", Role: "library"},
			{ID: "@loupeteam/stringext", Role: "undefined"},
			{ID: "@loupeteam/vartools", Role: "undefined"},
		},
		Edges: []Edge{
			{From: "@loupeteam/main", To: "@loupeteam/atn"},
			{From: "@loupeteam/main", To: "@loupeteam/vartools"},
			{From: "@loupeteam/atn", To: "@loupeteam/stringext"},
		},
	}
	if diff := deep.Equal(g.Nodes, want.Nodes); diff != nil {
		t.Errorf("nodes: %v", diff)
	}
	if len(g.Edges) != len(want.Edges) {
		t.Fatalf("edges = %v, want %v", g.Edges, want.Edges)
	}
	for _, e := range want.Edges {
		found := false
		for _, got := range g.Edges {
			if got == e {
				found = true
			}
		}
		if !found {
			t.Errorf("missing edge %v", e)
		}
	}
}

func TestFromResultNil(t *testing.T) {
	g := FromResult(nil)
	if g.Nodes == nil || g.Edges == nil {
		t.Error("FromResult(nil) should return empty, non-nil slices")
	}
}

func TestWrite(t *testing.T) {
	g := FromResult(resolve(t))

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(g, FormatJSON, &buf); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		var got Graph
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := deep.Equal(got.IDs(), g.IDs()); diff != nil {
			t.Errorf("ids: %v", diff)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(g, FormatYAML, &buf); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
		var got Graph
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if diff := deep.Equal(got.IDs(), g.IDs()); diff != nil {
			t.Errorf("ids: %v", diff)
		}
		if !strings.Contains(buf.String(), "role: program") {
			t.Errorf("YAML missing role:\n%s", buf.String())
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if err := Write(g, "xml", &bytes.Buffer{}); err == nil {
			t.Error("Write(xml) should fail")
		}
	})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(FromResult(resolve(t)))

	for _, want := range []string{
		"digraph G {",
		`"@loupeteam/main" [label="@loupeteam/main\nv1.0.0", fillcolor=palegreen, penwidth=2];`,
		`"@loupeteam/atn" [label="@loupeteam/atn"];`,
		`"@loupeteam/main" -> "@loupeteam/atn";`,
		`"@loupeteam/atn" -> "@loupeteam/stringext";`,
		`"@loupeteam/vartools" [label="@loupeteam/vartools", fillcolor=lightgrey];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "left-pad") {
		t.Error("out-of-scope dependency drawn")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(FromResult(resolve(t))))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", svg)
	}
}
