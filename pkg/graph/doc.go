// Package graph serializes and renders the outcome of a dependency
// resolution.
//
// [FromResult] turns a [deps.Result] into a [Graph]: one [Node] per resolved
// package in resolution order and one [Edge] per declared dependency
// between them. A Graph is written as JSON or YAML for `lpm resolve`, or as
// Graphviz DOT and SVG for `lpm graph`.
//
// # Output Formats
//
//	graph.FormatJSON  // "json"
//	graph.FormatYAML  // "yaml"
//	graph.FormatDOT   // "dot"
//	graph.FormatSVG   // "svg"
package graph
