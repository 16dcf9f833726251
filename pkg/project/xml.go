package project

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

const (
	packageNS   = "http://br-automation.co.at/AS/Package"
	fileVersion = "4.9"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// readXML parses the Automation Studio file at p.
func readXML(fs vfs.FileSystem, p string) (*etree.Document, error) {
	data, err := vfs.ReadFile(fs, p)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse %s: no root element", p)
	}
	return doc, nil
}

// writeXML writes doc to p with two-space indentation.
func writeXML(fs vfs.FileSystem, p string, doc *etree.Document) error {
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	return vfs.WriteFile(fs, p, data, 0o644)
}

// newDocument returns a document with the XML and Automation Studio
// processing instructions in place.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.CreateProcInst("AutomationStudio", `FileVersion="`+fileVersion+`"`)
	return doc
}

// newPackageDocument returns an empty Package.pkg.
func newPackageDocument() *etree.Document {
	doc := newDocument()
	root := doc.CreateElement("Package")
	root.CreateAttr("xmlns", packageNS)
	root.CreateElement("Objects")
	return doc
}

// child returns the first child of e named tag, creating it when absent.
func child(e *etree.Element, tag string) *etree.Element {
	if c := e.SelectElement(tag); c != nil {
		return c
	}
	return e.CreateElement(tag)
}

// listDir returns the entries of dir sorted by name. A missing directory
// has no entries.
func listDir(fs vfs.FileSystem, dir string) []entry {
	infos, err := vfs.ReadDir(fs, dir)
	if err != nil {
		return nil
	}
	out := make([]entry, 0, len(infos))
	for _, fi := range infos {
		out = append(out, entry{name: fi.Name(), dir: fi.IsDir()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

type entry struct {
	name string
	dir  bool
}

// findFile returns the path of the first regular file in dir accepted by
// match, which receives the lower-cased file name.
func findFile(fs vfs.FileSystem, dir string, match func(lower string) bool) (string, bool) {
	for _, e := range listDir(fs, dir) {
		if !e.dir && match(strings.ToLower(e.name)) {
			return path.Join(dir, e.name), true
		}
	}
	return "", false
}

func hasSuffix(suffix string) func(string) bool {
	return func(name string) bool { return strings.HasSuffix(name, suffix) }
}

func named(name string) func(string) bool {
	name = strings.ToLower(name)
	return func(n string) bool { return n == name }
}
