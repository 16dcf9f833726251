package project

import (
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

// Object types registered in a Package.pkg.
const (
	ObjectPackage = "Package"
	ObjectLibrary = "Library"
	ObjectProgram = "Program"
	ObjectFile    = "File"
)

// Package is an open package of the logical tree. Every change is written
// back to its Package.pkg immediately.
type Package struct {
	t    *Tree
	dir  string
	file string
	doc  *etree.Document
}

var _ deps.Node = (*Package)(nil)

// OpenPackage opens the package in dir. It fails with an error matching
// deps.ErrNoNode when dir holds no Package.pkg.
func (t *Tree) OpenPackage(dir string) (*Package, error) {
	dir = path.Clean(dir)
	file, ok := findFile(t.fs, dir, named(packageFile))
	if !ok {
		return nil, noNode("package", dir)
	}
	doc, err := readXML(t.fs, file)
	if err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidFormat, err, "open package %s", dir)
	}
	return &Package{t: t, dir: dir, file: file, doc: doc}, nil
}

// Dir returns the package directory.
func (p *Package) Dir() string { return p.dir }

// Objects returns the names of the registered objects in file order.
func (p *Package) Objects() []string {
	var names []string
	for _, o := range p.objects().SelectElements("Object") {
		names = append(names, strings.TrimSpace(o.Text()))
	}
	return names
}

// ObjectType returns the registered type of name, or "" when name is not
// registered.
func (p *Package) ObjectType(name string) string {
	if o := p.find(name); o != nil {
		return o.SelectAttrValue("Type", "")
	}
	return ""
}

// AddEmptyPackage creates the empty child package name and registers it.
func (p *Package) AddEmptyPackage(name string) (deps.Node, error) {
	c, err := p.CreatePackage(name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreatePackage is AddEmptyPackage returning the concrete type.
func (p *Package) CreatePackage(name string) (*Package, error) {
	dir := path.Join(p.dir, name)
	if err := p.t.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "create package %s", dir)
	}
	doc := newPackageDocument()
	file := path.Join(dir, packageFile)
	if err := writeXML(p.t.fs, file, doc); err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "create package %s", dir)
	}
	if err := p.register(name, ObjectPackage, ""); err != nil {
		return nil, err
	}
	return &Package{t: p.t, dir: dir, file: file, doc: doc}, nil
}

// RemoveObject deletes the child name from disk and from the package
// file. It fails with an error matching deps.ErrNoNode when the child is
// neither on disk nor registered.
func (p *Package) RemoveObject(name string) error {
	target := path.Join(p.dir, p.resolve(name))
	onDisk := p.t.Exists(target)
	o := p.find(name)
	if !onDisk && o == nil {
		return noNode("object", target)
	}
	if onDisk {
		if err := p.t.fs.RemoveAll(target); err != nil {
			return lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "remove %s", target)
		}
	}
	if o != nil {
		p.objects().RemoveChild(o)
		return p.save()
	}
	return nil
}

// AddObject copies src into the package and registers it under its base
// name, replacing an earlier registration of the same name.
func (p *Package) AddObject(src string) error {
	name := path.Base(src)
	dst := path.Join(p.dir, name)
	if err := copyTree(p.t.fs, src, dst, nil); err != nil {
		return lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "copy %s to %s", src, dst)
	}
	return p.Register(name)
}

// Register adds the child name, which must already exist in the package
// directory, to the package file.
func (p *Package) Register(name string) error {
	typ, lang := p.t.objectKind(path.Join(p.dir, name))
	return p.register(name, typ, lang)
}

func (p *Package) register(name, typ, lang string) error {
	objs := p.objects()
	if o := p.find(name); o != nil {
		objs.RemoveChild(o)
	}
	o := objs.CreateElement("Object")
	o.CreateAttr("Type", typ)
	if lang != "" {
		o.CreateAttr("Language", lang)
	}
	o.SetText(name)
	return p.save()
}

// resolve returns the spelling name has in the package, matching
// registrations and directory entries case-insensitively.
func (p *Package) resolve(name string) string {
	if o := p.find(name); o != nil {
		return strings.TrimSpace(o.Text())
	}
	for _, e := range listDir(p.t.fs, p.dir) {
		if strings.EqualFold(e.name, name) {
			return e.name
		}
	}
	return name
}

func (p *Package) objects() *etree.Element {
	return child(p.doc.Root(), "Objects")
}

func (p *Package) find(name string) *etree.Element {
	for _, o := range p.objects().SelectElements("Object") {
		if strings.EqualFold(strings.TrimSpace(o.Text()), name) {
			return o
		}
	}
	return nil
}

func (p *Package) save() error {
	if err := writeXML(p.t.fs, p.file, p.doc); err != nil {
		return lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "write %s", p.file)
	}
	return nil
}

// objectKind returns the Package.pkg type and language of the object at p.
func (t *Tree) objectKind(p string) (typ, lang string) {
	fi, err := t.fs.Stat(p)
	if err != nil || !fi.IsDir() {
		return ObjectFile, ""
	}
	switch {
	case t.IsPackage(p):
		return ObjectPackage, ""
	case t.IsLibrary(p):
		if lib, err := t.Library(p); err == nil {
			return ObjectLibrary, lib.Language()
		}
		return ObjectLibrary, languageBinary
	default:
		return ObjectProgram, t.programLanguage(p)
	}
}
