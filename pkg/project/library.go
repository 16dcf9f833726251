package project

import (
	"path"
	"strings"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

const (
	languageBinary = "Binary"
	languageIEC    = "IEC"
	languageANSIC  = "ANSIC"
)

// Library is the content of a library file (*.lby).
type Library struct {
	Name         string // library directory name
	Version      string
	Description  string
	SubType      string // Binary, IEC or ANSIC
	Dependencies []LibraryDependency
}

// LibraryDependency is one <Dependency> of a library file.
type LibraryDependency struct {
	Name        string
	FromVersion string
	ToVersion   string
}

// Language returns the language a Package.pkg or Cpu.sw records for the
// library.
func (l *Library) Language() string {
	switch strings.ToLower(l.SubType) {
	case "iec":
		return languageIEC
	case "ansic":
		return languageANSIC
	}
	return languageBinary
}

// Library reads the library file in dir.
func (t *Tree) Library(dir string) (*Library, error) {
	file, ok := findFile(t.fs, dir, hasSuffix(".lby"))
	if !ok {
		return nil, noNode("library", dir)
	}
	doc, err := readXML(t.fs, file)
	if err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidFormat, err, "read library %s", dir)
	}
	root := doc.Root()
	lib := &Library{
		Name:        path.Base(dir),
		Version:     root.SelectAttrValue("Version", ""),
		Description: root.SelectAttrValue("Description", ""),
		SubType:     root.SelectAttrValue("SubType", ""),
	}
	for _, d := range root.FindElements("./Dependencies/Dependency") {
		name := d.SelectAttrValue("ObjectName", "")
		if name == "" {
			continue
		}
		lib.Dependencies = append(lib.Dependencies, LibraryDependency{
			Name:        name,
			FromVersion: d.SelectAttrValue("FromVersion", ""),
			ToVersion:   d.SelectAttrValue("ToVersion", ""),
		})
	}
	return lib, nil
}

// programLanguage returns the language of the program in dir, taken from
// its program file. Programs without one are treated as IEC.
func (t *Tree) programLanguage(dir string) string {
	file, ok := findFile(t.fs, dir, hasSuffix(".prg"))
	if !ok {
		return languageIEC
	}
	doc, err := readXML(t.fs, file)
	if err != nil {
		return languageIEC
	}
	switch strings.ToLower(doc.Root().SelectAttrValue("SubType", "")) {
	case "ansic":
		return languageANSIC
	case "binary":
		return languageBinary
	}
	return languageIEC
}
