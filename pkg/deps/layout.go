package deps

import (
	"path"
	"strings"
)

// Fixed locations inside a project directory. All paths are slash separated
// and relative to the project root.
const (
	ManifestFile = "package.json"
	ModulesDir   = "node_modules"
	LogicalDir   = "Logical"
	PhysicalDir  = "Physical"
)

// LibraryDir is the default logical location of libraries.
var LibraryDir = path.Join(LogicalDir, "Libraries", "Loupe")

// filtered names are never copied item by item into the logical tree.
var filtered = map[string]bool{
	"package.pkg":       true,
	"license":           true,
	"readme.md":         true,
	"package.json":      true,
	"changelog.md":      true,
	"package-lock.json": true,
}

// BinaryDir is where the upstream package manager materializes ref.
func BinaryDir(ref Reference) string {
	return path.Join(ModulesDir, Scope, ref.Name)
}

// BinaryManifest is the manifest path inside BinaryDir.
func BinaryManifest(ref Reference) string {
	return path.Join(BinaryDir(ref), ManifestFile)
}

// SourceDir is where a source-mode clone of ref lives.
func SourceDir(ref Reference) string {
	return path.Join(LibraryDir, ref.Name)
}

// SourceManifest is the manifest path inside SourceDir.
func SourceManifest(ref Reference) string {
	return path.Join(SourceDir(ref), ManifestFile)
}

// LogicalPath returns the logical location for a manifest-declared
// destination, or def when none is declared.
func LogicalPath(destination, def string) string {
	if destination == "" {
		return def
	}
	return path.Join(LogicalDir, path.Clean(strings.ReplaceAll(destination, "\\", "/")))
}

// IsFiltered reports whether name is package metadata that is never placed
// into the logical tree item by item.
func IsFiltered(name string) bool {
	return filtered[strings.ToLower(name)]
}
