// Package projecttest builds Automation Studio project fixtures on an
// in-memory filesystem.
package projecttest

import (
	"path"
	"strings"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/loupeteam/lpm/pkg/project"
)

// CPU is the CPU folder name used for every fixture configuration.
const CPU = "X20CP1586"

// New returns a project with an empty Logical tree holding a Libraries
// package, and one CPU per configuration.
func New(t testing.TB, configs ...string) *project.Tree {
	t.Helper()
	fs := memoryfs.New()
	WriteFile(t, fs, "Demo.apj", `<?xml version="1.0" encoding="utf-8"?>
<?AutomationStudio Version="4.9.6.42"?>
<Project Edition="Standard" xmlns="http://br-automation.co.at/AS/Project" />
`)
	WriteFile(t, fs, "Logical/Package.pkg", PackageFile("Package:Libraries"))
	WriteFile(t, fs, "Logical/Libraries/Package.pkg", PackageFile())

	var objs []string
	for _, c := range configs {
		objs = append(objs, "Configuration:"+c)
		WriteFile(t, fs, path.Join("Physical", c, CPU, "Cpu.sw"), SoftwareTable)
		WriteFile(t, fs, path.Join("Physical", c, CPU, "Cpu.pkg"), CPUFile)
	}
	WriteFile(t, fs, "Physical/Physical.pkg", PackageFile(objs...))
	return project.New(fs)
}

// WriteFile writes content to p, creating parent directories.
func WriteFile(t testing.TB, fs vfs.FileSystem, p, content string) {
	t.Helper()
	if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path.Dir(p), err)
	}
	if err := vfs.WriteFile(fs, p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", p, err)
	}
}

// ReadFile returns the content of p.
func ReadFile(t testing.TB, fs vfs.FileSystem, p string) string {
	t.Helper()
	data, err := vfs.ReadFile(fs, p)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", p, err)
	}
	return string(data)
}

// PackageFile renders a Package.pkg. Each object is written "Type:name".
func PackageFile(objects ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>
<?AutomationStudio FileVersion="4.9"?>
<Package xmlns="http://br-automation.co.at/AS/Package">
  <Objects>
`)
	for _, o := range objects {
		typ, name, _ := strings.Cut(o, ":")
		b.WriteString(`    <Object Type="` + typ + `">` + name + "</Object>\n")
	}
	b.WriteString("  </Objects>\n</Package>\n")
	return b.String()
}

// LibraryFile renders a library file depending on deps.
func LibraryFile(version, subType string, deps ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>
<?AutomationStudio FileVersion="4.9"?>
<Library Version="` + version + `" SubType="` + subType + `" xmlns="http://br-automation.co.at/AS/Library">
  <Files>
    <File>Types.typ</File>
  </Files>
  <Dependencies>
`)
	for _, d := range deps {
		b.WriteString(`    <Dependency ObjectName="` + d + `" FromVersion="1.00.0" />` + "\n")
	}
	b.WriteString("  </Dependencies>\n</Library>\n")
	return b.String()
}

// ProgramFile renders a program file of the given language.
func ProgramFile(subType string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<?AutomationStudio FileVersion="4.9"?>
<Program SubType="` + subType + `" xmlns="http://br-automation.co.at/AS/Program">
  <Files>
    <File>Main.st</File>
  </Files>
</Program>
`
}

// SoftwareTable is an empty Cpu.sw.
const SoftwareTable = `<?xml version="1.0" encoding="utf-8"?>
<?AutomationStudio FileVersion="4.9"?>
<SwConfiguration CpuAddress="SL1" xmlns="http://br-automation.co.at/AS/SwConfiguration">
  <TaskClass Name="Cyclic#1" />
  <TaskClass Name="Cyclic#4" />
  <Libraries>
    <LibraryObject Name="runtime" Source="Libraries.runtime.lby" Memory="UserROM" Language="Binary" Debugging="true" />
  </Libraries>
</SwConfiguration>
`

// CPUFile is a Cpu.pkg without build settings.
const CPUFile = `<?xml version="1.0" encoding="utf-8"?>
<?AutomationStudio FileVersion="4.9"?>
<Cpu xmlns="http://br-automation.co.at/AS/Cpu">
  <Configuration ModuleId="X20CP1586" />
</Cpu>
`

// AddBinaryPackage materializes a package in node_modules with the given
// manifest and files (path relative to the package: content).
func AddBinaryPackage(t testing.TB, fs vfs.FileSystem, name, manifest string, files map[string]string) {
	t.Helper()
	dir := path.Join("node_modules", "@loupeteam", name)
	WriteFile(t, fs, path.Join(dir, "package.json"), manifest)
	for p, content := range files {
		WriteFile(t, fs, path.Join(dir, p), content)
	}
}
