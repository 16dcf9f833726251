package project

import (
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

const (
	defaultMemory    = "UserROM"
	defaultDebugging = "true"
	cyclicPrefix     = "Cyclic#"
)

// Deployment is the open deployment descriptor of a build configuration:
// the software table Cpu.sw and the CPU settings Cpu.pkg of the first CPU
// directory below Physical/<config>.
type Deployment struct {
	t        *Tree
	config   string
	swFile   string
	cpuFile  string
	sw       *etree.Document
	cpu      *etree.Document
	cpuDirty bool
}

var _ deps.Target = (*Deployment)(nil)

// LibraryObject is a library registered in the software table.
type LibraryObject struct {
	Name       string
	Source     string
	Attributes map[string]string
}

// Task is a program registered in a task class of the software table.
type Task struct {
	Class  string
	Name   string
	Source string
}

// OpenDeployment opens the deployment descriptor of config. It fails with
// NO_DEPLOYMENT when the configuration or its software table is missing.
func (t *Tree) OpenDeployment(config string) (*Deployment, error) {
	configDir := path.Join(deps.PhysicalDir, config)
	var cpuDir string
	for _, e := range listDir(t.fs, configDir) {
		if e.dir {
			cpuDir = path.Join(configDir, e.name)
			break
		}
	}
	if cpuDir == "" {
		return nil, lpmerrors.New(lpmerrors.ErrCodeNoDeployment, "no CPU folder in configuration %s", config)
	}
	swFile, ok := findFile(t.fs, cpuDir, named("Cpu.sw"))
	if !ok {
		return nil, lpmerrors.New(lpmerrors.ErrCodeNoDeployment, "no software table in %s", cpuDir)
	}
	sw, err := readXML(t.fs, swFile)
	if err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidFormat, err, "open deployment %s", config)
	}
	d := &Deployment{t: t, config: config, swFile: swFile, sw: sw}
	if cpuFile, ok := findFile(t.fs, cpuDir, named("Cpu.pkg")); ok {
		cpu, err := readXML(t.fs, cpuFile)
		if err != nil {
			return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidFormat, err, "open deployment %s", config)
		}
		d.cpuFile, d.cpu = cpuFile, cpu
	}
	return d, nil
}

// Config returns the build configuration name.
func (d *Deployment) Config() string { return d.config }

// DeployLibrary registers the library name found in folder. Existing
// registrations of the same library are updated in place; attrs override
// the defaults and any earlier values.
func (d *Deployment) DeployLibrary(folder, name string, attrs map[string]string) error {
	libs := child(d.sw.Root(), "Libraries")
	var el *etree.Element
	for _, l := range libs.SelectElements("LibraryObject") {
		if strings.EqualFold(l.SelectAttrValue("Name", ""), name) {
			el = l
			break
		}
	}
	if el == nil {
		el = libs.CreateElement("LibraryObject")
	}

	language := languageBinary
	if lib, err := d.t.Library(path.Join(folder, name)); err == nil {
		language = lib.Language()
	}
	el.CreateAttr("Name", name)
	el.CreateAttr("Source", dotted(folder, name+".lby"))
	setDefault(el, "Memory", defaultMemory)
	el.CreateAttr("Language", language)
	setDefault(el, "Debugging", defaultDebugging)

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el.CreateAttr(k, attrs[k])
	}
	return nil
}

// DeployTask registers the program source, located below Logical/location,
// in taskClass. A purely numeric class n stands for "Cyclic#n". A task
// with the same source is moved rather than duplicated.
func (d *Deployment) DeployTask(location, source, taskClass string) error {
	if source == "" || taskClass == "" {
		return lpmerrors.New(lpmerrors.ErrCodeInvalidInput, "task needs a source and a task class")
	}
	dir := path.Join(deps.LogicalPath(location, deps.LogicalDir), slashes(source))
	src := dotted(path.Dir(dir), path.Base(dir)+".prg")
	class := taskClassName(taskClass)

	root := d.sw.Root()
	for _, tc := range root.SelectElements("TaskClass") {
		for _, task := range tc.SelectElements("Task") {
			if strings.EqualFold(task.SelectAttrValue("Source", ""), src) {
				tc.RemoveChild(task)
			}
		}
	}

	var tc *etree.Element
	for _, c := range root.SelectElements("TaskClass") {
		if strings.EqualFold(c.SelectAttrValue("Name", ""), class) {
			tc = c
			break
		}
	}
	if tc == nil {
		tc = etree.NewElement("TaskClass")
		tc.CreateAttr("Name", class)
		if libs := root.SelectElement("Libraries"); libs != nil {
			root.InsertChildAt(libs.Index(), tc)
		} else {
			root.AddChild(tc)
		}
	}

	task := tc.CreateElement("Task")
	task.CreateAttr("Name", path.Base(dir))
	task.CreateAttr("Source", src)
	task.CreateAttr("Memory", defaultMemory)
	task.CreateAttr("Language", d.t.programLanguage(dir))
	task.CreateAttr("Debugging", defaultDebugging)
	return nil
}

// SetPreBuildStep sets the configuration's pre-build command.
func (d *Deployment) SetPreBuildStep(cmd string) error {
	if d.cpu == nil {
		return lpmerrors.New(lpmerrors.ErrCodeNoDeployment, "configuration %s has no Cpu.pkg", d.config)
	}
	build := child(child(d.cpu.Root(), "Configuration"), "Build")
	build.CreateAttr("PreBuildStep", cmd)
	d.cpuDirty = true
	return nil
}

// Save writes the software table and, when changed, the CPU settings.
func (d *Deployment) Save() error {
	if err := writeXML(d.t.fs, d.swFile, d.sw); err != nil {
		return lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "write %s", d.swFile)
	}
	if d.cpu != nil && d.cpuDirty {
		if err := writeXML(d.t.fs, d.cpuFile, d.cpu); err != nil {
			return lpmerrors.Wrap(lpmerrors.ErrCodeOperationFailed, err, "write %s", d.cpuFile)
		}
		d.cpuDirty = false
	}
	return nil
}

// Libraries returns the registered libraries in table order.
func (d *Deployment) Libraries() []LibraryObject {
	libs := d.sw.Root().SelectElement("Libraries")
	if libs == nil {
		return nil
	}
	var out []LibraryObject
	for _, l := range libs.SelectElements("LibraryObject") {
		obj := LibraryObject{Attributes: map[string]string{}}
		for _, a := range l.Attr {
			switch a.Key {
			case "Name":
				obj.Name = a.Value
			case "Source":
				obj.Source = a.Value
			default:
				obj.Attributes[a.Key] = a.Value
			}
		}
		out = append(out, obj)
	}
	return out
}

// Tasks returns the registered tasks in table order.
func (d *Deployment) Tasks() []Task {
	var out []Task
	for _, tc := range d.sw.Root().SelectElements("TaskClass") {
		for _, task := range tc.SelectElements("Task") {
			out = append(out, Task{
				Class:  tc.SelectAttrValue("Name", ""),
				Name:   task.SelectAttrValue("Name", ""),
				Source: task.SelectAttrValue("Source", ""),
			})
		}
	}
	return out
}

// PreBuildStep returns the configured pre-build command, or "".
func (d *Deployment) PreBuildStep() string {
	if d.cpu == nil {
		return ""
	}
	if build := d.cpu.Root().FindElement("./Configuration/Build"); build != nil {
		return build.SelectAttrValue("PreBuildStep", "")
	}
	return ""
}

func setDefault(e *etree.Element, key, value string) {
	if e.SelectAttr(key) == nil {
		e.CreateAttr(key, value)
	}
}

func taskClassName(class string) string {
	for _, r := range class {
		if r < '0' || r > '9' {
			return class
		}
	}
	return cyclicPrefix + class
}

// dotted converts a project path below Logical into the dotted form used by
// Cpu.sw sources, with file appended.
func dotted(dir, file string) string {
	dir = slashes(dir)
	if rest, ok := cutPrefixFold(dir, deps.LogicalDir+"/"); ok {
		dir = rest
	} else if strings.EqualFold(dir, deps.LogicalDir) {
		dir = ""
	}
	var parts []string
	for _, p := range strings.Split(dir, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return strings.Join(append(parts, file), ".")
}

func slashes(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
