package deploy_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/loupeteam/lpm/pkg/deploy"
	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/project"
	"github.com/loupeteam/lpm/pkg/project/projecttest"
	"github.com/loupeteam/lpm/pkg/syncer"
)

func set(t *testing.T, names ...string) *deps.Set {
	t.Helper()
	refs, err := deps.ParseReferences(names)
	if err != nil {
		t.Fatalf("ParseReferences: %v", err)
	}
	return deps.NewSet(refs...)
}

func libraries(t *testing.T, tree *project.Tree, config string) map[string]project.LibraryObject {
	t.Helper()
	d, err := tree.OpenDeployment(config)
	if err != nil {
		t.Fatalf("OpenDeployment(%s) error: %v", config, err)
	}
	out := map[string]project.LibraryObject{}
	for _, l := range d.Libraries() {
		out[l.Name] = l
	}
	return out
}

func deployTo(t *testing.T, tree *project.Tree, config string, s *deps.Set) {
	t.Helper()
	if err := deploy.New(tree.FS(), tree, nil).Deploy(context.Background(), config, s); err != nil {
		t.Fatalf("Deploy(%s) error: %v", config, err)
	}
}

func TestDeployLibraryAttributes(t *testing.T) {
	tree := projecttest.New(t, "INTEL", "ARM", "Sim")
	projecttest.AddBinaryPackage(t, tree.FS(), "atn", `{
		"name": "@loupeteam/atn",
		"lpm": {"type": "library", "physical": {"cpu": [
			{"config": "Intel", "attributes": {"Memory": "DRAM", "Debugging": false}},
			{"config": "ARM", "attributes": {"Memory": "None"}}
		]}}
	}`, nil)

	tests := []struct {
		config string
		want   map[string]string
	}{
		{"INTEL", map[string]string{"Memory": "DRAM", "Language": "Binary", "Debugging": "false"}},
		{"ARM", map[string]string{"Memory": "None", "Language": "Binary", "Debugging": "true"}},
		{"Sim", map[string]string{"Memory": "UserROM", "Language": "Binary", "Debugging": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.config, func(t *testing.T) {
			deployTo(t, tree, tt.config, set(t, "atn"))
			lib, ok := libraries(t, tree, tt.config)["atn"]
			if !ok {
				t.Fatal("atn not deployed")
			}
			if lib.Source != "Libraries.Loupe.atn.lby" {
				t.Errorf("Source = %q", lib.Source)
			}
			if diff := deep.Equal(lib.Attributes, tt.want); diff != nil {
				t.Errorf("Attributes: %v", diff)
			}
		})
	}
}

func TestDeployLibraryDestination(t *testing.T) {
	tree := projecttest.New(t, "Intel")
	projecttest.AddBinaryPackage(t, tree.FS(), "vartools", `{
		"name": "@loupeteam/vartools",
		"lpm": {"logical": {"destination": "Libraries/Custom"}, "physical": {"cpu": {"attributes": {"Memory": "DRAM"}}}}
	}`, nil)

	deployTo(t, tree, "Intel", set(t, "vartools"))
	lib := libraries(t, tree, "Intel")["vartools"]
	if lib.Source != "Libraries.Custom.vartools.lby" {
		t.Errorf("Source = %q", lib.Source)
	}
	if lib.Attributes["Memory"] != "DRAM" {
		t.Errorf("single cpu block should apply to every config: %v", lib.Attributes)
	}
}

func TestDeploySourceLibrary(t *testing.T) {
	tree := projecttest.New(t, "Intel")
	fs := tree.FS()
	projecttest.WriteFile(t, fs, "Logical/Libraries/Loupe/stringext/stringext.lby", projecttest.LibraryFile("1.00.0", "IEC"))
	projecttest.WriteFile(t, fs, "Logical/Libraries/Loupe/stringext/package.json", `{
		"name": "@loupeteam/stringext",
		"lpm": {"type": "program", "logical": {"destination": "Elsewhere"}, "physical": {"cpu": [{"attributes": {"Memory": "DRAM"}}]}}
	}`)
	projecttest.WriteFile(t, fs, "Logical/Libraries/Loupe/bare/bare.lby", projecttest.LibraryFile("1.00.0", "IEC"))

	deployTo(t, tree, "Intel", set(t, "stringext", "bare"))
	libs := libraries(t, tree, "Intel")
	if got := libs["stringext"]; got.Source != "Libraries.Loupe.stringext.lby" || got.Attributes["Memory"] != "DRAM" || got.Attributes["Language"] != "IEC" {
		t.Errorf("stringext = %+v", got)
	}
	if got := libs["bare"]; got.Source != "Libraries.Loupe.bare.lby" || got.Attributes["Memory"] != "UserROM" {
		t.Errorf("bare = %+v", got)
	}
}

func TestDeployProgram(t *testing.T) {
	tree := projecttest.New(t, "Intel", "ARM")
	projecttest.AddBinaryPackage(t, tree.FS(), "main", `{
		"name": "@loupeteam/main",
		"lpm": {
			"type": "program",
			"logical": {"destination": "Loupe"},
			"physical": {
				"cpu": [
					{"config": "intel", "source": "Main", "destination": "4", "preBuildStep": "intel-step"},
					{"source": "Comms", "destination": "Cyclic#1"},
					{"config": "ARM", "source": "ArmOnly", "destination": "2"}
				],
				"configuration": {"preBuildStep": "default-step"}
			}
		}
	}`, nil)

	deployTo(t, tree, "Intel", set(t, "main"))
	deployTo(t, tree, "ARM", set(t, "main"))

	tests := []struct {
		config string
		tasks  []project.Task
		step   string
	}{
		{"Intel", []project.Task{
			{Class: "Cyclic#1", Name: "Comms", Source: "Loupe.Comms.prg"},
			{Class: "Cyclic#4", Name: "Main", Source: "Loupe.Main.prg"},
		}, "intel-step"},
		{"ARM", []project.Task{
			{Class: "Cyclic#1", Name: "Comms", Source: "Loupe.Comms.prg"},
			{Class: "Cyclic#2", Name: "ArmOnly", Source: "Loupe.ArmOnly.prg"},
		}, "default-step"},
	}
	for _, tt := range tests {
		t.Run(tt.config, func(t *testing.T) {
			d, err := tree.OpenDeployment(tt.config)
			if err != nil {
				t.Fatalf("OpenDeployment() error: %v", err)
			}
			if diff := deep.Equal(d.Tasks(), tt.tasks); diff != nil {
				t.Errorf("Tasks(): %v", diff)
			}
			if got := d.PreBuildStep(); got != tt.step {
				t.Errorf("PreBuildStep() = %q, want %q", got, tt.step)
			}
			if _, ok := libraries(t, tree, tt.config)["main"]; ok {
				t.Error("program deployed as library")
			}
		})
	}
}

func TestDeployProjectIsNoop(t *testing.T) {
	tree := projecttest.New(t, "Intel")
	projecttest.AddBinaryPackage(t, tree.FS(), "starter", `{"name": "@loupeteam/starter", "lpm": {"type": "project"}}`, nil)
	projecttest.AddBinaryPackage(t, tree.FS(), "webhmi", `{"name": "@loupeteam/webhmi", "lpm": {"type": "hmi-project"}}`, nil)

	before := projecttest.ReadFile(t, tree.FS(), "Physical/Intel/"+projecttest.CPU+"/Cpu.sw")
	deployTo(t, tree, "Intel", set(t, "starter", "webhmi"))
	d, err := tree.OpenDeployment("Intel")
	if err != nil {
		t.Fatalf("OpenDeployment() error: %v", err)
	}
	if len(d.Libraries()) != 1 || len(d.Tasks()) != 0 {
		t.Errorf("deployment changed:\nbefore:\n%s\nlibraries: %v tasks: %v", before, d.Libraries(), d.Tasks())
	}
}

func TestDeployIsIdempotent(t *testing.T) {
	tree := projecttest.New(t, "Intel")
	projecttest.AddBinaryPackage(t, tree.FS(), "atn", `{"name": "@loupeteam/atn"}`, nil)
	projecttest.AddBinaryPackage(t, tree.FS(), "main", `{"name": "@loupeteam/main", "lpm": {"type": "program", "physical": {"cpu": [{"source": "Main", "destination": "1"}]}}}`, nil)

	swPath := "Physical/Intel/" + projecttest.CPU + "/Cpu.sw"
	deployTo(t, tree, "Intel", set(t, "atn", "main"))
	first := projecttest.ReadFile(t, tree.FS(), swPath)
	deployTo(t, tree, "Intel", set(t, "atn", "main"))
	if second := projecttest.ReadFile(t, tree.FS(), swPath); second != first {
		t.Errorf("second Deploy() changed Cpu.sw:\n%s", second)
	}
}

func TestDeployAllContinuesAfterFailure(t *testing.T) {
	tree := projecttest.New(t, "Intel", "ARM")
	projecttest.AddBinaryPackage(t, tree.FS(), "atn", `{"name": "@loupeteam/atn"}`, nil)

	o := deploy.New(tree.FS(), tree, nil)
	err := o.DeployAll(context.Background(), []string{"Missing", "Intel", "ARM"}, set(t, "atn"))
	if !lpmerrors.Is(err, lpmerrors.ErrCodeNoDeployment) {
		t.Fatalf("DeployAll() error = %v, want NO_DEPLOYMENT", err)
	}
	if !strings.Contains(err.Error(), "Missing") {
		t.Errorf("error should name the configuration: %v", err)
	}
	for _, config := range []string{"Intel", "ARM"} {
		if _, ok := libraries(t, tree, config)["atn"]; !ok {
			t.Errorf("atn not deployed to %s", config)
		}
	}
}

func TestDeployAllNoConfigs(t *testing.T) {
	tree := projecttest.New(t, "Intel")
	if err := deploy.New(tree.FS(), tree, nil).DeployAll(context.Background(), nil, set(t, "atn")); err != nil {
		t.Fatalf("DeployAll() error: %v", err)
	}
}

// A project installs atn, which depends on stringext. Both end up under
// Logical/Libraries/Loupe and in the software table of the deployed
// configuration. The other configuration is left alone.
func TestResolveSyncDeploy(t *testing.T) {
	tree := projecttest.New(t, "Intel", "Arm")
	fs := tree.FS()
	projecttest.AddBinaryPackage(t, fs, "atn", `{
		"name": "@loupeteam/atn",
		"lpm": {"type": "library"},
		"dependencies": {"@loupeteam/stringext": "^1.0.0"}
	}`, map[string]string{"atn.lby": projecttest.LibraryFile("3.01.0", "Binary", "StringExt")})
	projecttest.AddBinaryPackage(t, fs, "stringext", `{
		"name": "@loupeteam/stringext",
		"lpm": {"type": "library"}
	}`, map[string]string{"stringext.lby": projecttest.LibraryFile("1.00.0", "Binary")})

	ctx := context.Background()
	resolved, err := deps.NewResolver(fs, tree, nil, deps.Options{}).Resolve(ctx, []deps.Reference{{Name: "atn"}})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if diff := deep.Equal(resolved.Names(), []string{"@loupeteam/atn", "@loupeteam/stringext"}); diff != nil {
		t.Fatalf("Names(): %v", diff)
	}
	if err := syncer.New(fs, tree, nil).Sync(ctx, resolved); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	armTable := "Physical/Arm/" + projecttest.CPU + "/Cpu.sw"
	before := projecttest.ReadFile(t, fs, armTable)
	if err := deploy.New(fs, tree, nil).DeployAll(ctx, []string{"Intel"}, resolved); err != nil {
		t.Fatalf("DeployAll() error: %v", err)
	}
	if got := projecttest.ReadFile(t, fs, armTable); got != before {
		t.Errorf("Arm software table changed:\n%s", got)
	}

	pkg, err := tree.OpenPackage("Logical/Libraries/Loupe")
	if err != nil {
		t.Fatalf("OpenPackage() error: %v", err)
	}
	if diff := deep.Equal(pkg.Objects(), []string{"atn", "stringext"}); diff != nil {
		t.Errorf("Loupe objects: %v", diff)
	}
	libs := libraries(t, tree, "Intel")
	for _, name := range []string{"atn", "stringext"} {
		if got := libs[name].Source; got != "Libraries.Loupe."+name+".lby" {
			t.Errorf("%s Source = %q", name, got)
		}
	}
}
