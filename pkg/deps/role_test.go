package deps

import (
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"project", Project},
		{"hmi-project", HMIProject},
		{"Program", Program},
		{" package ", Package},
		{"library", Library},
		{"widget", Undefined},
		{"", Undefined},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.input); got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRoleString(t *testing.T) {
	for _, r := range []Role{Undefined, Project, HMIProject, Program, Package, Library} {
		if got := ParseRole(r.String()); got != r {
			t.Errorf("ParseRole(%q) = %v, want %v", r.String(), got, r)
		}
	}
	if got := Role(42).String(); got != "undefined" {
		t.Errorf("Role(42).String() = %q", got)
	}
}

type recordingHandler struct {
	calls []string
}

func (h *recordingHandler) Project(Reference) error    { h.calls = append(h.calls, "project"); return nil }
func (h *recordingHandler) HMIProject(Reference) error { h.calls = append(h.calls, "hmi"); return nil }
func (h *recordingHandler) Program(Reference) error    { h.calls = append(h.calls, "program"); return nil }
func (h *recordingHandler) Library(Reference) error    { h.calls = append(h.calls, "library"); return nil }

func TestDispatch(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{Project, "project"},
		{HMIProject, "hmi"},
		{Program, "program"},
		{Package, "program"},
		{Library, "library"},
		{Undefined, "library"},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			h := &recordingHandler{}
			if err := Dispatch(tt.role, Reference{Name: "atn"}, h); err != nil {
				t.Fatalf("Dispatch() error: %v", err)
			}
			if len(h.calls) != 1 || h.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", h.calls, tt.want)
			}
		})
	}
}

func TestDispatchUnknownRole(t *testing.T) {
	h := &recordingHandler{}
	if err := Dispatch(Role(42), Reference{Name: "atn"}, h); err == nil {
		t.Fatal("Dispatch() should fail for an unknown role")
	}
	if len(h.calls) != 0 {
		t.Errorf("calls = %v, want none", h.calls)
	}
}
