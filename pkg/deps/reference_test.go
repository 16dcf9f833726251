package deps

import (
	"testing"

	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		version string
	}{
		{"atn", "atn", ""},
		{"ATN", "atn", ""},
		{"atn@", "atn", ""},
		{"/atn", "atn", ""},
		{`\atn`, "atn", ""},
		{"@loupeteam/atn", "atn", ""},
		{`@LOUPETEAM\atn`, "atn", ""},
		{"atn@1.2.3", "atn", "v1.2.3"},
		{"atn@v1.2.3", "atn", "v1.2.3"},
		{"atn@V03.01.00", "atn", "v03.01.00"},
		{"@loupeteam/StringExt@0.10.2", "stringext", "v0.10.2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseReference(tt.input)
			if err != nil {
				t.Fatalf("ParseReference(%q) error: %v", tt.input, err)
			}
			if ref.Name != tt.name {
				t.Errorf("Name = %q, want %q", ref.Name, tt.name)
			}
			if ref.Version != tt.version {
				t.Errorf("Version = %q, want %q", ref.Version, tt.version)
			}
		})
	}
}

func TestParseReferenceInvalid(t *testing.T) {
	for _, input := range []string{
		"atn@v3.1",
		"atn@w3.1.0",
		"@somebogusorg/atn",
		"loupeteam/atn",
		"@loupeteamatn",
		"#~atn$%~",
		"",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseReference(input)
			if !lpmerrors.Is(err, lpmerrors.ErrCodeInvalidPackage) {
				t.Errorf("ParseReference(%q) error = %v, want INVALID_PACKAGE", input, err)
			}
		})
	}
}

func TestParseReferencesStopsAtFirstInvalid(t *testing.T) {
	if _, err := ParseReferences([]string{"atn", "@other/x", "vartools"}); err == nil {
		t.Fatal("ParseReferences() should fail")
	}
}

func TestReferenceNames(t *testing.T) {
	ref := Reference{Name: "atn", Version: "v3.1.0"}

	if got := ref.FullName(); got != "@loupeteam/atn" {
		t.Errorf("FullName() = %q", got)
	}
	if got := ref.BaseName(); got != "atn" {
		t.Errorf("BaseName() = %q", got)
	}
	if got := ref.String(); got != "@loupeteam/atn@v3.1.0" {
		t.Errorf("String() = %q", got)
	}
	if got := ref.Spec(); got != "@loupeteam/atn@3.1.0" {
		t.Errorf("Spec() = %q", got)
	}
	if got := (Reference{Name: "atn"}).Spec(); got != "@loupeteam/atn" {
		t.Errorf("Spec() without version = %q", got)
	}
}

func TestReferenceSameAs(t *testing.T) {
	a := Reference{Name: "atn", Version: "v1.0.0"}
	b := Reference{Name: "ATN"}
	if !a.SameAs(b) {
		t.Error("SameAs() should ignore case and version")
	}
	if a.SameAs(Reference{Name: "vartools"}) {
		t.Error("SameAs() matched a different package")
	}
}
