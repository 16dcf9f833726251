package errors

import (
	"testing"
)

func TestValidateDestination(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single segment", "Loupe", false},
		{"nested", "Libraries/Loupe", false},
		{"windows separators", "Libraries\\Loupe", false},
		{"dot segment", "./Programs", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"absolute", "/Logical", true},
		{"drive letter", "C:\\Logical", true},
		{"parent", "../Physical", true},
		{"nested parent", "Libraries/../../x", true},
		{"windows parent", "Libraries\\..\\..", true},
		{"control char", "Lib\x01raries", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDestination(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDestination(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateDestination(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://npm.pkg.github.com", false},
		{"http://localhost:4873", false},
		{"", true},
		{"ftp://example.com", true},
		{"npm.pkg.github.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
