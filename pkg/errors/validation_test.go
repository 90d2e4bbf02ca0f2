package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Serilog", false},
		{"valid dotted", "Serilog.Sinks.File", false},
		{"valid with dash", "my-package", false},
		{"valid with underscore", "my_package", false},
		{"valid digits", "7z.Libs", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 101), true},
		{"slash", "Serilog/4.3.0", true},
		{"space", "Serilog Sinks", true},
		{"leading dot", ".Serilog", true},
		{"trailing dot", "Serilog.", true},
		{"double dot", "Serilog..Sinks", true},
		{"control char", "foo\x01bar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidatePackageID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://api.nuget.org/v3/index.json", false},
		{"http", "http://localhost:5555/v3/index.json", false},
		{"empty", "", true},
		{"file", "file:///tmp/feed", true},
		{"no scheme", "api.nuget.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
