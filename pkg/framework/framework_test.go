package framework

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input      string
		identifier string
		version    Version
		short      string
		full       string
	}{
		{"net8.0", NETCoreApp, Version{Major: 8}, "net8.0", ".NETCoreApp,Version=v8.0"},
		{"NET6.0", NETCoreApp, Version{Major: 6}, "net6.0", ".NETCoreApp,Version=v6.0"},
		{"netcoreapp3.1", NETCoreApp, Version{Major: 3, Minor: 1}, "netcoreapp3.1", ".NETCoreApp,Version=v3.1"},
		{"netstandard2.0", NETStandard, Version{Major: 2}, "netstandard2.0", ".NETStandard,Version=v2.0"},
		{"netstandard1.0", NETStandard, Version{Major: 1}, "netstandard1.0", ".NETStandard,Version=v1.0"},
		{"net472", NETFramework, Version{Major: 4, Minor: 7, Build: 2}, "net472", ".NETFramework,Version=v4.7.2"},
		{"net40", NETFramework, Version{Major: 4}, "net40", ".NETFramework,Version=v4.0"},
		{"net35", NETFramework, Version{Major: 3, Minor: 5}, "net35", ".NETFramework,Version=v3.5"},
		{"uap10.0", UAP, Version{Major: 10}, "uap10.0", "UAP,Version=v10.0"},
		{"monoandroid10", MonoAndroid, Version{Major: 1}, "monoandroid10", "MonoAndroid,Version=v1.0"},
		{".NETCoreApp,Version=v8.0", NETCoreApp, Version{Major: 8}, "net8.0", ".NETCoreApp,Version=v8.0"},
		{".NETStandard,Version=v2.1", NETStandard, Version{Major: 2, Minor: 1}, "netstandard2.1", ".NETStandard,Version=v2.1"},
		{".NETFramework,Version=v4.7.2", NETFramework, Version{Major: 4, Minor: 7, Build: 2}, "net472", ".NETFramework,Version=v4.7.2"},
		{".netframework,version=v4.8", NETFramework, Version{Major: 4, Minor: 8}, "net48", ".NETFramework,Version=v4.8"},
		{".NETStandard2.0", NETStandard, Version{Major: 2}, "netstandard2.0", ".NETStandard,Version=v2.0"},
		{".NETFramework4.5", NETFramework, Version{Major: 4, Minor: 5}, "net45", ".NETFramework,Version=v4.5"},
		{".NETCoreApp3.1", NETCoreApp, Version{Major: 3, Minor: 1}, "netcoreapp3.1", ".NETCoreApp,Version=v3.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if f.Identifier != tt.identifier || f.Version != tt.version {
				t.Errorf("Parse(%q) = %s %v, want %s %v", tt.input, f.Identifier, f.Version, tt.identifier, tt.version)
			}
			if got := f.ShortFolderName(); got != tt.short {
				t.Errorf("ShortFolderName() = %q, want %q", got, tt.short)
			}
			if got := f.DotNetFrameworkName(); got != tt.full {
				t.Errorf("DotNetFrameworkName() = %q, want %q", got, tt.full)
			}
			if !f.IsSpecific() {
				t.Error("IsSpecific() = false")
			}
		})
	}
}

func TestParsePlatform(t *testing.T) {
	f := MustParse("net8.0-windows10.0.19041")
	if f.Platform != "windows" || f.PlatformVersion != (Version{Major: 10, Build: 19041}) {
		t.Errorf("platform = %q %v", f.Platform, f.PlatformVersion)
	}
	if got := f.ShortFolderName(); got != "net8.0-windows10.0.19041" {
		t.Errorf("ShortFolderName() = %q", got)
	}
	if got := MustParse("net6.0-android").ShortFolderName(); got != "net6.0-android" {
		t.Errorf("ShortFolderName() = %q", got)
	}
}

func TestParseSpecial(t *testing.T) {
	tests := []struct {
		input    string
		specific bool
	}{
		{"any", false},
		{"Agnostic", false},
		{"unsupported", false},
		{"portable-net45+win8", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if f.IsSpecific() != tt.specific {
				t.Errorf("IsSpecific() = %v, want %v", f.IsSpecific(), tt.specific)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "8.0", "net4.x", "netstandard2.0-windows", ".NETCoreApp,Version"} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) should fail", input)
			}
		})
	}
}

func TestEqualAndKey(t *testing.T) {
	a := MustParse("net8.0")
	b := MustParse(".NETCoreApp,Version=v8.0")
	if !a.Equal(b) || a.Key() != b.Key() {
		t.Errorf("net8.0 and its full name should be equal: %v / %v", a, b)
	}
	if a.Equal(MustParse("net8.0-windows")) {
		t.Error("platform-specific framework should differ")
	}
}
