package nuget

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		pre     bool
		wantErr bool
	}{
		{"4.3.0", "4.3.0", false, false},
		{"1.0", "1.0.0", false, false},
		{"1", "1.0.0", false, false},
		{"1.2.3.4", "1.2.3.4", false, false},
		{"1.2.3.0", "1.2.3", false, false},
		{"4.3.0-dev-02364", "4.3.0-dev-02364", true, false},
		{"2.0.0-Beta.2+sha.abc", "2.0.0-Beta.2", true, false},
		{" 13.0.3 ", "13.0.3", false, false},

		{"", "", false, true},
		{"v1.0.0", "", false, true},
		{"1.2.3.4.5", "", false, true},
		{"1.2.3.x", "", false, true},
		{"abc", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if v.IsPrerelease() != tt.pre {
				t.Errorf("IsPrerelease() = %v, want %v", v.IsPrerelease(), tt.pre)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0.1", "1.0.0", 1},
		{"1.0.0.1", "1.0.1", -1},
		{"1.0.0-beta", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-BETA", "1.0.0-beta", 0},
		{"1.0.0-beta.2", "1.0.0-beta.10", -1},
		{"1.0.0+a", "1.0.0+b", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := MustParseVersion(tt.a).Compare(MustParseVersion(tt.b)); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
			if got := MustParseVersion(tt.b).Compare(MustParseVersion(tt.a)); got != -tt.want {
				t.Errorf("reverse Compare() = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestZeroVersion(t *testing.T) {
	var zero Version
	if !zero.IsZero() || zero.String() != "" {
		t.Errorf("zero version = %q, IsZero %v", zero.String(), zero.IsZero())
	}
	if zero.Compare(MustParseVersion("0.0.1")) != -1 {
		t.Error("zero version should sort before any concrete version")
	}
}
