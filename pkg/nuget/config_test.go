package nuget

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "nuget.config")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `<?xml version="1.0" encoding="utf-8"?>
<configuration>
  <packageSources>
    <add key="nuget.org" value="https://api.nuget.org/v3/index.json" protocolVersion="3" />
    <add key="outer" value="https://outer.example/v3/index.json" />
  </packageSources>
</configuration>`)
	inner := filepath.Join(root, "src", "app")
	writeConfig(t, inner, `<configuration>
  <packageSources>
    <add key="local" value="feed" />
    <add key="outer" value="https://outer2.example/v3/index.json" />
  </packageSources>
  <disabledPackageSources>
    <add key="nuget.org" value="true" />
  </disabledPackageSources>
  <packageSourceMapping>
    <packageSource key="local">
      <package pattern="Contoso.*" />
    </packageSource>
  </packageSourceMapping>
</configuration>`)

	s, err := LoadSettings(inner, "")
	if err != nil {
		t.Fatalf("LoadSettings() error: %v", err)
	}
	if len(s.Files) < 2 {
		t.Fatalf("Files = %v, want both configs", s.Files)
	}

	sources, ok := s.EnabledSources()
	if !ok {
		t.Fatal("EnabledSources() reported no configured source")
	}
	if len(sources) != 2 {
		t.Fatalf("EnabledSources() = %v", sources)
	}
	if sources[0].Name != "outer" || sources[0].Address != "https://outer2.example/v3/index.json" {
		t.Errorf("closer file should override address: %v", sources[0])
	}
	if sources[1].Name != "local" || sources[1].Address != filepath.Join(inner, "feed") {
		t.Errorf("relative feed not resolved: %v", sources[1])
	}
	if got := s.Mapping.SourcesFor("Contoso.Core"); len(got) != 1 || got[0] != "local" {
		t.Errorf("SourcesFor() = %v", got)
	}
}

func TestLoadSettingsClear(t *testing.T) {
	root := t.TempDir()
	user := filepath.Join(root, "user", "NuGet.Config")
	if err := os.MkdirAll(filepath.Dir(user), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(user, []byte(`<configuration><packageSources><add key="nuget.org" value="https://api.nuget.org/v3/index.json" /></packageSources></configuration>`), 0o644); err != nil {
		t.Fatal(err)
	}
	project := filepath.Join(root, "project")
	writeConfig(t, project, `<configuration><packageSources><clear /></packageSources></configuration>`)

	s, err := LoadSettings(project, user)
	if err != nil {
		t.Fatalf("LoadSettings() error: %v", err)
	}
	sources, ok := s.EnabledSources()
	if ok {
		t.Fatalf("EnabledSources() ok = true after <clear/>, sources %v", s.Sources)
	}
	if len(sources) != 1 || sources[0] != NuGetOrg() {
		t.Errorf("fallback = %v, want nuget.org", sources)
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `<configuration><packageSources>`)
	if _, err := LoadSettings(dir, ""); err == nil {
		t.Error("LoadSettings() should fail on malformed XML")
	}
}
