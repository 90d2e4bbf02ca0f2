package nuget

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// configNames are the file names the NuGet client looks for in each directory.
var configNames = []string{"nuget.config", "NuGet.Config", "NuGet.config"}

// Settings is the merged view of a nuget.config hierarchy.
type Settings struct {
	Sources []PackageSource
	Mapping SourceMapping
	Files   []string // files applied, furthest first
}

type xmlConfig struct {
	PackageSources         xmlSection `xml:"packageSources"`
	DisabledPackageSources xmlSection `xml:"disabledPackageSources"`
	PackageSourceMapping   struct {
		Sources []struct {
			Key      string `xml:"key,attr"`
			Packages []struct {
				Pattern string `xml:"pattern,attr"`
			} `xml:"package"`
		} `xml:"packageSource"`
	} `xml:"packageSourceMapping"`
}

type xmlSection struct {
	Items []xmlItem `xml:",any"`
}

type xmlItem struct {
	XMLName xml.Name
	Key     string `xml:"key,attr"`
	Value   string `xml:"value,attr"`
}

// UserConfigPath returns the per-user NuGet.Config location.
func UserConfigPath() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "NuGet", "NuGet.Config")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nuget", "NuGet", "NuGet.Config")
}

// LoadSettings reads every nuget.config from dir up to the filesystem root,
// plus userConfig when non-empty and present. Files are applied furthest
// first so closer files override.
func LoadSettings(dir, userConfig string) (*Settings, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	var closestFirst []string
	for d := abs; ; {
		if f := findConfig(d); f != "" {
			closestFirst = append(closestFirst, f)
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	var files []string
	if userConfig != "" {
		if _, err := os.Stat(userConfig); err == nil {
			files = append(files, userConfig)
		}
	}
	for i := len(closestFirst) - 1; i >= 0; i-- {
		if !containsPath(files, closestFirst[i]) {
			files = append(files, closestFirst[i])
		}
	}

	s := &Settings{}
	for _, f := range files {
		if err := s.apply(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func findConfig(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, name := range configNames {
		for _, e := range entries {
			if !e.IsDir() && e.Name() == name {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}

func containsPath(list []string, p string) bool {
	for _, l := range list {
		if strings.EqualFold(filepath.Clean(l), filepath.Clean(p)) {
			return true
		}
	}
	return false
}

func (s *Settings) apply(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	var cfg xmlConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	s.Files = append(s.Files, file)

	for _, item := range cfg.PackageSources.Items {
		switch item.XMLName.Local {
		case "clear":
			s.Sources = nil
		case "add":
			if item.Key == "" || item.Value == "" {
				continue
			}
			s.addSource(item.Key, resolveAddress(file, item.Value))
		case "remove":
			s.removeSource(item.Key)
		}
	}

	for _, item := range cfg.DisabledPackageSources.Items {
		switch item.XMLName.Local {
		case "clear":
			for i := range s.Sources {
				s.Sources[i].Enabled = true
			}
		case "add":
			if strings.EqualFold(item.Value, "true") {
				s.setEnabled(item.Key, false)
			}
		}
	}

	for _, src := range cfg.PackageSourceMapping.Sources {
		for _, p := range src.Packages {
			if p.Pattern != "" {
				s.Mapping.Add(src.Key, p.Pattern)
			}
		}
	}
	return nil
}

func (s *Settings) addSource(name, address string) {
	for i := range s.Sources {
		if strings.EqualFold(s.Sources[i].Name, name) {
			s.Sources[i].Address = address
			return
		}
	}
	s.Sources = append(s.Sources, PackageSource{Name: name, Address: address, Enabled: true})
}

func (s *Settings) removeSource(name string) {
	for i := range s.Sources {
		if strings.EqualFold(s.Sources[i].Name, name) {
			s.Sources = append(s.Sources[:i], s.Sources[i+1:]...)
			return
		}
	}
}

func (s *Settings) setEnabled(name string, enabled bool) {
	for i := range s.Sources {
		if strings.EqualFold(s.Sources[i].Name, name) {
			s.Sources[i].Enabled = enabled
		}
	}
}

// resolveAddress makes relative local feed paths relative to the config file.
func resolveAddress(file, value string) string {
	if strings.Contains(value, "://") || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(filepath.Dir(file), value)
}

// EnabledSources returns the enabled, de-duplicated sources. ok is false when
// none is configured, in which case the result is nuget.org alone.
func (s *Settings) EnabledSources() (sources []PackageSource, ok bool) {
	seen := make(map[string]bool)
	for _, src := range s.Sources {
		key := strings.ToLower(src.Address)
		if !src.Enabled || seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return []PackageSource{NuGetOrg()}, false
	}
	return sources, true
}
