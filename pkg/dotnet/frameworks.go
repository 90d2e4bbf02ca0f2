package dotnet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nugraph/pkg/cache"
	"github.com/matzehuels/nugraph/pkg/framework"
)

// FrameworkCacheFile is the cache file name inside the cache directory.
const FrameworkCacheFile = "supported-frameworks.json"

// FrameworkCache persists supported frameworks per SDK path as a single JSON
// document. A corrupt file is removed and treated as empty.
type FrameworkCache struct {
	path string
	mu   sync.Mutex
}

// NewFrameworkCache stores its file in dir.
func NewFrameworkCache(dir string) *FrameworkCache {
	return &FrameworkCache{path: filepath.Join(dir, FrameworkCacheFile)}
}

// Path returns the cache file path.
func (c *FrameworkCache) Path() string { return c.path }

// Get returns the cached frameworks of an SDK.
func (c *FrameworkCache) Get(sdkPath string) ([]framework.Framework, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names, ok := c.read()[sdkPath]
	if !ok {
		return nil, false
	}
	fws := make([]framework.Framework, 0, len(names))
	for _, n := range names {
		if fw, err := framework.Parse(n); err == nil {
			fws = append(fws, fw)
		}
	}
	return fws, true
}

// Set records the frameworks of an SDK, rewriting the file atomically.
func (c *FrameworkCache) Set(sdkPath string, fws []framework.Framework) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.read()
	names := make([]string, len(fws))
	for i, fw := range fws {
		names[i] = fw.DotNetFrameworkName()
	}
	entries[sdkPath] = names

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return cache.WriteFileAtomic(c.path, data)
}

// Clear removes the cache file.
func (c *FrameworkCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *FrameworkCache) read() map[string][]string {
	entries := make(map[string][]string)
	data, err := os.ReadFile(c.path)
	if err != nil {
		return entries
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		os.Remove(c.path)
		return make(map[string][]string)
	}
	return entries
}

// SDKFrameworks discovers the frameworks the local SDK supports, caching the
// answer per SDK path.
type SDKFrameworks struct {
	cli      *CLI
	cache    *FrameworkCache
	sdkPath  string // explicit SDK, skips discovery
	dir      string
	tempRoot string
	logger   *log.Logger
}

// NewSDKFrameworks creates a discovery. sdkPath overrides the SDK dotnet
// would select in dir; fc may be nil.
func NewSDKFrameworks(cli *CLI, fc *FrameworkCache, sdkPath, dir string, logger *log.Logger) *SDKFrameworks {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SDKFrameworks{cli: cli, cache: fc, sdkPath: sdkPath, dir: dir, logger: logger}
}

// SetTempRoot sets where throwaway projects are written.
func (s *SDKFrameworks) SetTempRoot(dir string) { s.tempRoot = dir }

// SDKPath returns the explicit or discovered SDK path.
func (s *SDKFrameworks) SDKPath(ctx context.Context) (string, error) {
	if s.sdkPath != "" {
		return s.sdkPath, nil
	}
	sdk, err := s.cli.LocateSDK(ctx, s.dir)
	if err != nil {
		return "", err
	}
	return sdk.Path, nil
}

// SupportedFrameworks returns the frameworks the SDK can target.
func (s *SDKFrameworks) SupportedFrameworks(ctx context.Context) ([]framework.Framework, error) {
	path, err := s.SDKPath(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if fws, ok := s.cache.Get(path); ok {
			s.logger.Debug("supported frameworks from cache", "sdk", path, "count", len(fws))
			return fws, nil
		}
	}

	explicit := ""
	if s.sdkPath != "" {
		explicit = path
	}
	fws, err := s.cli.EvaluateSupportedFrameworks(ctx, explicit, s.tempRoot)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("supported frameworks", "sdk", path, "frameworks", framework.Names(fws))
	if s.cache != nil {
		if err := s.cache.Set(path, fws); err != nil {
			s.logger.Warn("could not write framework cache", "path", s.cache.Path(), "err", err)
		}
	}
	return fws, nil
}
