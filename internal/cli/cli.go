package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nugraph/pkg/buildinfo"
	"github.com/matzehuels/nugraph/pkg/cache"
	"github.com/matzehuels/nugraph/pkg/config"
	"github.com/matzehuels/nugraph/pkg/dotnet"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/integrations/nuget"
	ng "github.com/matzehuels/nugraph/pkg/nuget"
	"github.com/matzehuels/nugraph/pkg/pipeline"
	"github.com/matzehuels/nugraph/pkg/resolve"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	config config.Config
	flags  globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	logLevel   string
	noCache    bool
	refresh    bool
	nugetRoot  string // replaces the working directory and user config for nuget.config discovery
	sdk        string // explicit SDK directory
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself draws the graph of its optional SOURCE argument.
func (c *CLI) RootCommand() *cobra.Command {
	opts := &graphOpts{}
	root := &cobra.Command{
		Use:   appName + " [SOURCE]",
		Short: "nugraph draws the dependency graph of a NuGet package or .NET project",
		Long: `nugraph restores a NuGet package or a .NET project and draws its dependency graph.

SOURCE is a project file, a directory containing exactly one project file,
or a package identity such as "Serilog" or "Serilog/4.3.0". Without SOURCE
the current directory is used.

The graph is opened in the browser on mermaid.live by default. Use --output
to write Mermaid (.mmd), JSON (.json) or Graphviz (anything else) instead.

Examples:
  nugraph Serilog.Sinks.Console                  # Latest version, newest supported framework
  nugraph Serilog/4.3.0 -f netstandard2.0        # Explicit version and framework
  nugraph MyApp.csproj -o deps.mmd               # Project file to Mermaid
  nugraph . -i 'System.*' -m graphviz -u print   # Print an edotor.net URL`,
		Version:       buildinfo.Version,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			return c.runGraph(cmd, opts, source)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid arguments")
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "configuration file (default "+defaultConfigHint()+")")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging (same as --log debug)")
	pf.StringVarP(&c.flags.logLevel, "log", "l", "", "log level: debug, info, warn or error")
	pf.Lookup("log").NoOptDefVal = "debug"
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "do not read or write any cache")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "bypass cached registry responses")
	pf.StringVar(&c.flags.nugetRoot, "nuget-root", "", "directory to search for nuget.config instead of the working directory")
	pf.StringVar(&c.flags.sdk, "sdk", "", "path of the .NET SDK to use")
	_ = pf.MarkHidden("nuget-root")
	_ = pf.MarkHidden("sdk")

	opts.register(root)

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// usageArgs wraps a positional argument validator so its failures are usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid arguments")
		}
		return nil
	}
}

// setup loads the configuration file, applies the log level and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	path, required := c.flags.configPath, c.flags.configPath != ""
	if !required {
		if p, err := config.Path(); err == nil {
			path = p
		}
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path, required)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	c.config = cfg

	level := cfg.Log
	if cmd.Flags().Changed("log") {
		level = c.flags.logLevel
	}
	if c.flags.verbose {
		level = "debug"
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "invalid log level %q", level)
	}
	c.SetLogLevel(lvl)

	if c.flags.sdk != "" {
		if info, err := os.Stat(c.flags.sdk); err != nil || !info.IsDir() {
			return nerrors.New(nerrors.ErrCodeInvalidInput, "The SDK directory (%s) must exist.", c.flags.sdk)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	c.Logger.Debug("configuration loaded", "file", path, "cache", cfg.Cache.Backend)
	return nil
}

func defaultConfigHint() string {
	p, err := config.Path()
	if err != nil {
		return filepath.Join("~", ".config", appName, config.FileName)
	}
	return p
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner wires a pipeline runner for CLI use: registry client and cache,
// nuget.config sources, the dotnet CLI and SDK framework discovery. The
// returned closer releases the cache.
func (c *CLI) newRunner(ctx context.Context, workDir string) (*pipeline.Runner, func(), error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("closing cache", "err", err)
		}
	}

	userAgent := c.config.Registry.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent()
	}
	client := nuget.NewClient(nuget.Options{
		Cache:     store,
		TTL:       c.config.Cache.TTL.Duration,
		Refresh:   c.flags.refresh,
		UserAgent: userAgent,
		Timeout:   c.config.Registry.Timeout.Duration,
		Attempts:  c.config.Registry.Attempts,
		Logger:    c.Logger,
	})

	settings, err := c.loadSettings(workDir)
	if err != nil {
		closer()
		return nil, nil, err
	}
	sources, ok := settings.EnabledSources()
	if !ok {
		where := "any nuget.config file"
		if len(settings.Files) > 0 {
			where = strings.Join(settings.Files, ", ")
		}
		printWarning("No NuGet sources could be found in %s. Using %s", where, ng.NuGetOrg())
	}
	c.Logger.Debug("package sources", "sources", len(sources), "files", settings.Files, "mapping", settings.Mapping.Enabled())
	resolver := resolve.NewResolver(client, sources, &settings.Mapping, c.Logger)

	dotnetOpts := []dotnet.Option{dotnet.WithLogger(c.Logger)}
	if c.flags.sdk != "" {
		dotnetOpts = append(dotnetOpts, dotnet.WithEnv("MSBuildSDKsPath="+filepath.Join(c.flags.sdk, "Sdks")))
	}
	dn := dotnet.NewCLI(nil, dotnetOpts...)

	var fc *dotnet.FrameworkCache
	if !c.flags.noCache {
		if dir, err := config.CacheDir(); err == nil {
			fc = dotnet.NewFrameworkCache(dir)
		}
	}
	sdk := dotnet.NewSDKFrameworks(dn, fc, c.flags.sdk, workDir, c.Logger)
	selector := resolve.NewSelector(sdk, nil, c.Logger)

	return pipeline.NewRunner(resolver, selector, dn, c.Logger), closer, nil
}

// loadSettings reads the nuget.config hierarchy that applies to workDir.
func (c *CLI) loadSettings(workDir string) (*ng.Settings, error) {
	dir, userConfig := workDir, ng.UserConfigPath()
	if c.flags.nugetRoot != "" {
		dir = c.flags.nugetRoot
		userConfig = filepath.Join(c.flags.nugetRoot, "NuGet", "NuGet.Config")
	}
	settings, err := ng.LoadSettings(dir, userConfig)
	if err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "read nuget.config")
	}
	return settings, nil
}

// newCache opens the configured response cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.flags.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		store, err := cache.NewRedisCache(ctx, c.config.Cache.RedisURL)
		if err != nil {
			return nil, nerrors.Wrap(nerrors.ErrCodeNetwork, err, "connect to redis cache")
		}
		// The redis instance may be shared with other tools.
		return cache.NewScoped(store, appName+":"), nil
	}
	dir, err := httpCacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// httpCacheDir is where registry responses are stored.
func httpCacheDir() (string, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "http"), nil
}
