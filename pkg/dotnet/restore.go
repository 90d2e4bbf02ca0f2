package dotnet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/observability"
)

// Environment pins the CLI to non-interactive English output.
var Environment = []string{
	"DOTNET_NOLOGO=1",
	"DOTNET_CLI_UI_LANGUAGE=en",
	"DOTNET_SKIP_FIRST_TIME_EXPERIENCE=1",
	"DOTNET_CLI_TELEMETRY_OPTOUT=1",
	"MSBUILDTERMINALLOGGER=false",
}

// RestoreResult is what a successful restore reports about a project.
type RestoreResult struct {
	ProjectAssetsFile string
	// TargetFrameworks lists the project frameworks as written in the
	// project, never empty.
	TargetFrameworks []string
	// CopyLocalPackages are the ids of packages copied to the output. An
	// empty set means no restriction.
	CopyLocalPackages []string
}

// Restorer restores a project. Source is a project file, a directory holding
// one, or empty for the current directory.
type Restorer interface {
	Restore(ctx context.Context, source string) (*RestoreResult, error)
}

// CLI runs dotnet commands.
type CLI struct {
	runner     Runner
	executable string
	runtime    string
	env        []string
	logger     *log.Logger
}

// Option configures a CLI.
type Option func(*CLI)

// WithExecutable replaces the dotnet executable.
func WithExecutable(path string) Option { return func(c *CLI) { c.executable = path } }

// WithRuntime passes --runtime to restore.
func WithRuntime(rid string) Option { return func(c *CLI) { c.runtime = rid } }

// WithEnv adds environment variables to every command.
func WithEnv(env ...string) Option { return func(c *CLI) { c.env = append(c.env, env...) } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *CLI) { c.logger = l } }

// NewCLI creates a CLI. A nil runner spawns real processes.
func NewCLI(runner Runner, opts ...Option) *CLI {
	if runner == nil {
		runner = NewExecRunner()
	}
	c := &CLI{runner: runner, executable: "dotnet", logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// ForRuntime returns a copy of c that restores for rid.
func (c *CLI) ForRuntime(rid string) Restorer {
	cp := *c
	cp.runtime = rid
	return &cp
}

func (c *CLI) command(dir string, args ...string) Command {
	return Command{
		Name: c.executable,
		Args: args,
		Dir:  dir,
		Env:  append(slices.Clone(Environment), c.env...),
	}
}

// run executes a command, mapping a missing executable to the SDK-missing
// restore failure.
func (c *CLI) run(ctx context.Context, cmd Command) (*Output, error) {
	c.logger.Debug("running", "cmd", cmd.String(), "dir", cmd.Dir)
	out, err := c.runner.Run(ctx, cmd)
	switch {
	case err == nil:
		return out, nil
	case ctx.Err() != nil:
		return nil, nerrors.Cancelled(ctx.Err())
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return nil, nerrors.SDKMissing(err)
	}
	return nil, err
}

type restorePayload struct {
	Properties struct {
		ProjectAssetsFile *string `json:"ProjectAssetsFile"`
		TargetFramework   *string `json:"TargetFramework"`
		TargetFrameworks  *string `json:"TargetFrameworks"`
	} `json:"Properties"`
	Items struct {
		RuntimeCopyLocalItems []copyLocalItem `json:"RuntimeCopyLocalItems"`
		NativeCopyLocalItems  []copyLocalItem `json:"NativeCopyLocalItems"`
	} `json:"Items"`
}

type copyLocalItem struct {
	NuGetPackageID *string `json:"NuGetPackageId"`
}

// RestoreArgs are the restore arguments for source.
func (c *CLI) RestoreArgs(source string) []string {
	args := []string{"restore"}
	if source != "" {
		args = append(args, source)
	}
	args = append(args,
		"--getProperty:ProjectAssetsFile",
		"--getProperty:TargetFramework",
		"--getProperty:TargetFrameworks",
		"--getItem:RuntimeCopyLocalItems",
		"--getItem:NativeCopyLocalItems",
		// reported ProjectAssetsFile stays empty without this target
		"--getTargetResult:_LoadRestoreGraphEntryPoints",
	)
	if c.runtime != "" {
		args = append(args, "--runtime", c.runtime)
	}
	return args
}

// Restore restores source. A first attempt that reports an empty
// ProjectAssetsFile is retried exactly once; a second empty result is an
// INVALID_MANIFEST error.
func (c *CLI) Restore(ctx context.Context, source string) (*RestoreResult, error) {
	dir, arg, err := restoreTarget(source)
	if err != nil {
		return nil, err
	}

	const attempts = 2
	hooks := observability.Restore()
	hooks.OnRestoreStart(ctx, arg)
	for attempt := 1; ; attempt++ {
		start := time.Now()
		res, err := c.restoreOnce(ctx, dir, arg)
		hooks.OnRestoreComplete(ctx, arg, attempt, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if res.ProjectAssetsFile != "" {
			return res, nil
		}
		if attempt == attempts {
			return nil, nerrors.New(nerrors.ErrCodeInvalidManifest, "project has not been restored: ProjectAssetsFile is empty")
		}
		c.logger.Debug("empty ProjectAssetsFile, restoring again", "source", arg)
	}
}

func (c *CLI) restoreOnce(ctx context.Context, dir, source string) (*RestoreResult, error) {
	cmd := c.command(dir, c.RestoreArgs(source)...)
	out, err := c.run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		wd := dir
		if wd == "" {
			wd, _ = os.Getwd()
		}
		return nil, nerrors.ClassifyRestore(out.ExitCode, wd, cmd.String(), out.Combined())
	}
	return parseRestore(out)
}

func parseRestore(out *Output) (*RestoreResult, error) {
	if len(out.JSON) == 0 {
		return nil, nerrors.New(nerrors.ErrCodeInvalidManifest, "dotnet restore returned no JSON payload")
	}
	var p restorePayload
	if err := json.Unmarshal(out.JSON[len(out.JSON)-1], &p); err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "decode dotnet restore output")
	}

	res := &RestoreResult{}
	if p.Properties.ProjectAssetsFile != nil {
		res.ProjectAssetsFile = strings.TrimSpace(*p.Properties.ProjectAssetsFile)
	}
	if res.ProjectAssetsFile == "" {
		return res, nil
	}

	if p.Properties.TargetFrameworks != nil {
		res.TargetFrameworks = splitFrameworks(*p.Properties.TargetFrameworks)
	}
	if len(res.TargetFrameworks) == 0 && p.Properties.TargetFramework != nil {
		if tf := strings.TrimSpace(*p.Properties.TargetFramework); tf != "" {
			res.TargetFrameworks = []string{tf}
		}
	}
	if len(res.TargetFrameworks) == 0 {
		return nil, nerrors.New(nerrors.ErrCodeInvalidManifest, "either TargetFrameworks or TargetFramework is missing")
	}

	seen := make(map[string]bool)
	for _, item := range slices.Concat(p.Items.RuntimeCopyLocalItems, p.Items.NativeCopyLocalItems) {
		if item.NuGetPackageID == nil || *item.NuGetPackageID == "" {
			continue
		}
		id := *item.NuGetPackageID
		if key := strings.ToLower(id); !seen[key] {
			seen[key] = true
			res.CopyLocalPackages = append(res.CopyLocalPackages, id)
		}
	}
	slices.Sort(res.CopyLocalPackages)
	return res, nil
}

// splitFrameworks splits a semicolon list, trimming and de-duplicating.
func splitFrameworks(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if key := strings.ToLower(part); part != "" && !seen[key] {
			seen[key] = true
			out = append(out, part)
		}
	}
	return out
}

// restoreTarget returns the working directory and restore argument for a
// source. A file runs in its parent directory.
func restoreTarget(source string) (dir, arg string, err error) {
	if source == "" {
		return "", "", nil
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", nerrors.Wrap(nerrors.ErrCodeInvalidInput, err, "%s", source)
	}
	if info.IsDir() {
		return abs, abs, nil
	}
	return filepath.Dir(abs), abs, nil
}
