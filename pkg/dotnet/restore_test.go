package dotnet

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
)

func TestRestore(t *testing.T) {
	runner := &fakeRunner{t: t, outputs: []*Output{
		jsonOutput(t, restoreJSON("/p/obj/project.assets.json", "", "net8.0; net6.0;net8.0;", "Serilog", "serilog", "Newtonsoft.Json")),
	}}
	cli := NewCLI(runner)

	res, err := cli.Restore(context.Background(), "")
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if res.ProjectAssetsFile != "/p/obj/project.assets.json" {
		t.Errorf("ProjectAssetsFile = %q", res.ProjectAssetsFile)
	}
	if want := []string{"net8.0", "net6.0"}; !reflect.DeepEqual(res.TargetFrameworks, want) {
		t.Errorf("TargetFrameworks = %v, want %v", res.TargetFrameworks, want)
	}
	if want := []string{"Newtonsoft.Json", "Serilog"}; !reflect.DeepEqual(res.CopyLocalPackages, want) {
		t.Errorf("CopyLocalPackages = %v, want %v", res.CopyLocalPackages, want)
	}

	cmd := runner.calls[0]
	if cmd.Name != "dotnet" || cmd.Args[0] != "restore" {
		t.Errorf("command = %s", cmd)
	}
	for _, want := range []string{"DOTNET_NOLOGO=1", "DOTNET_CLI_UI_LANGUAGE=en"} {
		if !slices.Contains(cmd.Env, want) {
			t.Errorf("env missing %s", want)
		}
	}
}

func TestRestoreSingularFramework(t *testing.T) {
	runner := &fakeRunner{t: t, outputs: []*Output{
		jsonOutput(t, restoreJSON("/p/obj/project.assets.json", "netstandard2.0", "")),
	}}
	res, err := NewCLI(runner).Restore(context.Background(), "")
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if !reflect.DeepEqual(res.TargetFrameworks, []string{"netstandard2.0"}) {
		t.Errorf("TargetFrameworks = %v", res.TargetFrameworks)
	}
	if len(res.CopyLocalPackages) != 0 {
		t.Errorf("CopyLocalPackages = %v, want none", res.CopyLocalPackages)
	}
}

func TestRestoreMissingItemsIsNoRestriction(t *testing.T) {
	runner := &fakeRunner{t: t, outputs: []*Output{
		jsonOutput(t, map[string]any{"Properties": map[string]string{"ProjectAssetsFile": "/a.json", "TargetFramework": "net8.0"}}),
	}}
	res, err := NewCLI(runner).Restore(context.Background(), "")
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if res.CopyLocalPackages != nil {
		t.Errorf("CopyLocalPackages = %v, want nil", res.CopyLocalPackages)
	}
}

func TestRestoreMissingFrameworks(t *testing.T) {
	runner := &fakeRunner{t: t, outputs: []*Output{
		jsonOutput(t, restoreJSON("/a.json", "", " ; ")),
	}}
	_, err := NewCLI(runner).Restore(context.Background(), "")
	if !nerrors.Is(err, nerrors.ErrCodeInvalidManifest) {
		t.Errorf("Restore() error = %v, want INVALID_MANIFEST", err)
	}
}

func TestRestoreRetry(t *testing.T) {
	empty := jsonOutput(t, restoreJSON("", "net8.0", ""))
	full := jsonOutput(t, restoreJSON("/p/obj/project.assets.json", "net8.0", ""))

	t.Run("second attempt succeeds", func(t *testing.T) {
		runner := &fakeRunner{t: t, outputs: []*Output{empty, full}}
		res, err := NewCLI(runner).Restore(context.Background(), "")
		if err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
		if res.ProjectAssetsFile != "/p/obj/project.assets.json" {
			t.Errorf("ProjectAssetsFile = %q", res.ProjectAssetsFile)
		}
		if len(runner.calls) != 2 {
			t.Errorf("calls = %d, want 2", len(runner.calls))
		}
	})

	t.Run("two empty results", func(t *testing.T) {
		runner := &fakeRunner{t: t, outputs: []*Output{empty, empty}}
		_, err := NewCLI(runner).Restore(context.Background(), "")
		if !nerrors.Is(err, nerrors.ErrCodeInvalidManifest) {
			t.Errorf("Restore() error = %v, want INVALID_MANIFEST", err)
		}
		if len(runner.calls) != 2 {
			t.Errorf("calls = %d, want exactly 2", len(runner.calls))
		}
	})

	t.Run("first attempt succeeds", func(t *testing.T) {
		runner := &fakeRunner{t: t, outputs: []*Output{full}}
		if _, err := NewCLI(runner).Restore(context.Background(), ""); err != nil {
			t.Fatalf("Restore() error: %v", err)
		}
		if len(runner.calls) != 1 {
			t.Errorf("calls = %d, want 1", len(runner.calls))
		}
	})
}

func TestRestoreFailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		output *Output
		kind   nerrors.RestoreKind
	}{
		{"old sdk", &Output{ExitCode: 1, Stderr: []byte("MSBUILD : error MSB1001: Unknown switch.")}, nerrors.RestoreSDK},
		{"no project", &Output{ExitCode: 1, Stdout: []byte("MSBUILD : error MSB1003: Specify a project or solution file.")}, nerrors.RestoreNoProject},
		{"solution", &Output{ExitCode: 1, Stdout: []byte("error msb1063: Solution file not supported")}, nerrors.RestoreSolution},
		{"generic", &Output{ExitCode: 3, Stdout: []byte("error NU1101: Unable to find package Nope")}, nerrors.RestoreGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{t: t, outputs: []*Output{tt.output}}
			_, err := NewCLI(runner).Restore(context.Background(), "")
			var re *nerrors.RestoreError
			if !errors.As(err, &re) {
				t.Fatalf("Restore() error = %v, want RestoreError", err)
			}
			if re.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", re.Kind, tt.kind)
			}
			if tt.kind == nerrors.RestoreGeneric {
				if re.ExitCode != 3 || !strings.Contains(re.Output, "NU1101") || !strings.Contains(re.Command, "--getProperty:ProjectAssetsFile") {
					t.Errorf("generic failure = %+v", re)
				}
				if re.WorkingDirectory == "" {
					t.Error("WorkingDirectory is empty")
				}
			}
		})
	}
}

func TestRestoreSDKMissing(t *testing.T) {
	runner := &fakeRunner{t: t, errs: []error{&exec.Error{Name: "dotnet", Err: exec.ErrNotFound}}}
	_, err := NewCLI(runner).Restore(context.Background(), "")
	var re *nerrors.RestoreError
	if !errors.As(err, &re) || re.Kind != nerrors.RestoreSDK {
		t.Errorf("Restore() error = %v, want SDK RestoreError", err)
	}
}

func TestRestoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &fakeRunner{t: t, errs: []error{context.Canceled}}
	_, err := NewCLI(runner).Restore(ctx, "")
	if !nerrors.IsCancelled(err) {
		t.Errorf("Restore() error = %v, want cancelled", err)
	}
	if nerrors.ExitCode(err) != nerrors.ExitCancelled {
		t.Errorf("ExitCode = %d", nerrors.ExitCode(err))
	}
}

func TestRestoreSourceWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "App.csproj")
	if err := os.WriteFile(proj, []byte("<Project />"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		source string
	}{
		{"file", proj},
		{"directory", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{t: t, outputs: []*Output{jsonOutput(t, restoreJSON("/a.json", "net8.0", ""))}}
			if _, err := NewCLI(runner, WithRuntime("linux-x64")).Restore(context.Background(), tt.source); err != nil {
				t.Fatalf("Restore() error: %v", err)
			}
			cmd := runner.calls[0]
			if cmd.Dir != dir {
				t.Errorf("Dir = %q, want %q", cmd.Dir, dir)
			}
			if cmd.Args[1] != tt.source {
				t.Errorf("source arg = %q, want %q", cmd.Args[1], tt.source)
			}
			if n := len(cmd.Args); cmd.Args[n-2] != "--runtime" || cmd.Args[n-1] != "linux-x64" {
				t.Errorf("args = %v, want trailing --runtime linux-x64", cmd.Args)
			}
		})
	}

	_, err := NewCLI(&fakeRunner{t: t}).Restore(context.Background(), filepath.Join(dir, "missing.csproj"))
	if !nerrors.Is(err, nerrors.ErrCodeInvalidInput) {
		t.Errorf("missing source error = %v, want INVALID_INPUT", err)
	}
}

func TestSplitFrameworks(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"net8.0", []string{"net8.0"}},
		{"net8.0;net6.0", []string{"net8.0", "net6.0"}},
		{" net8.0 ; ;NET8.0; net472 ", []string{"net8.0", "net472"}},
		{"", nil},
		{";;", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := splitFrameworks(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitFrameworks(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestForRuntime(t *testing.T) {
	cli := NewCLI(&fakeRunner{t: t})
	rid := cli.ForRuntime("linux-x64").(*CLI)

	if !slices.Contains(rid.RestoreArgs("p.csproj"), "linux-x64") {
		t.Errorf("RestoreArgs() = %v, want --runtime linux-x64", rid.RestoreArgs("p.csproj"))
	}
	if slices.Contains(cli.RestoreArgs("p.csproj"), "--runtime") {
		t.Error("ForRuntime() modified the original CLI")
	}
}
