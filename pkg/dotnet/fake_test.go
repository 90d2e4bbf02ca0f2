package dotnet

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// fakeRunner replays canned outputs in order and records the commands.
type fakeRunner struct {
	t       *testing.T
	outputs []*Output
	errs    []error
	calls   []Command
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) (*Output, error) {
	f.calls = append(f.calls, cmd)
	i := len(f.calls) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.outputs) {
		f.t.Fatalf("unexpected command #%d: %s", i+1, cmd)
	}
	return f.outputs[i], nil
}

// jsonOutput builds a successful output whose stdout carries log lines
// around an indented JSON payload, the way MSBuild prints it.
func jsonOutput(t *testing.T, payload any) *Output {
	t.Helper()
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	stdout := "  Determining projects to restore...\n" + string(data) + "\n  All projects are up-to-date for restore.\n"
	return &Output{Stdout: []byte(stdout), JSON: ScanJSON(strings.NewReader(stdout))}
}

func restoreJSON(assets, tf, tfs string, copyLocal ...string) map[string]any {
	var items []map[string]any
	for _, id := range copyLocal {
		items = append(items, map[string]any{"Identity": "/nuget/" + id + ".dll", "NuGetPackageId": id})
	}
	return map[string]any{
		"Properties": map[string]string{
			"ProjectAssetsFile": assets,
			"TargetFramework":   tf,
			"TargetFrameworks":  tfs,
		},
		"Items": map[string]any{
			"RuntimeCopyLocalItems": items,
			"NativeCopyLocalItems":  []any{map[string]any{"Identity": "native.so"}},
		},
	}
}
