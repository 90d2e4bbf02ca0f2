package dotnet

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	nerrors "github.com/matzehuels/nugraph/pkg/errors"
	"github.com/matzehuels/nugraph/pkg/framework"
	"github.com/matzehuels/nugraph/pkg/project"
)

// SDK is an installed .NET SDK.
type SDK struct {
	Version string
	Path    string // e.g. /usr/share/dotnet/sdk/8.0.410
}

// ParseSDKList parses `dotnet --list-sdks` output, lines of the form
// "8.0.410 [/usr/share/dotnet/sdk]".
func ParseSDKList(out string) []SDK {
	var sdks []SDK
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		version, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(rest, "["), "]")
		sdks = append(sdks, SDK{Version: version, Path: filepath.Join(base, version)})
	}
	return sdks
}

// LocateSDK returns the SDK dotnet selects in dir, honouring global.json.
func (c *CLI) LocateSDK(ctx context.Context, dir string) (SDK, error) {
	version, err := c.output(ctx, dir, "--version")
	if err != nil {
		return SDK{}, err
	}
	list, err := c.output(ctx, dir, "--list-sdks")
	if err != nil {
		return SDK{}, err
	}
	for _, sdk := range ParseSDKList(list) {
		if sdk.Version == version {
			return sdk, nil
		}
	}
	return SDK{}, fmt.Errorf("SDK %s is not in the installed SDK list", version)
}

// Info returns `dotnet --info` output.
func (c *CLI) Info(ctx context.Context) (string, error) {
	return c.output(ctx, "", "--info")
}

func (c *CLI) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := c.command(dir, args...)
	out, err := c.run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("%s: exit code %d: %s", cmd, out.ExitCode, strings.TrimSpace(out.Combined()))
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}

type itemsPayload struct {
	Items struct {
		SupportedTargetFramework []struct {
			Identity *string `json:"Identity"`
		} `json:"SupportedTargetFramework"`
	} `json:"Items"`
}

// EvaluateSupportedFrameworks asks an SDK which frameworks it can target by
// evaluating a throwaway netstandard2.0 project. sdkPath, when set, points
// MSBuild at that SDK's Sdks directory.
func (c *CLI) EvaluateSupportedFrameworks(ctx context.Context, sdkPath, tempRoot string) ([]framework.Framework, error) {
	p, err := project.New(project.Options{Framework: framework.NetStandard20, Root: tempRoot})
	if err != nil {
		return nil, err
	}
	defer p.Close()

	cmd := c.command(p.Dir(), "msbuild", p.Path(), "-getItem:SupportedTargetFramework")
	if sdkPath != "" {
		cmd.Env = append(cmd.Env, "MSBuildSDKsPath="+filepath.Join(sdkPath, "Sdks"))
	}
	out, err := c.run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, nerrors.ClassifyRestore(out.ExitCode, p.Dir(), cmd.String(), out.Combined())
	}
	if len(out.JSON) == 0 {
		return nil, nerrors.New(nerrors.ErrCodeInvalidManifest, "dotnet msbuild returned no JSON payload")
	}

	var payload itemsPayload
	if err := json.Unmarshal(out.JSON[len(out.JSON)-1], &payload); err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidManifest, err, "decode dotnet msbuild output")
	}
	var fws []framework.Framework
	for _, item := range payload.Items.SupportedTargetFramework {
		if item.Identity == nil {
			continue
		}
		fw, err := framework.Parse(*item.Identity)
		if err != nil {
			c.logger.Debug("skipping supported framework", "identity", *item.Identity, "err", err)
			continue
		}
		fws = append(fws, fw)
	}
	return framework.Dedupe(fws), nil
}
