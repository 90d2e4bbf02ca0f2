package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nugraph/pkg/buildinfo"
	"github.com/matzehuels/nugraph/pkg/config"
	"github.com/matzehuels/nugraph/pkg/dotnet"
	"github.com/matzehuels/nugraph/pkg/framework"
)

// runDiagnose prints what is needed to reproduce a problem report: the
// nugraph build, the package sources, the SDK with its supported frameworks
// and `dotnet --info`. The home directory is
// replaced with ~.
func (c *CLI) runDiagnose(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	home, _ := os.UserHomeDir()
	anonymize := func(s string) string {
		if home == "" {
			return s
		}
		return strings.ReplaceAll(s, home, "~")
	}

	fmt.Fprintf(out, "%s %s\n", appName, strings.ReplaceAll(buildinfo.String(), "\n", ", "))
	fmt.Fprintf(out, "Runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	dn := dotnet.NewCLI(nil, dotnet.WithLogger(c.Logger))
	fmt.Fprintf(out, "SDK: %s\n", anonymize(c.sdkDescription(cmd, dn)))
	if p, err := config.Path(); err == nil {
		fmt.Fprintf(out, "Config: %s\n", anonymize(p))
	}
	if dir, err := config.CacheDir(); err == nil {
		fmt.Fprintf(out, "Cache: %s\n", anonymize(dir))
	}

	if wd, err := os.Getwd(); err == nil {
		if settings, err := c.loadSettings(wd); err == nil {
			sources, _ := settings.EnabledSources()
			for _, src := range sources {
				fmt.Fprintf(out, "Source: %s\n", anonymize(src.String()))
			}
			for _, f := range settings.Files {
				fmt.Fprintf(out, "NuGet config: %s\n", anonymize(f))
			}
		}
		sdk := dotnet.NewSDKFrameworks(dn, nil, c.flags.sdk, wd, loggerFromContext(ctx))
		if fws, err := sdk.SupportedFrameworks(ctx); err == nil {
			fmt.Fprintf(out, "Supported frameworks: %s\n", strings.Join(framework.Names(fws), ", "))
		}
	}

	info, err := dn.Info(ctx)
	if err != nil {
		loggerFromContext(ctx).Debug("dotnet --info", "err", err)
		fmt.Fprintf(out, "\ndotnet --info failed: %s\n", anonymize(err.Error()))
		return nil
	}
	writeSection(out, "dotnet --info", anonymize(info))
	return nil
}

func (c *CLI) sdkDescription(cmd *cobra.Command, dn *dotnet.CLI) string {
	if c.flags.sdk != "" {
		return c.flags.sdk + " (--sdk)"
	}
	wd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	sdk, err := dn.LocateSDK(cmd.Context(), wd)
	if err != nil {
		return fmt.Sprintf("not found (%v)", err)
	}
	return fmt.Sprintf("%s (%s)", sdk.Path, sdk.Version)
}

func writeSection(w io.Writer, title, body string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", title, strings.Repeat("-", len(title)), body)
}
