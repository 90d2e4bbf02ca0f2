package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nugraph/pkg/config"
	"github.com/matzehuels/nugraph/pkg/dotnet"
	nerrors "github.com/matzehuels/nugraph/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached registry responses and SDK frameworks",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete cached registry responses and supported SDK frameworks",
		Long: `Delete the file cache: registry responses and the frameworks each SDK supports.
A redis cache configured in the configuration file expires on its own.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.CacheDir()
			if err != nil {
				return nerrors.Wrap(nerrors.ErrCodeInternal, err, "get cache dir")
			}
			count, err := clearCache(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// clearCache removes the framework cache and every registry response under
// dir and returns the number of files removed.
func clearCache(dir string) (int, error) {
	count := 0
	fc := dotnet.NewFrameworkCache(dir)
	if _, err := os.Stat(fc.Path()); err == nil {
		if err := fc.Clear(); err != nil {
			return count, err
		}
		count++
	}

	httpDir := filepath.Join(dir, "http")
	err := filepath.WalkDir(httpDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // missing or unreadable, keep going
		}
		if !d.IsDir() && os.Remove(path) == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	if err := os.RemoveAll(httpDir); err != nil {
		return count, fmt.Errorf("remove %s: %w", httpDir, err)
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.CacheDir()
			if err != nil {
				return nerrors.Wrap(nerrors.ErrCodeInternal, err, "get cache dir")
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
