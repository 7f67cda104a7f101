package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/configuration"
	"alfreds-toolbox/infrastructure/utils"
	"alfreds-toolbox/server"

	"github.com/spf13/cobra"
)

// containerFactory is swapped in tests.
var containerFactory = func(ctx context.Context) (*server.Container, error) {
	if configuration.LoadEnvFromFile("config.env", ".env") > 0 {
		configuration.Reload()
	}
	return server.NewContainer(ctx, configuration.C)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "toolboxctl",
		Short:         "Operate the Alfreds Toolbox backend from the shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newEpisodesCommand(),
		newAnalyticsCommand(),
		newPreloadCommand(),
		newClearCacheCommand(),
		newValidateLicenseCommand(),
		newValidatePropertyCommand(),
		newTokenCommand(),
	)
	return root
}

func withContainer(run func(ctx context.Context, c *server.Container, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		c, err := containerFactory(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return run(ctx, c, cmd.OutOrStdout(), args)
	}
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newEpisodesCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "episodes <show-id>",
		Short: "Fetch podcast episodes through the cache",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx context.Context, c *server.Container, out io.Writer, args []string) error {
			episodes, err := c.Spotify.GetShowEpisodes(ctx, args[0], limit, offset)
			if err != nil {
				return err
			}
			return printJSON(out, episodes)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "episodes per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "episodes to skip")
	return cmd
}

func newAnalyticsCommand() *cobra.Command {
	var cacheOnly bool
	cmd := &cobra.Command{
		Use:   "analytics [range]",
		Short: "Print the dashboard report for a date range",
		Args:  cobra.MaximumNArgs(1),
		RunE: withContainer(func(ctx context.Context, c *server.Container, out io.Writer, args []string) error {
			rangeName := string(model.RangeLast7Days)
			if len(args) == 1 {
				rangeName = args[0]
			}
			report, err := c.Analytics.GetAnalyticsData(ctx, rangeName, cacheOnly)
			if err != nil {
				return err
			}
			return printJSON(out, report)
		}),
	}
	cmd.Flags().BoolVar(&cacheOnly, "cache-only", false, "fail instead of calling Google Analytics on a miss")
	return cmd
}

func newPreloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preload [range...]",
		Short: "Warm the analytics cache for the given or default ranges",
		RunE: withContainer(func(ctx context.Context, c *server.Container, out io.Writer, args []string) error {
			ranges := model.PreloadRanges
			if len(args) > 0 {
				ranges = make([]model.RangeName, 0, len(args))
				for _, arg := range args {
					ranges = append(ranges, model.ParseRangeName(arg))
				}
			}
			for _, name := range ranges {
				c.Analytics.PreloadRange(ctx, name)
				fmt.Fprintf(out, "preloaded %s\n", name)
			}
			return nil
		}),
	}
}

func newClearCacheCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "clear-cache <spotify|analytics|license> [show-id]",
		Short:     "Drop cached upstream responses",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"spotify", "analytics", "license"},
		RunE: withContainer(func(ctx context.Context, c *server.Container, out io.Writer, args []string) error {
			var (
				removed int
				err     error
			)
			switch args[0] {
			case "spotify":
				showID := ""
				if len(args) == 2 {
					showID = args[1]
				}
				removed, err = c.Spotify.ClearCache(ctx, showID)
			case "analytics":
				removed, err = c.Analytics.ClearCache(ctx)
			case "license":
				c.License.ClearCache(ctx)
			default:
				return fmt.Errorf("unknown cache %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "cleared %s cache (%d entries)\n", args[0], removed)
			return nil
		}),
	}
}

func newValidateLicenseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-license [key]",
		Short: "Check a license key, or the stored one, against the license API",
		Args:  cobra.MaximumNArgs(1),
		RunE: withContainer(func(ctx context.Context, c *server.Container, out io.Writer, args []string) error {
			var key *string
			if len(args) == 1 {
				key = &args[0]
			}
			return printJSON(out, c.License.ValidateLicense(ctx, key))
		}),
	}
}

func newValidatePropertyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-property",
		Short: "Check that the configured GA4 property is reachable",
		Args:  cobra.NoArgs,
		RunE: withContainer(func(ctx context.Context, c *server.Container, out io.Writer, _ []string) error {
			return printJSON(out, c.Analytics.ValidateProperty(ctx))
		}),
	}
}

func newTokenCommand() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a dashboard bearer token with manage_options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configuration.LoadEnvFromFile("config.env", ".env") > 0 {
				configuration.Reload()
			}
			secret := configuration.C.App.SecretKey
			if secret == "" {
				return fmt.Errorf("%w: SECRET_KEY is empty", model.ErrConfigurationMissing)
			}
			token, err := utils.GenerateAdminToken(user, []string{model.CapabilityManageOptions}, ttl, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "admin", "user name stored in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
