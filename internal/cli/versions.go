package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sdkmigrate/internal/app"
)

type versionsOptions struct {
	Prerelease bool
	All        bool
}

func newVersionsCommand() *cobra.Command {
	opts := versionsOptions{}
	cmd := &cobra.Command{
		Use:   "versions <package-id>",
		Short: "Show the latest and available versions of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Prerelease, "prerelease", false, "Include prerelease versions")
	cmd.Flags().BoolVar(&opts.All, "all", false, "List every version")
	_ = viper.BindPFlag("versions.prerelease", cmd.Flags().Lookup("prerelease"))
	return cmd
}

func runVersions(ctx context.Context, cmd *cobra.Command, packageID string, opts versionsOptions) error {
	service, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Versions(ctx, app.VersionsRequest{
		PackageID:         packageID,
		IncludePrerelease: resolveBool(cmd, opts.Prerelease, "versions.prerelease", "prerelease"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTitle(out, "%s", result.PackageID)
	if result.LatestStable != "" {
		printInfo(out, "latest stable: %s", styleHighlight.Render(result.LatestStable))
	}
	if result.Latest != "" && result.Latest != result.LatestStable {
		printInfo(out, "latest: %s", styleHighlight.Render(result.Latest))
	}
	if opts.All {
		printDetail(out, "%s", strings.Join(result.Versions, ", "))
	}
	return nil
}
