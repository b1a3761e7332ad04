package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sdkmigrate/internal/app"
)

type assembliesOptions struct {
	TargetPlatform string
}

func newAssembliesCommand() *cobra.Command {
	opts := assembliesOptions{}
	cmd := &cobra.Command{
		Use:   "assemblies <package-id> <version>",
		Short: "List the assemblies a package provides for a target platform",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemblies(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.TargetPlatform, "target-platform", "", "Target platform (e.g. net472, net8.0)")
	_ = viper.BindPFlag("target_platform", cmd.Flags().Lookup("target-platform"))
	return cmd
}

func runAssemblies(ctx context.Context, cmd *cobra.Command, packageID string, version string, opts assembliesOptions) error {
	service, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Assemblies(ctx, app.AssembliesRequest{
		PackageID:      packageID,
		Version:        version,
		TargetPlatform: resolveString(cmd, opts.TargetPlatform, "target_platform", "target-platform"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(result.Modules) == 0 {
		printWarning(out, "no assemblies known for %s %s", packageID, version)
		return nil
	}
	printTitle(out, "%s %s", packageID, version)
	for _, module := range result.Modules {
		printDetail(out, "%s", module)
	}
	return nil
}
