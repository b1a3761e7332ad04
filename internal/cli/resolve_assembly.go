package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sdkmigrate/internal/app"
)

type resolveAssemblyOptions struct {
	TargetPlatform string
}

func newResolveAssemblyCommand() *cobra.Command {
	opts := resolveAssemblyOptions{}
	cmd := &cobra.Command{
		Use:   "resolve-assembly <assembly-name>",
		Short: "Find the package that ships an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolveAssembly(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.TargetPlatform, "target-platform", "", "Target platform (e.g. net472, net8.0)")
	_ = viper.BindPFlag("target_platform", cmd.Flags().Lookup("target-platform"))
	return cmd
}

func runResolveAssembly(ctx context.Context, cmd *cobra.Command, name string, opts resolveAssemblyOptions) error {
	service, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.ResolveAssembly(ctx, app.ResolveAssemblyRequest{
		AssemblyName:   name,
		TargetPlatform: resolveString(cmd, opts.TargetPlatform, "target_platform", "target-platform"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !result.Found {
		printWarning(out, "no package found for %s", name)
		return nil
	}
	printSuccess(out, "%s %s %s@%s", name, iconArrow, styleHighlight.Render(result.Result.PackageID), result.Result.Version)
	if len(result.Result.AdditionalPackages) > 0 {
		printDetail(out, "also add: %s", strings.Join(result.Result.AdditionalPackages, ", "))
	}
	if result.Result.Notes != "" {
		printDetail(out, "%s", result.Result.Notes)
	}
	return nil
}
