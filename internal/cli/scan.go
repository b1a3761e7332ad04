package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sdkmigrate/internal/app"
)

type scanOptions struct {
	Root   string
	Output string
}

func newScanCommand() *cobra.Command {
	opts := scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Build a project map from the project files in a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Root, "root", ".", "Directory to scan for project files")
	cmd.Flags().StringVar(&opts.Output, "output", "projects.yaml", "Project map output file")
	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, opts scanOptions) error {
	service, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Scan(ctx, app.ScanRequest{
		Root:   defaultString(resolveString(cmd, opts.Root, "scan.root", "root"), opts.Root),
		Output: defaultString(resolveString(cmd, opts.Output, "scan.output", "output"), opts.Output),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTitle(out, "%d projects", len(result.ProjectMap.Projects))
	if result.PackagesConfig > 0 {
		printWarning(out, "%d projects still use packages.config", result.PackagesConfig)
	}
	if result.ProjectMap.TargetPlatform != "" {
		printInfo(out, "target platform: %s", result.ProjectMap.TargetPlatform)
	}
	if result.OutputPath != "" {
		printSuccess(out, "wrote project map: %s", result.OutputPath)
	}
	return nil
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
