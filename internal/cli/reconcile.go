package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sdkmigrate/internal/app"
	"sdkmigrate/internal/types"
)

type reconcileOptions struct {
	Input             string
	Strategy          string
	OutputDir         string
	Format            string
	Apply             bool
	ApplyOutput       string
	FetchDependencies bool
	MaxConcurrency    int
}

func newReconcileCommand() *cobra.Command {
	opts := reconcileOptions{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Detect and settle package version conflicts across projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Input, "input", "", "Project map file")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", string(types.StrategyUseHighest), "Conflict strategy (highest, lowest, latest-stable, most-common, interactive)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Report output directory")
	cmd.Flags().StringVar(&opts.Format, "format", "yaml", "Report format (yaml, json, toml)")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "Apply the resolution and save the project map")
	cmd.Flags().StringVar(&opts.ApplyOutput, "apply-output", "", "Where --apply saves the project map (default: the input file)")
	cmd.Flags().BoolVar(&opts.FetchDependencies, "fetch-dependencies", false, "Read package dependency sets from the registry")
	cmd.Flags().IntVar(&opts.MaxConcurrency, "max-concurrency", 0, "Projects processed concurrently")

	_ = viper.BindPFlag("input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("reconcile.strategy", cmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("reconcile.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("reconcile.apply", cmd.Flags().Lookup("apply"))
	_ = viper.BindPFlag("reconcile.apply_output", cmd.Flags().Lookup("apply-output"))
	return cmd
}

func runReconcile(ctx context.Context, cmd *cobra.Command, opts reconcileOptions) error {
	cfg, err := app.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if flagChanged(cmd, "fetch-dependencies") {
		cfg.Reconcile.FetchDependencies = opts.FetchDependencies
	}
	if concurrency := resolveInt(cmd, opts.MaxConcurrency, "reconcile.max_concurrency", "max-concurrency"); concurrency > 0 {
		cfg.Reconcile.MaxConcurrency = concurrency
	}

	strategy := resolveString(cmd, opts.Strategy, "reconcile.strategy", "strategy")
	var serviceOpts []app.ServiceOption
	if strings.EqualFold(strings.TrimSpace(strategy), string(types.StrategyInteractive)) {
		serviceOpts = append(serviceOpts, app.WithPrompter(newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())))
	}
	service, err := app.NewService(ctx, cfg, serviceOpts...)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Reconcile(ctx, app.ReconcileRequest{
		InputPath:   resolveString(cmd, opts.Input, "input", "input"),
		Strategy:    strategy,
		OutputDir:   resolveString(cmd, opts.OutputDir, "output", "output"),
		Format:      resolveString(cmd, opts.Format, "reconcile.format", "format"),
		Apply:       resolveBool(cmd, opts.Apply, "reconcile.apply", "apply"),
		ApplyOutput: resolveString(cmd, opts.ApplyOutput, "reconcile.apply_output", "apply-output"),
	})
	if err != nil {
		return err
	}
	printReconcileSummary(cmd, result)
	return nil
}

func printReconcileSummary(cmd *cobra.Command, result app.ReconcileResult) {
	out := cmd.OutOrStdout()
	report := result.Report
	printTitle(out, "reconcile %s", result.RunID)
	printInfo(out, "%d projects, %d conflicts, %d transitive declarations", len(result.Projects), len(report.Conflicts), len(report.Transitive))
	for _, conflict := range report.Conflicts {
		printInfo(out, "%s %s %s", conflict.PackageID, iconArrow, styleHighlight.Render(report.Resolution.ResolvedVersions[conflict.PackageID]))
	}
	for _, update := range report.Resolution.ProjectsNeedingUpdate {
		printChange(out, update.ProjectPath+" "+update.PackageID, update.OldVersion, update.NewVersion)
	}
	for _, note := range report.Resolution.Notes {
		printWarning(out, "%s", note)
	}
	if result.Applied > 0 {
		printSuccess(out, "applied %d version changes", result.Applied)
	}
	if result.ProjectMapPath != "" {
		printSuccess(out, "wrote project map: %s", result.ProjectMapPath)
	}
	printDetail(out, "cache hit rate %.0f%%", report.Cache.HitRate*100)
	if result.ReportPath != "" {
		printSuccess(out, "wrote report: %s", result.ReportPath)
	}
}
