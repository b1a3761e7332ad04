package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sdkmigrate/internal/app"
)

type classifyOptions struct {
	Input string
}

func newClassifyCommand() *cobra.Command {
	opts := classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "List declarations that are probably transitive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Input, "input", "", "Project map file")
	return cmd
}

func runClassify(ctx context.Context, cmd *cobra.Command, opts classifyOptions) error {
	service, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Classify(ctx, app.ClassifyRequest{
		InputPath: resolveString(cmd, opts.Input, "input", "input"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(result.Transitive) == 0 {
		printSuccess(out, "no transitive declarations found")
		return nil
	}
	printTitle(out, "%d probable transitive packages", len(result.Transitive))
	for _, id := range result.Transitive {
		printDetail(out, "%s", id)
	}
	return nil
}
