package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// validateCmd checks that every metric's measures can be joined
//
//nolint:gochecknoglobals // Cobra commands are typically global
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate semantic models and metric connectivity",
	Long: `Validate builds the semantic models and checks that every metric's
measures are reachable from its primary entity through foreign key joins.
Issues are grouped by metric with suggestions. With --strict any error
fails the command.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addInputFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := newPipeline(setupLogger(cmd, cfg), cfg)
	defer p.finish()

	out, buildErr := p.build(context.Background())
	if out == nil {
		return buildErr
	}

	writeValidation(cmd.OutOrStdout(), out)

	return buildErr
}

// writeValidation prints skipped elements followed by the connectivity report
func writeValidation(w io.Writer, out *buildOutput) {
	for _, err := range out.project.Errors {
		_, _ = fmt.Fprintf(w, "invalid: %v\n", err)
	}

	_, _ = fmt.Fprint(w, out.validation.Report())
}
