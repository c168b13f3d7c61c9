package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// generateCmd renders LookML from semantic models
//
//nolint:gochecknoglobals // Cobra commands are typically global
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate LookML views and explores from semantic models",
	Long: `Generate loads every semantic model file under the input paths, builds and
validates the models, infers one explore per fact model and writes
<view>.view.lkml and <explore>.explore.lkml files to the output directory.

Examples:
  # Generate from ./semantic_models into ./lookml
  semlook generate -i semantic_models -o lookml

  # Only the orders explore, with a date selector view
  semlook generate -i models -o out --fact orders --calendar

  # Show what would be written
  semlook generate -i models --dry-run`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addInputFlags(generateCmd)
	generateCmd.Flags().StringP("output", "o", "", "output directory")
	generateCmd.Flags().String("schema", "", "replace the schema of every data model")
	generateCmd.Flags().String("view-prefix", "", "prefix for view names")
	generateCmd.Flags().String("explore-prefix", "", "prefix for explore names")
	generateCmd.Flags().Bool("dry-run", false, "list the files without writing them")
	generateCmd.Flags().StringSlice("fact", nil, "fact models to build explores for (default: every model with measures)")
	generateCmd.Flags().Bool("no-reverse-joins", false, "do not join models referencing the fact")
	generateCmd.Flags().Bool("calendar", false, "add a date selector view to each explore")
	generateCmd.Flags().String("pop-strategy", "", "period-over-period rendering: native or dynamic")
}

// addInputFlags registers the flags shared by every command that loads models
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("input", "i", nil, "semantic model files or directories")
	cmd.Flags().Bool("strict", false, "abort on the first invalid element or validation error")
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(cmd *cobra.Command) (*CLIConfig, error) {
	cfg, err := LoadCLIConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("input") {
		cfg.Input.Paths, _ = flags.GetStringSlice("input")
	}

	if flags.Changed("strict") {
		strict, _ := flags.GetBool("strict")
		cfg.Strict = strict
		cfg.Validation.Strict = strict
	}

	stringFlags := map[string]*string{
		"output":         &cfg.Output.Dir,
		"schema":         &cfg.Output.Schema,
		"view-prefix":    &cfg.Output.ViewPrefix,
		"explore-prefix": &cfg.Output.ExplorePrefix,
		"pop-strategy":   &cfg.PoP.Strategy,
	}

	for name, target := range stringFlags {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}

	if flags.Lookup("dry-run") != nil && flags.Changed("dry-run") {
		cfg.Output.DryRun, _ = flags.GetBool("dry-run")
	}

	if flags.Lookup("fact") != nil && flags.Changed("fact") {
		cfg.Explores.Facts, _ = flags.GetStringSlice("fact")
	}

	if flags.Lookup("no-reverse-joins") != nil && flags.Changed("no-reverse-joins") {
		noReverse, _ := flags.GetBool("no-reverse-joins")
		cfg.Explores.ReverseJoins = !noReverse
	}

	if flags.Lookup("calendar") != nil && flags.Changed("calendar") {
		cfg.Explores.Calendar, _ = flags.GetBool("calendar")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := setupLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPipeline(log, cfg)
	defer p.finish()

	out, err := p.build(ctx)
	if err != nil {
		if out != nil && out.validation != nil {
			writeValidation(cmd.ErrOrStderr(), out)
		}

		return err
	}

	for _, issue := range out.validation.Issues {
		log.WithField("type", issue.Type).Warn(issue.String())
	}

	explores, err := p.explores(out.models)
	if err != nil {
		return err
	}

	paths, err := p.render(out.models, explores)
	if err != nil {
		return err
	}

	verb := "Wrote"
	if cfg.Output.DryRun {
		verb = "Would write"
	}

	for _, path := range paths {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, path)
	}

	log.WithFields(logrus.Fields{
		"views":    len(out.models),
		"explores": len(explores),
		"output":   cfg.Output.Dir,
	}).Info("Generation complete")

	return nil
}
