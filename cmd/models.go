package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethpandaops/semlook/pkg/dependencies"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// modelsCmd represents the models command group
//
//nolint:gochecknoglobals // Cobra commands are typically global
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect semantic models",
	Long:  `Commands for listing semantic models and visualizing the join graph.`,
}

// listCmd lists all built models
//
//nolint:gochecknoglobals // Cobra commands are typically global
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all semantic models",
	Long:  `List all semantic models with their entities, field counts, table and source file.`,
	RunE:  runModelsList,
}

// graphCmd visualizes the join graph
//
//nolint:gochecknoglobals // Cobra commands are typically global
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Visualize the entity join graph",
	Long: `Visualize the join graph built from primary and foreign entities: connected
components, isolated models and, with --fact, the join distance of every model
from the fact. --path from,to prints the shortest join chain between two models.`,
	RunE: runModelsGraph,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(listCmd)
	modelsCmd.AddCommand(graphCmd)

	addInputFlags(listCmd)
	addInputFlags(graphCmd)

	graphCmd.Flags().Bool("dot", false, "Output in DOT format for graphviz")
	graphCmd.Flags().String("fact", "", "Show join levels from this model")
	graphCmd.Flags().String("path", "", "Show the shortest join chain between two models (from,to)")
}

// loadModels builds the selected models without failing on validation
func loadModels(cmd *cobra.Command) ([]*models.ProcessedModel, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// Default to error level so tables are not interleaved with info logs
	if !cmd.Flags().Changed("log-level") {
		cfg.Logging = logrus.ErrorLevel.String()
	}

	cfg.Validation.Strict = false

	p := newPipeline(setupLogger(cmd, cfg), cfg)
	defer p.finish()

	out, err := p.build(context.Background())
	if err != nil {
		return nil, err
	}

	return out.models, nil
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	modelList, err := loadModels(cmd)
	if err != nil {
		return err
	}

	printModelTable(cmd.OutOrStdout(), modelList)

	return nil
}

func printModelTable(w io.Writer, modelList []*models.ProcessedModel) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Primary", "Foreign", "Dims", "Measures", "Metrics", "Table", "Source"})

	for _, model := range modelList {
		foreign := make([]string, 0)
		for _, entity := range model.ForeignEntities() {
			foreign = append(foreign, entity.Name)
		}

		tableRef := "-"
		if model.DataModel != nil {
			tableRef = model.DataModel.TableRef()
		}

		t.AppendRow(table.Row{
			model.Name,
			orDash(model.PrimaryEntityName()),
			orDash(strings.Join(foreign, ", ")),
			len(model.Dimensions),
			len(model.Measures),
			len(model.Metrics),
			tableRef,
			model.Source,
		})
	}

	t.Render()
}

func runModelsGraph(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	modelList, err := loadModels(cmd)
	if err != nil {
		return err
	}

	graph := dependencies.NewJoinGraph()
	graph.BuildGraph(modelList)

	w := cmd.OutOrStdout()

	if dotFlag, _ := cmd.Flags().GetBool("dot"); dotFlag {
		_, _ = fmt.Fprintln(w, graph.GenerateDOTFormat())

		return nil
	}

	if fact, _ := cmd.Flags().GetString("fact"); fact != "" {
		levels, err := graph.Levels(fact)
		if err != nil {
			return err
		}

		printLevels(w, fact, levels)

		return nil
	}

	if pathFlag, _ := cmd.Flags().GetString("path"); pathFlag != "" {
		chain, err := joinChain(graph, pathFlag)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(w, chain)

		return nil
	}

	printGraphInfo(w, graph.GetGraphInfo(), graph.DanglingForeignEntities())

	return nil
}

// joinChain resolves a "from,to" pair to "from -> ... -> to"
func joinChain(graph *dependencies.JoinGraph, pair string) (string, error) {
	from, to, ok := strings.Cut(pair, ",")
	if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPathFlag, pair)
	}

	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	path, err := graph.Path(from, to)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, pair)
	}

	if len(path) == 0 {
		return "", fmt.Errorf("%w between %s and %s", ErrNoJoinPath, from, to)
	}

	return strings.Join(path, " -> "), nil
}

func printLevels(w io.Writer, fact string, levels map[int][]string) {
	_, _ = fmt.Fprintf(w, "Join levels from %s:\n", fact)
	_, _ = fmt.Fprintln(w, "=================")

	depths := make([]int, 0, len(levels))
	for depth := range levels {
		depths = append(depths, depth)
	}

	sort.Ints(depths)

	for _, depth := range depths {
		_, _ = fmt.Fprintf(w, "\nLevel %d:\n", depth)
		for _, name := range levels[depth] {
			_, _ = fmt.Fprintf(w, "  • %s\n", name)
		}
	}
}

func printGraphInfo(w io.Writer, info *dependencies.GraphInfo, dangling []dependencies.JoinEdge) {
	_, _ = fmt.Fprintln(w, "Join Graph:")
	_, _ = fmt.Fprintln(w, "===========")

	for i, component := range info.Components {
		_, _ = fmt.Fprintf(w, "\nComponent %d:\n", i+1)

		for _, name := range component {
			_, _ = fmt.Fprintf(w, "  • %s", name)
			if neighbours := info.Neighbours[name]; len(neighbours) > 0 {
				_, _ = fmt.Fprintf(w, "\n    ↔ joins: %s", strings.Join(neighbours, ", "))
			}

			_, _ = fmt.Fprintln(w)
		}
	}

	if len(dangling) > 0 {
		_, _ = fmt.Fprintln(w, "\nForeign entities without a primary model:")
		for _, edge := range dangling {
			_, _ = fmt.Fprintf(w, "  • %s.%s\n", edge.From, edge.Entity)
		}
	}

	_, _ = fmt.Fprintln(w, "\nStatistics:")
	_, _ = fmt.Fprintln(w, "===========")
	_, _ = fmt.Fprintf(w, "Total models: %d\n", info.TotalModels)
	_, _ = fmt.Fprintf(w, "Total joins: %d\n", info.TotalEdges)
	_, _ = fmt.Fprintf(w, "Components: %d\n", len(info.Components))
	_, _ = fmt.Fprintf(w, "Isolated models: %d\n", len(info.Isolated))
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}

	return value
}
