package rendering

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/observability"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
	"github.com/sirupsen/logrus"
)

// Generated file kinds
const (
	KindView    = "view"
	KindExplore = "explore"
)

// File is one generated LookML file
type File struct {
	Name    string
	Kind    string
	Content string
}

// RenderProject renders one view file per model and one explore file per
// explore. Output order follows the input order.
func (r *Renderer) RenderProject(modelList []*models.ProcessedModel, explores []*explore.Explore) ([]File, error) {
	files := make([]File, 0, len(modelList)+len(explores))
	sources := make(map[string]string, len(modelList))

	for _, model := range modelList {
		sources[model.Name] = model.Source

		view, err := r.RenderView(model)
		if err != nil {
			return nil, fmt.Errorf("failed to render view %s: %w", model.Name, err)
		}

		header, err := r.header(view.Name, KindView, []string{model.Source})
		if err != nil {
			return nil, err
		}

		files = append(files, File{
			Name:    view.Name + ".view.lkml",
			Kind:    KindView,
			Content: lookml.Marshal(&lookml.File{Header: header, Blocks: []*lookml.Block{view}}),
		})
	}

	for _, e := range explores {
		exploreSources := []string{sources[e.Fact.Name]}
		for _, joined := range e.JoinedModels() {
			exploreSources = append(exploreSources, sources[joined])
		}

		header, err := r.header(e.Name, KindExplore, exploreSources)
		if err != nil {
			return nil, err
		}

		files = append(files, File{
			Name: e.Name + ".explore.lkml",
			Kind: KindExplore,
			Content: lookml.Marshal(&lookml.File{
				Header: header,
				Attrs:  []lookml.Attr{lookml.String("include", "*.view.lkml")},
				Blocks: r.RenderExplore(e),
			}),
		})
	}

	return files, nil
}

// header renders the header template with the deduplicated, sorted sources
func (r *Renderer) header(name, kind string, sources []string) ([]string, error) {
	seen := make(map[string]bool, len(sources))
	unique := make([]string, 0, len(sources))

	for _, source := range sources {
		if source != "" && !seen[source] {
			seen[source] = true
			unique = append(unique, source)
		}
	}

	sort.Strings(unique)

	line, err := r.templates.Execute(templateHeader, HeaderData{Name: name, Kind: kind, Sources: unique})
	if err != nil {
		return nil, err
	}

	if line == "" {
		return nil, nil
	}

	return []string{line}, nil
}

// WriteFiles writes files into dir and returns the written paths. With
// dryRun nothing is written and the paths that would be written are
// returned.
func WriteFiles(log logrus.FieldLogger, dir string, files []File, dryRun bool) ([]string, error) {
	log = log.WithField("component", "writer")

	if !dryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	paths := make([]string, 0, len(files))

	for _, file := range files {
		path := filepath.Join(dir, file.Name)

		if dryRun {
			log.WithField("path", path).Info("Would write file")
		} else {
			if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil { //nolint:gosec // generated files are committed
				return nil, fmt.Errorf("failed to write %s: %w", path, err)
			}

			log.WithField("path", path).Debug("Wrote file")
			observability.RecordFileGenerated(file.Kind)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
