package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Document is one parsed YAML mapping. It carries no domain knowledge.
type Document struct {
	Path string
	// Index is the position of the document inside a multi-document file
	Index int
	Data  map[string]any
}

// Loader discovers and parses semantic model documents
type Loader struct {
	config InputConfig
	log    logrus.FieldLogger
	strict bool
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithStrictLoading makes a malformed file abort the whole load. Otherwise
// the file is skipped and reported in LoadResult.Skipped.
func WithStrictLoading(strict bool) LoaderOption {
	return func(l *Loader) {
		l.strict = strict
	}
}

// LoadResult holds the parsed documents and the files skipped in lenient mode
type LoadResult struct {
	Documents []Document
	// Skipped holds one StructuralError per malformed file
	Skipped []error
}

type fileResult struct {
	docs []Document
	err  error
}

// NewLoader creates a new document loader
func NewLoader(log logrus.FieldLogger, cfg InputConfig, opts ...LoaderOption) *Loader {
	cfg.SetDefaults()

	l := &Loader{
		config: cfg,
		log:    log.WithField("component", "loader"),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load discovers and parses every document under the configured paths. Files
// are read in parallel; each worker writes only its own result slot and the
// slots are concatenated in path order afterwards. Read errors always abort;
// malformed files abort only in strict mode.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	files, err := DiscoverPaths(l.config.Paths)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.config.Concurrency)

	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			content, readErr := os.ReadFile(files[i].FilePath)
			if readErr != nil {
				return fmt.Errorf("failed to read %s: %w", files[i].FilePath, readErr)
			}

			docs, parseErr := ParseDocuments(files[i].FilePath, content)
			if parseErr != nil {
				if l.strict {
					return parseErr
				}

				results[i].err = parseErr

				return nil
			}

			results[i].docs = docs

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &LoadResult{Documents: make([]Document, 0, len(files))}

	for i, file := range results {
		if file.err != nil {
			l.log.WithField("path", files[i].FilePath).
				WithError(file.err).
				Warn("Skipping malformed file")

			result.Skipped = append(result.Skipped, file.err)

			continue
		}

		result.Documents = append(result.Documents, file.docs...)
	}

	l.log.WithField("files", len(files)).
		WithField("documents", len(result.Documents)).
		WithField("skipped", len(result.Skipped)).
		Debug("Loaded semantic model documents")

	return result, nil
}

// ParseDocuments parses every document of a YAML stream. Empty documents are
// skipped; a root that is not a mapping is a StructuralError.
func ParseDocuments(path string, content []byte) ([]Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	documents := make([]Document, 0, 1)

	for index := 0; ; index++ {
		var raw any

		err := decoder.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, &StructuralError{Path: path, Reason: err.Error()}
		}

		if raw == nil {
			continue
		}

		data, ok := NormalizeMapping(raw)
		if !ok {
			return nil, &StructuralError{
				Path:   path,
				Reason: fmt.Sprintf("document %d: root must be a mapping, got %T", index, raw),
			}
		}

		documents = append(documents, Document{Path: path, Index: index, Data: data})
	}

	return documents, nil
}

// NormalizeMapping converts YAML mappings with non-string keys into
// map[string]any, recursively. It reports false when raw is not a mapping.
func NormalizeMapping(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = normalizeValue(v)
		}

		return out, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = normalizeValue(v)
		}

		return out, true
	default:
		return nil, false
	}
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case map[string]any, map[any]any:
		out, _ := NormalizeMapping(value)

		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}

		return out
	default:
		return v
	}
}
