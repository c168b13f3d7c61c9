package models

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDiscoverPaths(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	writeFile(t, filepath.Join(dir, "orders.yaml"), "semantic_models: []\n")
	writeFile(t, filepath.Join(dir, "nested", "customers.YML"), "semantic_models: []\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# models\n")
	writeFile(t, filepath.Join(other, "metrics.yml"), "metrics: []\n")

	files, err := DiscoverPaths([]string{dir, filepath.Join(dir, "missing"), other, dir})
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.FilePath)
	}

	expected := []string{
		filepath.Join(dir, "nested", "customers.YML"),
		filepath.Join(dir, "orders.yaml"),
		filepath.Join(other, "metrics.yml"),
	}
	assert.ElementsMatch(t, expected, paths)
	assert.IsNonDecreasing(t, paths)
}

func TestIsModelFile(t *testing.T) {
	assert.True(t, IsModelFile("a/b.yaml"))
	assert.True(t, IsModelFile("a/b.YML"))
	assert.False(t, IsModelFile("a/b.json"))
	assert.False(t, IsModelFile("yaml"))
}

func TestParseDocuments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		indexes []int
		wantErr error
	}{
		{name: "single", content: "metrics: []\n", indexes: []int{0}},
		{name: "multi document", content: "metrics: []\n---\nsemantic_models: []\n", indexes: []int{0, 1}},
		{name: "null document skipped", content: "metrics: []\n---\nnull\n", indexes: []int{0}},
		{name: "empty file", content: "", indexes: []int{}},
		{name: "root is a list", content: "- a\n- b\n", wantErr: ErrStructural},
		{name: "invalid yaml", content: "metrics: [\n", wantErr: ErrStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := ParseDocuments("models.yaml", []byte(tt.content))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			indexes := make([]int, 0, len(docs))
			for _, doc := range docs {
				assert.Equal(t, "models.yaml", doc.Path)
				indexes = append(indexes, doc.Index)
			}

			assert.Equal(t, tt.indexes, indexes)
		})
	}
}

func TestNormalizeMapping(t *testing.T) {
	out, ok := NormalizeMapping(map[any]any{
		1:      "one",
		"list": []any{map[any]any{"k": "v"}},
	})
	require.True(t, ok)
	assert.Equal(t, "one", out["1"])
	assert.Equal(t, []any{map[string]any{"k": "v"}}, out["list"])

	_, ok = NormalizeMapping([]any{"x"})
	assert.False(t, ok)
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "b.yaml"), "metrics:\n  - name: second\n")
	writeFile(t, filepath.Join(dir, "a.yaml"), "metrics:\n  - name: first\n---\nmetrics:\n  - name: third\n")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	result, err := NewLoader(logger, InputConfig{Paths: []string{dir}, Concurrency: 2}).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.Skipped)

	docs := result.Documents
	require.Len(t, docs, 3)

	assert.Equal(t, filepath.Join(dir, "a.yaml"), docs[0].Path)
	assert.Equal(t, 0, docs[0].Index)
	assert.Equal(t, 1, docs[1].Index)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), docs[2].Path)
}

func TestLoaderSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "good.yml"), "semantic_models:\n  - name: orders\n")
	writeFile(t, filepath.Join(dir, "bad.yml"), "- just\n- a list\n")
	writeFile(t, filepath.Join(dir, "broken.yml"), "metrics: [\n")

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	tests := []struct {
		name   string
		strict bool
	}{
		{name: "lenient", strict: false},
		{name: "strict", strict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(logger, InputConfig{Paths: []string{dir}}, WithStrictLoading(tt.strict))

			result, err := loader.Load(context.Background())
			if tt.strict {
				require.ErrorIs(t, err, ErrStructural)

				return
			}

			require.NoError(t, err)
			require.Len(t, result.Documents, 1)
			assert.Equal(t, filepath.Join(dir, "good.yml"), result.Documents[0].Path)

			require.Len(t, result.Skipped, 2)

			for _, skipped := range result.Skipped {
				var structural *StructuralError
				require.ErrorAs(t, skipped, &structural)
				assert.Contains(t, []string{filepath.Join(dir, "bad.yml"), filepath.Join(dir, "broken.yml")}, structural.Path)
			}
		})
	}
}

func TestInputConfigDefaults(t *testing.T) {
	cfg := InputConfig{}
	cfg.SetDefaults()

	assert.Equal(t, []string{DefaultInputPath}, cfg.Paths)
	assert.Equal(t, 8, cfg.Concurrency)
}
