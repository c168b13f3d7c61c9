// Package models holds the semantic model domain: discovery and parsing of
// YAML documents, typed entities, variant expansion and metric references.
package models

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File extensions recognised as semantic model documents
const (
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// ModelFile represents a discovered model file
type ModelFile struct {
	FilePath string
	Content  []byte
}

// DiscoverPaths walks every path and returns the YAML files found, sorted by
// path. Missing paths are skipped. File contents are not read.
func DiscoverPaths(paths []string) ([]ModelFile, error) {
	seen := make(map[string]bool)
	files := make([]ModelFile, 0)

	for _, path := range paths {
		discovered, err := discoverInPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to discover models in %s: %w", path, err)
		}

		for _, file := range discovered {
			if seen[file.FilePath] {
				continue
			}

			seen[file.FilePath] = true
			files = append(files, file)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].FilePath < files[j].FilePath
	})

	return files, nil
}

func discoverInPath(basePath string) ([]ModelFile, error) {
	var files []ModelFile

	err := filepath.Walk(basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil // Skip if directory doesn't exist
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		if IsModelFile(path) {
			files = append(files, ModelFile{FilePath: path})
		}

		return nil
	})

	return files, err
}

// IsModelFile reports whether the path has a YAML extension
func IsModelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	return ext == ExtYAML || ext == ExtYML
}
