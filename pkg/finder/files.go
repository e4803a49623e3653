// Package finder discovers the per-kind CSV tables in an input directory.
package finder

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gridcase/csv2mgc/pkg/model"
)

// FindCSVFiles walks root and returns every .csv file, skipping hidden
// directories.
func FindCSVFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// FindKindFiles returns the CSV files under root whose base name names a
// component kind, e.g. "junctions.csv", "Pipe.csv" or "storage.CSV". Files
// of each kind are sorted by path.
func FindKindFiles(root string) (map[model.Kind][]string, error) {
	files, err := FindCSVFiles(root)
	if err != nil {
		return nil, err
	}

	byKind := make(map[model.Kind][]string)
	for _, path := range files {
		kind, ok := KindOf(path)
		if !ok {
			continue
		}
		byKind[kind] = append(byKind[kind], path)
	}
	for _, paths := range byKind {
		sort.Strings(paths)
	}
	return byKind, nil
}

// KindOf returns the component kind named by the base name of path.
func KindOf(path string) (model.Kind, bool) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	kind, err := model.ParseKind(stem)
	if err != nil {
		return "", false
	}
	return kind, true
}
