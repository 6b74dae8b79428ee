// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively searches rootPath for files ending with
// extension and returns their paths in lexical order, so callers that merge
// files get a stable precedence.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		return nil, errors.New("fsutil: extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
