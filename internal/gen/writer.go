package gen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files, creating their directories.
func WriteFiles(files []GeneratedFile) error {
	for _, file := range files {
		if err := os.MkdirAll(file.Dir, dirPerm); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		if err := os.WriteFile(file.Path(), file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}

// Stale returns the paths of files whose content on disk differs from the
// generated content, including missing files.
func Stale(files []GeneratedFile) ([]string, error) {
	var out []string

	for _, file := range files {
		disk, err := os.ReadFile(file.Path())

		switch {
		case errors.Is(err, os.ErrNotExist):
			out = append(out, file.Path())
		case err != nil:
			return nil, fmt.Errorf("reading file %s: %w", file.Path(), err)
		case !bytes.Equal(disk, file.Content):
			out = append(out, file.Path())
		}
	}

	return out, nil
}

// Existing returns the paths of files already present on disk.
func Existing(files []GeneratedFile) []string {
	var out []string

	for _, file := range files {
		if _, err := os.Stat(file.Path()); err == nil {
			out = append(out, file.Path())
		}
	}

	return out
}
