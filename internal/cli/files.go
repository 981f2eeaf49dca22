package cli

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// dirFS returns a filesystem rooted at dir.
func dirFS(dir string) (billy.Filesystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	return osfs.New(abs), nil
}

// openFile opens a local file for reading.
func openFile(path string) (billy.File, error) {
	fs, err := dirFS(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	f, err := fs.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// createFile creates or truncates a local file.
func createFile(path string) (billy.File, error) {
	fs, err := dirFS(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	f, err := fs.Create(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}
