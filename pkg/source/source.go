package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotExist is wrapped by ReadFile for missing documents.
var ErrNotExist = fs.ErrNotExist

// Source reads T3D documents.
type Source interface {
	// ReadFile returns the whole content of the file at path.
	ReadFile(path string) ([]byte, error)

	// ListFiles returns the files under root whose extension matches ext,
	// ignoring case. Paths are slash-separated, relative to root and sorted.
	ListFiles(root, ext string) ([]string, error)
}

// OSSource reads documents from the local file system.
type OSSource struct {
	// SkipHidden ignores dot files and dot directories while listing.
	SkipHidden bool
}

// NewOSSource creates a file system source.
func NewOSSource() *OSSource {
	return &OSSource{SkipHidden: true}
}

// ReadFile implements Source.
func (s *OSSource) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.FromSlash(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// ListFiles implements Source.
func (s *OSSource) ListFiles(root, ext string) ([]string, error) {
	if ext == "" {
		return nil, fmt.Errorf("extension must not be empty")
	}

	base := filepath.FromSlash(root)
	var files []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if s.SkipHidden && p != base && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ext) {
			return nil
		}

		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// Join joins a source root and a relative slash-separated path.
func Join(root, rel string) string {
	if root == "" {
		return rel
	}
	return path.Join(root, rel)
}
