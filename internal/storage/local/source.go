// Package local reads loader input from a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sqlassist/sqlassist/internal/storage"
)

// Source lists the entries directly inside a directory. Symlinks are followed;
// subdirectories are listed as NotFile and not descended into.
type Source struct {
	dir string
}

func New(dir string) (*Source, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat data directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %q is not a directory", dir)
	}
	return &Source{dir: dir}, nil
}

func (s *Source) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory %q: %w", s.dir, err)
	}
	objects := make([]storage.ObjectInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// os.Stat follows symlinks so linked data files load like regular ones.
		info, err := os.Stat(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				objects = append(objects, storage.ObjectInfo{Key: entry.Name(), NotFile: true})
				continue
			}
			return nil, fmt.Errorf("stat %q: %w", entry.Name(), err)
		}
		if !info.Mode().IsRegular() {
			objects = append(objects, storage.ObjectInfo{Key: entry.Name(), NotFile: true})
			continue
		}
		objects = append(objects, storage.ObjectInfo{
			Key:          entry.Name(),
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		})
	}
	storage.SortByKey(objects)
	return objects, nil
}

func (s *Source) Open(_ context.Context, key string) (io.ReadCloser, error) {
	cleaned, err := storage.CleanKey(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(cleaned)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("open %q: %w", key, err)
	}
	return file, nil
}

func (s *Source) Location() string { return s.dir }
