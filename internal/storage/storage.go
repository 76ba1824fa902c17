// Package storage lists and reads the spreadsheet files the loader imports.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	// NotFile marks entries that cannot be read as a file, such as directories or
	// dangling links. They are listed so callers can report them.
	NotFile bool
}

// Source is a flat collection of files addressed by key.
type Source interface {
	// List returns every entry in the source ordered by key.
	List(ctx context.Context) ([]ObjectInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Location describes the source for log lines.
	Location() string
}
