package storage

import (
	"archive/zip"
	"errors"
	"io"
	"path/filepath"
)

var MemberNotFoundErr error = errors.New("Archive member not found")

type Entry struct {
	Name string
	Size uint64
}

// Container is a read-only collection of named byte streams. Entries are
// returned in archive order, which is stable across passes.
type Container interface {
	Location() string
	Entries() ([]Entry, error)
	Open(name string) (io.ReadCloser, error)
	Close() error
}

type zipContainer struct {
	path   string
	reader *zip.ReadCloser
}

func OpenZip(path string) (Container, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	reader, err := zip.OpenReader(abs)
	if err != nil {
		return nil, err
	}
	return &zipContainer{
		path:   abs,
		reader: reader,
	}, nil
}

func (this *zipContainer) Location() string {
	return this.path
}

func (this *zipContainer) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(this.reader.File))
	for _, f := range this.reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			Name: f.Name,
			Size: f.UncompressedSize64,
		})
	}
	return entries, nil
}

func (this *zipContainer) Open(name string) (io.ReadCloser, error) {
	for _, f := range this.reader.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, MemberNotFoundErr
}

func (this *zipContainer) Close() error {
	return this.reader.Close()
}
