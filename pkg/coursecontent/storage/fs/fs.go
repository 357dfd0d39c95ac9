package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

// Backend is a filesystem implementation of the coursecontent.BlobStore
// interface. Object keys map to file paths below BaseDir.
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // Base directory for storing files
	URLPrefix string // URL prefix assigned to stored objects
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

func (b *Backend) url(key string) string {
	if b.urlPrefix == "" {
		return key
	}
	return b.urlPrefix + "/" + key
}

// Upload writes the content read from reader to the file mapped to key
func (b *Backend) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*coursecontent.StoredObject, error) {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, &coursecontent.StorageError{Backend: "fs", Key: key, Op: "upload", Err: err}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, &coursecontent.StorageError{Backend: "fs", Key: key, Op: "upload", Err: err}
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return nil, &coursecontent.StorageError{Backend: "fs", Key: key, Op: "upload", Err: err}
	}

	return &coursecontent.StoredObject{Key: key, URL: b.url(key)}, nil
}

// Download opens the file mapped to key
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(key))

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, &coursecontent.StorageError{Backend: "fs", Key: key, Op: "download", Err: coursecontent.ErrAssetNotFound}
	} else if err != nil {
		return nil, &coursecontent.StorageError{Backend: "fs", Key: key, Op: "download", Err: err}
	}

	return file, nil
}

// List walks the base directory and returns every object whose key starts
// with prefix, ordered by key.
func (b *Backend) List(ctx context.Context, prefix string) ([]coursecontent.StoredObject, error) {
	var objects []coursecontent.StoredObject

	err := filepath.WalkDir(b.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, coursecontent.StoredObject{Key: key, URL: b.url(key)})
		}
		return nil
	})
	if err != nil {
		return nil, &coursecontent.StorageError{Backend: "fs", Key: prefix, Op: "list", Err: err}
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Delete removes the file mapped to key. Absent keys are a no-op.
func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(key))

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &coursecontent.StorageError{Backend: "fs", Key: key, Op: "delete", Err: err}
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
