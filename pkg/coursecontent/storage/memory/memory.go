package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

// Backend is an in-memory implementation of the coursecontent.BlobStore
// interface, used for tests and local development.
type Backend struct {
	mu              sync.RWMutex
	objects         map[string][]byte
	objectsMimeType map[string]string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:         make(map[string][]byte),
		objectsMimeType: make(map[string]string),
	}
}

func (b *Backend) url(key string) string {
	return "memory://" + key
}

// Upload stores the content read from reader under key
func (b *Backend) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*coursecontent.StoredObject, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &coursecontent.StorageError{Backend: "memory", Key: key, Op: "upload", Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	b.objectsMimeType[key] = contentType

	return &coursecontent.StoredObject{Key: key, URL: b.url(key)}, nil
}

// Download returns the content stored under key
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, &coursecontent.StorageError{Backend: "memory", Key: key, Op: "download", Err: coursecontent.ErrAssetNotFound}
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// List returns every stored object whose key starts with prefix, ordered by key
func (b *Backend) List(ctx context.Context, prefix string) ([]coursecontent.StoredObject, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var objects []coursecontent.StoredObject
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, coursecontent.StoredObject{Key: key, URL: b.url(key)})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	return objects, nil
}

// Delete removes the content stored under key. Absent keys are a no-op.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	delete(b.objectsMimeType, key)
	return nil
}
