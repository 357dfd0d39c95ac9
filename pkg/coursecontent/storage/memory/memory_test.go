package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

func TestUploadAndDownload(t *testing.T) {
	backend := New()
	ctx := context.Background()

	obj, err := backend.Upload(ctx, "courses/c1/cover/a.png", "image/png", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "courses/c1/cover/a.png", obj.Key)
	assert.Equal(t, "memory://courses/c1/cover/a.png", obj.URL)

	rc, err := backend.Download(ctx, "courses/c1/cover/a.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestUploadOverwrites(t *testing.T) {
	backend := New()
	ctx := context.Background()

	_, err := backend.Upload(ctx, "k", "text/plain", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = backend.Upload(ctx, "k", "text/plain", strings.NewReader("two"))
	require.NoError(t, err)

	rc, err := backend.Download(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestDownloadMissing(t *testing.T) {
	backend := New()

	_, err := backend.Download(context.Background(), "missing")
	assert.ErrorIs(t, err, coursecontent.ErrAssetNotFound)

	var storageErr *coursecontent.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "memory", storageErr.Backend)
}

func TestListByPrefix(t *testing.T) {
	backend := New()
	ctx := context.Background()

	keys := []string{
		"courses/c1/cover/a.png",
		"courses/c1/ch-1/sub-1/images/b.png",
		"courses/c2/cover/c.png",
	}
	for _, key := range keys {
		_, err := backend.Upload(ctx, key, "image/png", strings.NewReader("x"))
		require.NoError(t, err)
	}

	objects, err := backend.List(ctx, "courses/c1/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	// Sorted by key.
	assert.Equal(t, "courses/c1/ch-1/sub-1/images/b.png", objects[0].Key)
	assert.Equal(t, "courses/c1/cover/a.png", objects[1].Key)

	all, err := backend.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDelete(t *testing.T) {
	backend := New()
	ctx := context.Background()

	_, err := backend.Upload(ctx, "k", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, backend.Delete(ctx, "k"))
	_, err = backend.Download(ctx, "k")
	assert.ErrorIs(t, err, coursecontent.ErrAssetNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, backend.Delete(ctx, "k"))
}
