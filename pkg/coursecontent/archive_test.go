package coursecontent_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = raw
	}
	return entries
}

func buildArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, raw := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(raw)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExportArchiveLayout(t *testing.T) {
	svc, repo, store := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))

	// A cover asset plus one markdown image.
	_, err := store.Upload(ctx, "courses/algebra-1/cover/abc.png", "image/png", strings.NewReader("cover-bytes"))
	require.NoError(t, err)
	_, err = store.Upload(ctx, "courses/algebra-1/markdown-editor/ch-linear/sub-intro/subchapter/images/d.png", "image/png", strings.NewReader("inline-bytes"))
	require.NoError(t, err)

	course, err := repo.GetCourse(ctx, "algebra-1")
	require.NoError(t, err)
	course.CoverImageURL = "https://cdn.example.com/courses/algebra-1/cover/abc.png?v=3"
	require.NoError(t, repo.UpsertCourse(ctx, course))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportArchive(ctx, "algebra-1", &buf))

	entries := readArchive(t, buf.Bytes())
	require.Contains(t, entries, "meta.json")
	require.Contains(t, entries, "course.json")
	require.Contains(t, entries, "assets/courses/algebra-1/cover/abc.png")
	require.Contains(t, entries, "assets/courses/algebra-1/markdown-editor/ch-linear/sub-intro/subchapter/images/d.png")

	var manifest coursecontent.ArchiveManifest
	require.NoError(t, json.Unmarshal(entries["meta.json"], &manifest))
	assert.Equal(t, "course-archive", manifest.Format)
	assert.Equal(t, 1, manifest.Version)
	assert.Equal(t, "algebra-1", manifest.CourseID)
	assert.Equal(t, 2, manifest.AssetCount)
	assert.Equal(t, "courses/algebra-1/cover/abc.png", manifest.CoverImageKey)
	assert.False(t, manifest.ExportedAt.IsZero())

	var agg coursecontent.EditorCourse
	require.NoError(t, json.Unmarshal(entries["course.json"], &agg))
	assert.Equal(t, "algebra-1", agg.ID)
	assert.Len(t, agg.Chapters, 2)
	assert.Equal(t, "cover-bytes", string(entries["assets/courses/algebra-1/cover/abc.png"]))
}

func TestExportArchiveMissingCourse(t *testing.T) {
	svc, _, _ := setupTestService(t)

	var buf bytes.Buffer
	err := svc.ExportArchive(context.Background(), "nope", &buf)
	assert.ErrorIs(t, err, coursecontent.ErrCourseNotFound)
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()

	source, sourceRepo, sourceStore := setupTestService(t)
	require.NoError(t, source.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))
	_, err := sourceStore.Upload(ctx, "courses/algebra-1/cover/abc.png", "image/png", strings.NewReader("cover-bytes"))
	require.NoError(t, err)
	course, err := sourceRepo.GetCourse(ctx, "algebra-1")
	require.NoError(t, err)
	course.CoverImageURL = "memory://courses/algebra-1/cover/abc.png"
	require.NoError(t, sourceRepo.UpsertCourse(ctx, course))

	var buf bytes.Buffer
	require.NoError(t, source.ExportArchive(ctx, "algebra-1", &buf))

	// Import into an empty deployment.
	target, targetRepo, targetStore := setupTestService(t)
	courseID, err := target.ImportArchive(ctx, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "algebra-1", courseID)

	got, err := target.GetEditorCourse(ctx, "algebra-1")
	require.NoError(t, err)
	want, err := source.GetEditorCourse(ctx, "algebra-1")
	require.NoError(t, err)
	assert.Equal(t, want.Chapters, got.Chapters)

	// The asset made it over byte for byte.
	rc, err := targetStore.Download(ctx, "courses/algebra-1/cover/abc.png")
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "cover-bytes", string(raw))

	// The cover URL points at the re-uploaded asset, not the source URL.
	imported, err := targetRepo.GetCourse(ctx, "algebra-1")
	require.NoError(t, err)
	assert.Equal(t, "memory://courses/algebra-1/cover/abc.png", imported.CoverImageURL)
}

func TestImportArchiveReplacesExistingCourse(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	existing := sampleEditorCourse("algebra-1")
	require.NoError(t, svc.SaveEditorCourse(ctx, existing))

	replacement := sampleEditorCourse("algebra-1")
	replacement.Title = "Imported edition"
	replacement.Chapters = replacement.Chapters[:1]
	raw, err := json.Marshal(replacement)
	require.NoError(t, err)

	_, err = svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
		"course.json": raw,
	}))
	require.NoError(t, err)

	got, err := svc.GetEditorCourse(ctx, "algebra-1")
	require.NoError(t, err)
	assert.Equal(t, "Imported edition", got.Title)
	assert.Len(t, got.Chapters, 1)
}

func TestImportArchiveRejectsBadContainers(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	t.Run("not a zip", func(t *testing.T) {
		_, err := svc.ImportArchive(ctx, []byte("definitely not a zip"))
		var archiveErr *coursecontent.ArchiveError
		require.ErrorAs(t, err, &archiveErr)
	})

	t.Run("missing course.json", func(t *testing.T) {
		_, err := svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"meta.json": []byte(`{"format":"course-archive","version":1}`),
		}))
		var archiveErr *coursecontent.ArchiveError
		require.ErrorAs(t, err, &archiveErr)
		assert.Equal(t, "course.json", archiveErr.Entry)
	})

	t.Run("blank course id", func(t *testing.T) {
		_, err := svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"course.json": []byte(`{"id":"  ","title":"x"}`),
		}))
		var archiveErr *coursecontent.ArchiveError
		require.ErrorAs(t, err, &archiveErr)
	})

	t.Run("malformed course.json", func(t *testing.T) {
		_, err := svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"course.json": []byte(`{"id":`),
		}))
		var archiveErr *coursecontent.ArchiveError
		require.ErrorAs(t, err, &archiveErr)
	})

	t.Run("oversize manifest", func(t *testing.T) {
		_, err := svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"course.json": []byte(`{"id":"algebra-1"}`),
			"meta.json":   bytes.Repeat([]byte("x"), (2<<20)+1),
		}))
		var archiveErr *coursecontent.ArchiveError
		require.ErrorAs(t, err, &archiveErr)
		assert.Equal(t, "meta.json", archiveErr.Entry)
	})
}

// Asset entries that would escape the storage root are skipped; the rest of
// the archive imports normally.
func TestImportArchiveSkipsUnsafeAssetPaths(t *testing.T) {
	svc, _, store := setupTestService(t)
	ctx := context.Background()

	course := sampleEditorCourse("algebra-1")
	raw, err := json.Marshal(course)
	require.NoError(t, err)

	data := buildArchive(t, map[string][]byte{
		"course.json": raw,
		"assets/../../etc/passwd":                      []byte("evil"),
		"assets/courses/algebra-1/cover/ok.png":        []byte("fine"),
		"assets/\\windows\\..\\system32\\evil.dll":     []byte("evil"),
		"assets//absolute/leading/slash.png":           []byte("fine-too"),
	})

	courseID, err := svc.ImportArchive(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, "algebra-1", courseID)

	objects, err := store.List(ctx, "")
	require.NoError(t, err)
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	assert.ElementsMatch(t, []string{
		"courses/algebra-1/cover/ok.png",
		"absolute/leading/slash.png",
	}, keys)
}

// The algebra-1 interchange scenario: one cover asset, manifest records its
// key, and the re-imported course points its cover URL at the re-uploaded
// object.
func TestImportArchiveRelinksCover(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()

	course := sampleEditorCourse("algebra-1")
	course.CoverImageDataURL = "https://old-deployment.example.com/files/abc.png"
	raw, err := json.Marshal(course)
	require.NoError(t, err)

	t.Run("manifest key wins", func(t *testing.T) {
		manifest, err := json.Marshal(coursecontent.ArchiveManifest{
			Format:        "course-archive",
			Version:       1,
			CourseID:      "algebra-1",
			CoverImageKey: "courses/algebra-1/cover/abc.png",
			AssetCount:    1,
		})
		require.NoError(t, err)

		_, err = svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"meta.json":   manifest,
			"course.json": raw,
			"assets/courses/algebra-1/cover/abc.png": []byte("cover-bytes"),
		}))
		require.NoError(t, err)

		imported, err := repo.GetCourse(ctx, "algebra-1")
		require.NoError(t, err)
		assert.Equal(t, "memory://courses/algebra-1/cover/abc.png", imported.CoverImageURL)
	})

	t.Run("filename heuristic fallback without manifest", func(t *testing.T) {
		_, err = svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"course.json": raw,
			"assets/courses/algebra-1/cover/abc.png": []byte("cover-bytes"),
		}))
		require.NoError(t, err)

		imported, err := repo.GetCourse(ctx, "algebra-1")
		require.NoError(t, err)
		assert.Equal(t, "memory://courses/algebra-1/cover/abc.png", imported.CoverImageURL)
	})

	t.Run("no match leaves the stale url", func(t *testing.T) {
		_, err = svc.ImportArchive(ctx, buildArchive(t, map[string][]byte{
			"course.json": raw,
			"assets/courses/algebra-1/cover/unrelated.png": []byte("x"),
		}))
		require.NoError(t, err)

		imported, err := repo.GetCourse(ctx, "algebra-1")
		require.NoError(t, err)
		assert.Equal(t, "https://old-deployment.example.com/files/abc.png", imported.CoverImageURL)
	})
}
