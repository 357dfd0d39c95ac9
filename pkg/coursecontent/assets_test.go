package coursecontent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

func TestUploadCoverImage(t *testing.T) {
	svc, repo, store := setupTestService(t)
	ctx := context.Background()
	createTestCourse(t, svc, "algebra-1")

	obj, err := svc.UploadCoverImage(ctx, coursecontent.UploadImageRequest{
		CourseID:    "algebra-1",
		FileName:    "Cover Photo.PNG",
		ContentType: "image/png",
		Size:        128,
		Reader:      strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Key, "courses/algebra-1/cover/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".png"), "extension is kept, lowercased: %s", obj.Key)
	assert.NotContains(t, obj.Key, "Cover Photo")

	course, err := repo.GetCourse(ctx, "algebra-1")
	require.NoError(t, err)
	assert.Equal(t, obj.URL, course.CoverImageURL)

	objects, err := store.List(ctx, "courses/algebra-1/cover/")
	require.NoError(t, err)
	assert.Len(t, objects, 1)

	t.Run("oversize upload is rejected", func(t *testing.T) {
		_, err := svc.UploadCoverImage(ctx, coursecontent.UploadImageRequest{
			CourseID:    "algebra-1",
			FileName:    "big.png",
			ContentType: "image/png",
			Size:        (5 << 20) + 1,
			Reader:      strings.NewReader(""),
		})
		assert.True(t, coursecontent.IsValidation(err))
	})

	t.Run("non-image content type is rejected", func(t *testing.T) {
		_, err := svc.UploadCoverImage(ctx, coursecontent.UploadImageRequest{
			CourseID:    "algebra-1",
			FileName:    "cover.pdf",
			ContentType: "application/pdf",
			Size:        16,
			Reader:      strings.NewReader("%PDF"),
		})
		assert.True(t, coursecontent.IsValidation(err))
	})

	t.Run("missing course is rejected", func(t *testing.T) {
		_, err := svc.UploadCoverImage(ctx, coursecontent.UploadImageRequest{
			CourseID:    "nope",
			FileName:    "cover.png",
			ContentType: "image/png",
			Size:        16,
			Reader:      strings.NewReader("png"),
		})
		assert.ErrorIs(t, err, coursecontent.ErrCourseNotFound)
	})
}

func TestUploadMarkdownImage(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))

	t.Run("subchapter target", func(t *testing.T) {
		obj, err := svc.UploadMarkdownImage(ctx, coursecontent.UploadMarkdownImageRequest{
			CourseID:     "algebra-1",
			ChapterToken: "ch-linear",
			TargetToken:  "sub-intro",
			Kind:         coursecontent.ImageKindSubchapter,
			FileName:     "diagram.png",
			ContentType:  "image/png",
			Size:         64,
			Reader:       strings.NewReader("png"),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(obj.Key,
			"courses/algebra-1/markdown-editor/ch-linear/sub-intro/subchapter/images/"))
	})

	t.Run("question target addressed by number", func(t *testing.T) {
		obj, err := svc.UploadMarkdownImage(ctx, coursecontent.UploadMarkdownImageRequest{
			CourseID:     "algebra-1",
			ChapterToken: "1",
			TargetToken:  "1",
			Kind:         coursecontent.ImageKindExplanation,
			FileName:     "plot.jpg",
			ContentType:  "image/jpeg",
			Size:         64,
			Reader:       strings.NewReader("jpg"),
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(obj.Key,
			"courses/algebra-1/markdown-editor/ch-linear/q-1/explanation/images/"))
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := svc.UploadMarkdownImage(ctx, coursecontent.UploadMarkdownImageRequest{
			CourseID:     "algebra-1",
			ChapterToken: "ch-linear",
			TargetToken:  "sub-intro",
			Kind:         "banner",
			FileName:     "x.png",
			ContentType:  "image/png",
			Size:         8,
			Reader:       strings.NewReader("png"),
		})
		assert.True(t, coursecontent.IsValidation(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := svc.UploadMarkdownImage(ctx, coursecontent.UploadMarkdownImageRequest{
			CourseID:     "algebra-1",
			ChapterToken: "ch-linear",
			TargetToken:  "no-such-subchapter",
			Kind:         coursecontent.ImageKindSubchapter,
			FileName:     "x.png",
			ContentType:  "image/png",
			Size:         8,
			Reader:       strings.NewReader("png"),
		})
		assert.ErrorIs(t, err, coursecontent.ErrSubchapterNotFound)
	})
}

func TestListChapterAssets(t *testing.T) {
	svc, _, store := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))

	upload := func(key string) {
		t.Helper()
		_, err := store.Upload(ctx, key, "image/png", strings.NewReader("png"))
		require.NoError(t, err)
	}
	upload("courses/algebra-1/markdown-editor/ch-linear/sub-intro/subchapter/images/a.png")
	upload("courses/algebra-1/markdown-editor/ch-linear/sub-intro/subchapter/images/b.png")
	upload("courses/algebra-1/markdown-editor/ch-linear/q-1/question/images/c.png")
	upload("courses/algebra-1/markdown-editor/ch-linear/q-1/explanation/images/d.png")
	// other chapter, never listed here
	upload("courses/algebra-1/markdown-editor/ch-quadratic/sub-q/subchapter/images/e.png")
	// stray objects under the chapter prefix that don't match the
	// <targetUID>/<kind>/images/<file> template are not surfaced
	upload("courses/algebra-1/markdown-editor/ch-linear/notes.txt")
	upload("courses/algebra-1/markdown-editor/ch-linear/sub-intro/banner/images/g.png")
	upload("courses/algebra-1/markdown-editor/ch-linear/sub-intro/subchapter/thumbs/h.png")

	groups, err := svc.ListChapterAssets(ctx, "algebra-1", "ch-linear")
	require.NoError(t, err)
	require.Len(t, groups, 3)

	byKind := make(map[string]coursecontent.AssetGroup)
	for _, g := range groups {
		byKind[g.Kind] = g
	}

	subGroup := byKind[coursecontent.ImageKindSubchapter]
	assert.Equal(t, "sub-intro", subGroup.TargetUID)
	assert.Equal(t, "Subchapter 1", subGroup.Label)
	assert.Len(t, subGroup.Assets, 2)

	qGroup := byKind[coursecontent.ImageKindQuestion]
	assert.Equal(t, "Question 1", qGroup.Label)

	explGroup := byKind[coursecontent.ImageKindExplanation]
	assert.Equal(t, "Question 1", explGroup.Label)

	t.Run("orphaned target falls back to the raw uid", func(t *testing.T) {
		upload("courses/algebra-1/markdown-editor/ch-linear/gone-uid/subchapter/images/f.png")

		groups, err := svc.ListChapterAssets(ctx, "algebra-1", "ch-linear")
		require.NoError(t, err)

		var found bool
		for _, g := range groups {
			if g.TargetUID == "gone-uid" {
				found = true
				assert.Equal(t, "gone-uid", g.Label)
			}
		}
		assert.True(t, found)
	})
}

func TestDeleteAsset(t *testing.T) {
	svc, _, store := setupTestService(t)
	ctx := context.Background()
	createTestCourse(t, svc, "algebra-1")

	_, err := store.Upload(ctx, "courses/algebra-1/cover/abc.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	t.Run("keys outside the course prefix are rejected", func(t *testing.T) {
		err := svc.DeleteAsset(ctx, "algebra-1", "courses/other-course/cover/abc.png")
		assert.True(t, coursecontent.IsValidation(err))

		err = svc.DeleteAsset(ctx, "algebra-1", "../courses/algebra-1/cover/abc.png")
		assert.True(t, coursecontent.IsValidation(err))
	})

	t.Run("normalized key inside the prefix is deleted", func(t *testing.T) {
		require.NoError(t, svc.DeleteAsset(ctx, "algebra-1", "/courses/algebra-1/cover/abc.png"))

		objects, err := store.List(ctx, "courses/algebra-1/")
		require.NoError(t, err)
		assert.Empty(t, objects)
	})
}
