package coursecontent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
	"github.com/edustack/course-content/pkg/coursecontent/repo/memory"
	memorystorage "github.com/edustack/course-content/pkg/coursecontent/storage/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []coursecontent.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []coursecontent.Option{},
			expectError: true,
		},
		{
			name: "repository only should fail",
			options: []coursecontent.Option{
				coursecontent.WithRepository(memory.New()),
			},
			expectError: true,
		},
		{
			name: "with repository and blob store should succeed",
			options: []coursecontent.Option{
				coursecontent.WithRepository(memory.New()),
				coursecontent.WithBlobStore(memorystorage.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := coursecontent.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestGetCourse(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()
	createTestCourse(t, svc, "algebra-1")

	course, err := svc.GetCourse(ctx, "algebra-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Course", course.Title)

	t.Run("missing course", func(t *testing.T) {
		_, err := svc.GetCourse(ctx, "nope")
		assert.ErrorIs(t, err, coursecontent.ErrCourseNotFound)
	})

	t.Run("blank id is rejected", func(t *testing.T) {
		_, err := svc.GetCourse(ctx, "  ")
		assert.True(t, coursecontent.IsValidation(err))
	})

	t.Run("never backfills identifiers", func(t *testing.T) {
		legacy := &coursecontent.Chapter{CourseID: "algebra-1", Number: 1, Name: "Legacy"}
		require.NoError(t, repo.CreateChapter(ctx, legacy))

		_, err := svc.GetCourse(ctx, "algebra-1")
		require.NoError(t, err)

		stored, err := repo.GetChapterByID(ctx, legacy.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.UID)
	})
}

func setupTestService(t *testing.T) (coursecontent.Service, *memory.Repository, *memorystorage.Backend) {
	t.Helper()

	repo := memory.New()
	store := memorystorage.New()

	svc, err := coursecontent.New(
		coursecontent.WithRepository(repo),
		coursecontent.WithBlobStore(store),
	)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, repo, store
}

func createTestCourse(t *testing.T, svc coursecontent.Service, id string) *coursecontent.Course {
	t.Helper()

	course, err := svc.UpdateCourseMeta(context.Background(), coursecontent.UpdateCourseMetaRequest{
		CourseID:    id,
		Title:       "Test Course",
		Description: "A course used by the tests",
		Language:    "en",
	})
	require.NoError(t, err)
	return course
}

func sampleEditorCourse(id string) *coursecontent.EditorCourse {
	return &coursecontent.EditorCourse{
		ID:        id,
		Title:     "Algebra",
		Language:  "en",
		Published: true,
		TargetStudents: coursecontent.TargetStudents{
			SchoolYears: []int{7, 8},
			Classes:     []string{"7a"},
		},
		Chapters: []coursecontent.EditorChapter{
			{
				ID:     "ch-linear",
				Number: 1,
				Name:   "Linear equations",
				Subchapters: []coursecontent.EditorSubchapter{
					{ID: "sub-intro", Number: 1, Name: "Introduction", Markdown: "# Intro"},
					{ID: "sub-solving", Number: 2, Name: "Solving", Markdown: "x = 1"},
				},
				Questions: []coursecontent.EditorQuestion{
					{
						ID:                  "q-1",
						QuestionNumber:      1,
						QuestionMarkdown:    "Solve [1] + [2]",
						ExplanationMarkdown: "Add both sides",
						SlotOptions: [][]coursecontent.EditorOption{
							{
								{OptionIndex: 0, OptionContent: "1", IsCorrect: true},
								{OptionIndex: 1, OptionContent: "2", IsCorrect: false},
							},
							{
								{OptionIndex: 0, OptionContent: "x", IsCorrect: true},
							},
						},
					},
				},
			},
			{
				ID:          "ch-quadratic",
				Number:      2,
				Name:        "Quadratic equations",
				Subchapters: []coursecontent.EditorSubchapter{{ID: "sub-q", Number: 1, Name: "Roots"}},
				Questions:   []coursecontent.EditorQuestion{},
			},
		},
	}
}

func TestUpdateCourseMeta(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	t.Run("creates a missing course", func(t *testing.T) {
		course, err := svc.UpdateCourseMeta(ctx, coursecontent.UpdateCourseMetaRequest{
			CourseID: "algebra-1",
			Title:    "Algebra",
			Language: "en",
		})
		require.NoError(t, err)
		assert.Equal(t, "algebra-1", course.ID)
		assert.Equal(t, "Algebra", course.Title)
		assert.False(t, course.CreatedAt.IsZero())
	})

	t.Run("updates without touching the tree", func(t *testing.T) {
		require.NoError(t, svc.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))

		_, err := svc.UpdateCourseMeta(ctx, coursecontent.UpdateCourseMetaRequest{
			CourseID:  "algebra-1",
			Title:     "Algebra, second edition",
			Language:  "en",
			Published: true,
		})
		require.NoError(t, err)

		agg, err := svc.GetEditorCourse(ctx, "algebra-1")
		require.NoError(t, err)
		assert.Equal(t, "Algebra, second edition", agg.Title)
		assert.Len(t, agg.Chapters, 2)
	})

	t.Run("rejects a blank id", func(t *testing.T) {
		_, err := svc.UpdateCourseMeta(ctx, coursecontent.UpdateCourseMetaRequest{CourseID: "  "})
		assert.True(t, coursecontent.IsValidation(err))
	})
}

func TestSaveEditorCourseRoundTrip(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	in := sampleEditorCourse("algebra-1")
	require.NoError(t, svc.SaveEditorCourse(ctx, in))

	out, err := svc.GetEditorCourse(ctx, "algebra-1")
	require.NoError(t, err)

	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.TargetStudents, out.TargetStudents)
	require.Len(t, out.Chapters, 2)

	ch := out.Chapters[0]
	assert.Equal(t, "ch-linear", ch.ID)
	assert.Equal(t, 1, ch.Number)
	require.Len(t, ch.Subchapters, 2)
	assert.Equal(t, "sub-intro", ch.Subchapters[0].ID)
	assert.Equal(t, "# Intro", ch.Subchapters[0].Markdown)

	require.Len(t, ch.Questions, 1)
	q := ch.Questions[0]
	assert.Equal(t, "q-1", q.ID)
	require.Len(t, q.SlotOptions, 2)
	require.Len(t, q.SlotOptions[0], 2)
	assert.True(t, q.SlotOptions[0][0].IsCorrect)
	require.Len(t, q.SlotOptions[1], 1)

	// question without options serializes as an empty matrix, not null
	assert.NotNil(t, out.Chapters[1].Questions)
}

func TestSaveEditorCourseReplacesEverything(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))

	// Second save drops a chapter and a subchapter; nothing from the first
	// save may survive.
	second := sampleEditorCourse("algebra-1")
	second.Chapters = second.Chapters[:1]
	second.Chapters[0].Subchapters = second.Chapters[0].Subchapters[:1]
	second.Chapters[0].Questions = nil
	require.NoError(t, svc.SaveEditorCourse(ctx, second))

	out, err := svc.GetEditorCourse(ctx, "algebra-1")
	require.NoError(t, err)
	require.Len(t, out.Chapters, 1)
	assert.Equal(t, "ch-linear", out.Chapters[0].ID)
	assert.Len(t, out.Chapters[0].Subchapters, 1)
	assert.Empty(t, out.Chapters[0].Questions)
}

func TestSaveEditorCoursePreservesCallerUIDs(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	in := sampleEditorCourse("algebra-1")
	in.Chapters[0].ID = "a-very-custom-uid"
	require.NoError(t, svc.SaveEditorCourse(ctx, in))

	out, err := svc.GetEditorCourse(ctx, "algebra-1")
	require.NoError(t, err)
	assert.Equal(t, "a-very-custom-uid", out.Chapters[0].ID)
}

func TestGetEditorCourseBackfillsMissingUIDs(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()
	createTestCourse(t, svc, "legacy-course")

	// Rows written before stable identifiers existed carry no UID.
	chapter := &coursecontent.Chapter{CourseID: "legacy-course", Number: 1, Name: "Old chapter"}
	require.NoError(t, repo.CreateChapter(ctx, chapter))
	sub := &coursecontent.Subchapter{ChapterID: chapter.ID, Number: 1, Name: "Old subchapter"}
	require.NoError(t, repo.CreateSubchapter(ctx, sub))
	question := &coursecontent.Question{ChapterID: chapter.ID, Number: 1, Markdown: "?"}
	require.NoError(t, repo.CreateQuestion(ctx, question))

	first, err := svc.GetEditorCourse(ctx, "legacy-course")
	require.NoError(t, err)
	require.Len(t, first.Chapters, 1)

	assert.True(t, strings.HasPrefix(first.Chapters[0].ID, "chapter_"))
	assert.True(t, strings.HasPrefix(first.Chapters[0].Subchapters[0].ID, "subchapter_"))
	assert.True(t, strings.HasPrefix(first.Chapters[0].Questions[0].ID, "question_"))

	// Backfill is persisted: a second load returns identical identifiers.
	second, err := svc.GetEditorCourse(ctx, "legacy-course")
	require.NoError(t, err)
	assert.Equal(t, first.Chapters[0].ID, second.Chapters[0].ID)
	assert.Equal(t, first.Chapters[0].Subchapters[0].ID, second.Chapters[0].Subchapters[0].ID)
	assert.Equal(t, first.Chapters[0].Questions[0].ID, second.Chapters[0].Questions[0].ID)
}

func TestLegacyOptionsSynthesizeSingleSlot(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()
	createTestCourse(t, svc, "legacy-course")

	chapter := &coursecontent.Chapter{CourseID: "legacy-course", Number: 1, Name: "Ch", UID: "ch-1"}
	require.NoError(t, repo.CreateChapter(ctx, chapter))
	question := &coursecontent.Question{ChapterID: chapter.ID, Number: 1, Markdown: "?", UID: "q-1"}
	require.NoError(t, repo.CreateQuestion(ctx, question))
	require.NoError(t, repo.CreateLegacyOption(ctx, &coursecontent.LegacyOption{
		QuestionID: question.ID, Index: 0, Content: "yes", Correct: true,
	}))
	require.NoError(t, repo.CreateLegacyOption(ctx, &coursecontent.LegacyOption{
		QuestionID: question.ID, Index: 1, Content: "no",
	}))

	out, err := svc.GetEditorCourse(ctx, "legacy-course")
	require.NoError(t, err)
	q := out.Chapters[0].Questions[0]
	require.Len(t, q.SlotOptions, 1)
	require.Len(t, q.SlotOptions[0], 2)
	assert.Equal(t, "yes", q.SlotOptions[0][0].OptionContent)
	assert.True(t, q.SlotOptions[0][0].IsCorrect)
}

func TestGetEditorCourseNotFound(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.GetEditorCourse(context.Background(), "nope")
	assert.ErrorIs(t, err, coursecontent.ErrCourseNotFound)
}

func TestListCourses(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	createTestCourse(t, svc, "b-course")
	createTestCourse(t, svc, "a-course")

	summaries, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "a-course", summaries[0].ID)
	assert.Equal(t, "b-course", summaries[1].ID)
}

func TestDeleteCourse(t *testing.T) {
	svc, _, store := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveEditorCourse(ctx, sampleEditorCourse("algebra-1")))
	_, err := store.Upload(ctx, "courses/algebra-1/cover/pic.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	_, err = store.Upload(ctx, "courses/other/cover/pic.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCourse(ctx, "algebra-1"))

	_, err = svc.GetEditorCourse(ctx, "algebra-1")
	assert.ErrorIs(t, err, coursecontent.ErrCourseNotFound)

	// Only this course's assets are gone.
	objects, err := store.List(ctx, "courses/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "courses/other/cover/pic.png", objects[0].Key)

	t.Run("deleting a missing course fails", func(t *testing.T) {
		err := svc.DeleteCourse(ctx, "algebra-1")
		assert.ErrorIs(t, err, coursecontent.ErrCourseNotFound)
	})
}
