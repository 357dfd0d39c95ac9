package coursecontent

import (
	"context"
	"io"
)

// Service defines the course editor orchestration surface: editor loads and
// replace-everything saves, outline mutations, asset handling, and archive
// export/import.
type Service interface {
	// Course operations
	GetCourse(ctx context.Context, courseID string) (*Course, error)
	GetEditorCourse(ctx context.Context, courseID string) (*EditorCourse, error)
	SaveEditorCourse(ctx context.Context, course *EditorCourse) error
	UpdateCourseMeta(ctx context.Context, req UpdateCourseMetaRequest) (*Course, error)
	ListCourses(ctx context.Context) ([]CourseSummary, error)
	DeleteCourse(ctx context.Context, courseID string) error

	// Outline operations
	AddChapter(ctx context.Context, courseID, name string) (*Chapter, error)
	RenameChapter(ctx context.Context, courseID, chapterToken, name string) (*Chapter, error)
	DeleteChapter(ctx context.Context, courseID, chapterToken string) error
	AddSubchapter(ctx context.Context, courseID, chapterToken, name string) (*Subchapter, error)
	RenameSubchapter(ctx context.Context, courseID, chapterToken, subchapterToken, name string) (*Subchapter, error)
	DeleteSubchapter(ctx context.Context, courseID, chapterToken, subchapterToken string) error

	// Asset operations
	UploadCoverImage(ctx context.Context, req UploadImageRequest) (*StoredObject, error)
	UploadMarkdownImage(ctx context.Context, req UploadMarkdownImageRequest) (*StoredObject, error)
	ListChapterAssets(ctx context.Context, courseID, chapterToken string) ([]AssetGroup, error)
	DeleteAsset(ctx context.Context, courseID, key string) error

	// Archive operations
	ExportArchive(ctx context.Context, courseID string, w io.Writer) error
	ImportArchive(ctx context.Context, data []byte) (string, error)
}
