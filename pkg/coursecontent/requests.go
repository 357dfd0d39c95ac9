package coursecontent

import "io"

// Request DTOs

// UpdateCourseMetaRequest contains the course metadata upsert payload. It
// never touches the content tree below the course row.
type UpdateCourseMetaRequest struct {
	CourseID       string
	Title          string
	Description    string
	Language       string
	Published      bool
	TargetStudents TargetStudents
}

// UploadImageRequest contains parameters for a cover image upload.
type UploadImageRequest struct {
	CourseID    string
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadMarkdownImageRequest contains parameters for an inline markdown image
// upload. ChapterToken and TargetToken accept any resolver token form; Kind is
// one of the ImageKind constants.
type UploadMarkdownImageRequest struct {
	CourseID     string
	ChapterToken string
	TargetToken  string
	Kind         string
	FileName     string
	ContentType  string
	Size         int64
	Reader       io.Reader
}
