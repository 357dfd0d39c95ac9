package coursecontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrCourseNotFound indicates a course was not found
	ErrCourseNotFound = errors.New("course not found")

	// ErrChapterNotFound indicates a chapter was not found
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrSubchapterNotFound indicates a subchapter was not found
	ErrSubchapterNotFound = errors.New("subchapter not found")

	// ErrQuestionNotFound indicates a question was not found
	ErrQuestionNotFound = errors.New("question not found")

	// ErrAssetNotFound indicates a stored asset was not found
	ErrAssetNotFound = errors.New("asset not found")

	// ErrLastChapter rejects deleting the only chapter of a course. A caller
	// mistake, never retried; IsValidation reports true for it.
	ErrLastChapter = errors.New("cannot delete the last chapter of a course")

	// ErrLastSubchapter rejects deleting the only subchapter of a chapter. A
	// caller mistake, never retried; IsValidation reports true for it.
	ErrLastSubchapter = errors.New("cannot delete the last subchapter of a chapter")

	// ErrConflict indicates a concurrent modification was detected
	ErrConflict = errors.New("concurrent modification conflict")
)

// ValidationError reports a caller mistake (blank id, oversize upload, ...).
// It maps to a 400-equivalent and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a caller mistake: a ValidationError or
// one of the last-child guards.
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrLastChapter) || errors.Is(err, ErrLastSubchapter)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrChapterNotFound) ||
		errors.Is(err, ErrSubchapterNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAssetNotFound)
}

// CourseError represents an error related to course operations
type CourseError struct {
	CourseID string
	Op       string
	Err      error
}

func (e *CourseError) Error() string {
	return fmt.Sprintf("course operation %s failed for course %s: %v", e.Op, e.CourseID, e.Err)
}

func (e *CourseError) Unwrap() error {
	return e.Err
}

// ArchiveError represents an integrity failure while reading or writing an
// archive container.
type ArchiveError struct {
	Entry string
	Op    string
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("archive operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("archive operation %s failed for entry %s: %v", e.Op, e.Entry, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
