package coursecontent

import (
	"context"
	"io"
)

// StoredObject identifies a blob in a storage backend together with the URL
// clients use to fetch it.
type StoredObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// BlobStore defines the interface for storage backends.
type BlobStore interface {
	// Upload stores the bytes read from r under key and returns the stored
	// object with its assigned URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader) (*StoredObject, error)

	// Download fetches the bytes stored under key. It returns an error
	// wrapping ErrAssetNotFound when the key is absent.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns every stored object whose key starts with prefix.
	// Listings may lag recent uploads on eventually consistent backends;
	// callers re-derive listings rather than caching them.
	List(ctx context.Context, prefix string) ([]StoredObject, error)

	// Delete removes the object stored under key. Deleting an absent key is
	// a no-op.
	Delete(ctx context.Context, key string) error
}

// Repository defines the interface for content tree persistence.
//
// Tree loads are read-mostly but not read-only: loading or resolving a node
// whose stable UID is missing assigns one and persists it immediately, so a
// second read returns the same identifier. Implementations backed by
// read-replicas must route these loads to the primary.
type Repository interface {
	// InTx runs fn inside a single transaction and passes it a Repository
	// bound to that transaction. fn returning an error rolls everything back.
	InTx(ctx context.Context, fn func(Repository) error) error

	// Course operations
	GetCourse(ctx context.Context, id string) (*Course, error)
	// LockCourse acquires an exclusive lock on the course row for the
	// duration of the enclosing transaction. It serializes concurrent saves,
	// imports and deletes of the same course.
	LockCourse(ctx context.Context, id string) error
	UpsertCourse(ctx context.Context, course *Course) error
	DeleteCourse(ctx context.Context, id string) error
	ListCourses(ctx context.Context) ([]*Course, error)

	// Chapter operations. ListChapters orders by chapter number.
	CreateChapter(ctx context.Context, chapter *Chapter) error
	UpdateChapter(ctx context.Context, chapter *Chapter) error
	ListChapters(ctx context.Context, courseID string) ([]*Chapter, error)
	GetChapterByID(ctx context.Context, id int64) (*Chapter, error)
	GetChapterByNumber(ctx context.Context, courseID string, number int) (*Chapter, error)
	GetChapterByUID(ctx context.Context, courseID, uid string) (*Chapter, error)
	DeleteChapters(ctx context.Context, ids []int64) error

	// Subchapter operations. ListSubchapters orders by subchapter number.
	CreateSubchapter(ctx context.Context, subchapter *Subchapter) error
	UpdateSubchapter(ctx context.Context, subchapter *Subchapter) error
	ListSubchapters(ctx context.Context, chapterID int64) ([]*Subchapter, error)
	GetSubchapterByID(ctx context.Context, id int64) (*Subchapter, error)
	GetSubchapterByNumber(ctx context.Context, chapterID int64, number int) (*Subchapter, error)
	GetSubchapterByUID(ctx context.Context, chapterID int64, uid string) (*Subchapter, error)
	DeleteSubchapters(ctx context.Context, ids []int64) error

	// Question operations. ListQuestions orders by question number.
	CreateQuestion(ctx context.Context, question *Question) error
	UpdateQuestion(ctx context.Context, question *Question) error
	ListQuestions(ctx context.Context, chapterID int64) ([]*Question, error)
	GetQuestionByID(ctx context.Context, id int64) (*Question, error)
	GetQuestionByNumber(ctx context.Context, chapterID int64, number int) (*Question, error)
	GetQuestionByUID(ctx context.Context, chapterID int64, uid string) (*Question, error)
	DeleteQuestions(ctx context.Context, ids []int64) error

	// Slot and option operations. Listings order by slot/option index.
	CreateSlot(ctx context.Context, slot *Slot) error
	ListSlots(ctx context.Context, questionID int64) ([]*Slot, error)
	DeleteSlots(ctx context.Context, ids []int64) error
	CreateSlotOption(ctx context.Context, option *SlotOption) error
	ListSlotOptions(ctx context.Context, slotID int64) ([]*SlotOption, error)
	DeleteSlotOptions(ctx context.Context, ids []int64) error
	CreateLegacyOption(ctx context.Context, option *LegacyOption) error
	ListLegacyOptions(ctx context.Context, questionID int64) ([]*LegacyOption, error)
	DeleteLegacyOptions(ctx context.Context, ids []int64) error
}
