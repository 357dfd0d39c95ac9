package coursecontent

import (
	"encoding/json"
	"time"
)

// Stable identifier prefixes, one per addressable node kind. A node that is
// read without a stable UID gets one assigned as "<prefix>_<surrogateID>".
const (
	UIDPrefixChapter    = "chapter"
	UIDPrefixSubchapter = "subchapter"
	UIDPrefixQuestion   = "question"
)

// Markdown image kinds accepted under the markdown-editor asset tree.
const (
	ImageKindSubchapter  = "subchapter"
	ImageKindQuestion    = "question"
	ImageKindExplanation = "explanation"
)

// TargetStudents is the course's target-audience filter. It is persisted as
// an opaque JSON blob on the course row.
type TargetStudents struct {
	SchoolYears []int    `json:"schoolYears"`
	Classes     []string `json:"classes"`
}

// DecodeTargetStudents parses the stored filter blob. Malformed or empty
// blobs decode to an empty filter; a bad blob never fails a course load.
func DecodeTargetStudents(blob []byte) TargetStudents {
	var ts TargetStudents
	if len(blob) == 0 {
		return ts
	}
	if err := json.Unmarshal(blob, &ts); err != nil {
		return TargetStudents{}
	}
	return ts
}

// Encode serializes the filter back into its storage blob form.
func (ts TargetStudents) Encode() []byte {
	b, err := json.Marshal(ts)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Course is the root row of the content tree. Its ID is a caller-chosen slug
// and doubles as the stable identifier for the whole course.
type Course struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Language       string         `json:"language"`
	CoverImageURL  string         `json:"coverImageUrl"`
	Published      bool           `json:"published"`
	TargetStudents TargetStudents `json:"targetStudents"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Chapter is an ordered child of a course. Number is the 1-based display
// ordinal; UID is the immutable stable identifier and may be empty on rows
// created before stable identifiers existed.
type Chapter struct {
	ID       int64  `json:"id"`
	CourseID string `json:"course_id"`
	Number   int    `json:"number"`
	Name     string `json:"name"`
	UID      string `json:"uid"`
}

// Subchapter is an ordered child of a chapter carrying a markdown body.
type Subchapter struct {
	ID        int64  `json:"id"`
	ChapterID int64  `json:"chapter_id"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Markdown  string `json:"markdown"`
	UID       string `json:"uid"`
}

// Question is an ordered child of a chapter. Options live either in explicit
// slots or, for rows written before slots existed, in the legacy flat list.
type Question struct {
	ID          int64  `json:"id"`
	ChapterID   int64  `json:"chapter_id"`
	Number      int    `json:"number"`
	Markdown    string `json:"markdown"`
	Explanation string `json:"explanation"`
	UID         string `json:"uid"`
}

// Slot is a fill-in position within a question. Slots have no stable UID;
// they are addressed through their question plus Index.
type Slot struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
	Index      int   `json:"index"`
}

// SlotOption is one candidate answer within a slot.
type SlotOption struct {
	ID      int64  `json:"id"`
	SlotID  int64  `json:"slot_id"`
	Index   int    `json:"index"`
	Content string `json:"content"`
	Correct bool   `json:"correct"`
}

// LegacyOption is the flat single-slot option representation retained for
// backward compatibility. It is synthesized into a one-slot view on read when
// a question has no explicit slots; fresh writes never populate both.
type LegacyOption struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Index      int    `json:"index"`
	Content    string `json:"content"`
	Correct    bool   `json:"correct"`
}

// EditorCourse is the full aggregate exchanged with the editor UI and written
// verbatim into archive containers as course.json. Node IDs in the aggregate
// are stable UIDs, never database surrogate ids.
type EditorCourse struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Language          string          `json:"language"`
	Published         bool            `json:"published"`
	TargetStudents    TargetStudents  `json:"targetStudents"`
	CoverImageDataURL string          `json:"coverImageDataUrl"`
	Chapters          []EditorChapter `json:"chapters"`
}

// EditorChapter mirrors a chapter and its ordered children.
type EditorChapter struct {
	ID          string             `json:"id"`
	Number      int                `json:"number"`
	Name        string             `json:"name"`
	Subchapters []EditorSubchapter `json:"subchapters"`
	Questions   []EditorQuestion   `json:"questions"`
}

// EditorSubchapter mirrors a subchapter row.
type EditorSubchapter struct {
	ID       string `json:"id"`
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Markdown string `json:"markdown"`
}

// EditorQuestion mirrors a question row. SlotOptions is the canonical per-slot
// representation: the outer slice is ordered by slot index, the inner slices
// by option index.
type EditorQuestion struct {
	ID                  string           `json:"id"`
	QuestionNumber      int              `json:"questionNumber"`
	QuestionMarkdown    string           `json:"questionMarkdown"`
	ExplanationMarkdown string           `json:"explanationMarkdown"`
	SlotOptions         [][]EditorOption `json:"slotOptions"`
}

// EditorOption is one candidate answer in the aggregate.
type EditorOption struct {
	OptionIndex   int    `json:"optionIndex"`
	OptionContent string `json:"optionContent"`
	IsCorrect     bool   `json:"isCorrect"`
}

// CourseSummary is the listing row for the course index.
type CourseSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Language      string    `json:"language"`
	Published     bool      `json:"published"`
	CoverImageURL string    `json:"coverImageUrl"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AssetGroup is one display group of chapter assets: every stored image
// attached to a single subchapter/question/explanation target.
type AssetGroup struct {
	TargetUID string         `json:"targetUid"`
	Kind      string         `json:"kind"`
	Label     string         `json:"label"`
	Assets    []StoredObject `json:"assets"`
}

// ArchiveManifest is the meta.json entry of an archive container.
type ArchiveManifest struct {
	Format        string    `json:"format"`
	Version       int       `json:"version"`
	ExportedAt    time.Time `json:"exportedAt"`
	CourseID      string    `json:"courseId"`
	CoverImageKey string    `json:"coverImageKey"`
	AssetCount    int       `json:"assetCount"`
}
