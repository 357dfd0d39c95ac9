// Package memory provides an in-memory coursecontent.Repository used by
// tests and local development. Transactions are serialized by a single store
// mutex; rollback restores a pre-transaction snapshot, so a failed InTx is
// never observable.
package memory

import (
	"context"
	"sort"
	"sync"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

// Repository implements coursecontent.Repository using in-memory storage
type Repository struct {
	mu sync.Mutex
	st *state
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{st: newState()}
}

// InTx serializes against every other call on this repository. fn runs
// against an unlocked transaction view; an error restores the snapshot.
func (r *Repository) InTx(ctx context.Context, fn func(coursecontent.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.st.clone()
	if err := fn(&txRepository{st: r.st}); err != nil {
		r.st = snapshot
		return err
	}
	return nil
}

// txRepository is the view handed to InTx callbacks. It reuses the state
// without locking; the enclosing InTx already holds the store mutex.
type txRepository struct {
	st *state
}

// Nested InTx calls join the enclosing transaction.
func (t *txRepository) InTx(ctx context.Context, fn func(coursecontent.Repository) error) error {
	return fn(t)
}

// state holds every table. Values are copied on the way in and out so
// callers can never alias stored rows.
type state struct {
	courses       map[string]*coursecontent.Course
	chapters      map[int64]*coursecontent.Chapter
	subchapters   map[int64]*coursecontent.Subchapter
	questions     map[int64]*coursecontent.Question
	slots         map[int64]*coursecontent.Slot
	slotOptions   map[int64]*coursecontent.SlotOption
	legacyOptions map[int64]*coursecontent.LegacyOption
	nextID        int64
}

func newState() *state {
	return &state{
		courses:       make(map[string]*coursecontent.Course),
		chapters:      make(map[int64]*coursecontent.Chapter),
		subchapters:   make(map[int64]*coursecontent.Subchapter),
		questions:     make(map[int64]*coursecontent.Question),
		slots:         make(map[int64]*coursecontent.Slot),
		slotOptions:   make(map[int64]*coursecontent.SlotOption),
		legacyOptions: make(map[int64]*coursecontent.LegacyOption),
		nextID:        1,
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.courses {
		row := *v
		c.courses[k] = &row
	}
	for k, v := range s.chapters {
		row := *v
		c.chapters[k] = &row
	}
	for k, v := range s.subchapters {
		row := *v
		c.subchapters[k] = &row
	}
	for k, v := range s.questions {
		row := *v
		c.questions[k] = &row
	}
	for k, v := range s.slots {
		row := *v
		c.slots[k] = &row
	}
	for k, v := range s.slotOptions {
		row := *v
		c.slotOptions[k] = &row
	}
	for k, v := range s.legacyOptions {
		row := *v
		c.legacyOptions[k] = &row
	}
	return c
}

func (s *state) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// Course operations

func (s *state) getCourse(id string) (*coursecontent.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, coursecontent.ErrCourseNotFound
	}
	row := *course
	return &row, nil
}

func (s *state) lockCourse(id string) error {
	// The store mutex already serializes transactions; locking only has to
	// reproduce the row-existence check.
	if _, ok := s.courses[id]; !ok {
		return coursecontent.ErrCourseNotFound
	}
	return nil
}

func (s *state) upsertCourse(course *coursecontent.Course) error {
	row := *course
	s.courses[course.ID] = &row
	return nil
}

func (s *state) deleteCourse(id string) error {
	if _, ok := s.courses[id]; !ok {
		return coursecontent.ErrCourseNotFound
	}
	delete(s.courses, id)
	return nil
}

func (s *state) listCourses() ([]*coursecontent.Course, error) {
	out := make([]*coursecontent.Course, 0, len(s.courses))
	for _, course := range s.courses {
		row := *course
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Chapter operations

func (s *state) createChapter(ch *coursecontent.Chapter) error {
	ch.ID = s.allocID()
	row := *ch
	s.chapters[ch.ID] = &row
	return nil
}

func (s *state) updateChapter(ch *coursecontent.Chapter) error {
	if _, ok := s.chapters[ch.ID]; !ok {
		return coursecontent.ErrChapterNotFound
	}
	row := *ch
	s.chapters[ch.ID] = &row
	return nil
}

func (s *state) listChapters(courseID string) ([]*coursecontent.Chapter, error) {
	var out []*coursecontent.Chapter
	for _, ch := range s.chapters {
		if ch.CourseID == courseID {
			row := *ch
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *state) getChapterByID(id int64) (*coursecontent.Chapter, error) {
	ch, ok := s.chapters[id]
	if !ok {
		return nil, coursecontent.ErrChapterNotFound
	}
	row := *ch
	return &row, nil
}

func (s *state) getChapterByNumber(courseID string, number int) (*coursecontent.Chapter, error) {
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && ch.Number == number {
			row := *ch
			return &row, nil
		}
	}
	return nil, coursecontent.ErrChapterNotFound
}

func (s *state) getChapterByUID(courseID, uid string) (*coursecontent.Chapter, error) {
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && ch.UID != "" && ch.UID == uid {
			row := *ch
			return &row, nil
		}
	}
	return nil, coursecontent.ErrChapterNotFound
}

func (s *state) deleteChapters(ids []int64) error {
	for _, id := range ids {
		delete(s.chapters, id)
	}
	return nil
}

// Subchapter operations

func (s *state) createSubchapter(sub *coursecontent.Subchapter) error {
	sub.ID = s.allocID()
	row := *sub
	s.subchapters[sub.ID] = &row
	return nil
}

func (s *state) updateSubchapter(sub *coursecontent.Subchapter) error {
	if _, ok := s.subchapters[sub.ID]; !ok {
		return coursecontent.ErrSubchapterNotFound
	}
	row := *sub
	s.subchapters[sub.ID] = &row
	return nil
}

func (s *state) listSubchapters(chapterID int64) ([]*coursecontent.Subchapter, error) {
	var out []*coursecontent.Subchapter
	for _, sub := range s.subchapters {
		if sub.ChapterID == chapterID {
			row := *sub
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *state) getSubchapterByID(id int64) (*coursecontent.Subchapter, error) {
	sub, ok := s.subchapters[id]
	if !ok {
		return nil, coursecontent.ErrSubchapterNotFound
	}
	row := *sub
	return &row, nil
}

func (s *state) getSubchapterByNumber(chapterID int64, number int) (*coursecontent.Subchapter, error) {
	for _, sub := range s.subchapters {
		if sub.ChapterID == chapterID && sub.Number == number {
			row := *sub
			return &row, nil
		}
	}
	return nil, coursecontent.ErrSubchapterNotFound
}

func (s *state) getSubchapterByUID(chapterID int64, uid string) (*coursecontent.Subchapter, error) {
	for _, sub := range s.subchapters {
		if sub.ChapterID == chapterID && sub.UID != "" && sub.UID == uid {
			row := *sub
			return &row, nil
		}
	}
	return nil, coursecontent.ErrSubchapterNotFound
}

func (s *state) deleteSubchapters(ids []int64) error {
	for _, id := range ids {
		delete(s.subchapters, id)
	}
	return nil
}

// Question operations

func (s *state) createQuestion(q *coursecontent.Question) error {
	q.ID = s.allocID()
	row := *q
	s.questions[q.ID] = &row
	return nil
}

func (s *state) updateQuestion(q *coursecontent.Question) error {
	if _, ok := s.questions[q.ID]; !ok {
		return coursecontent.ErrQuestionNotFound
	}
	row := *q
	s.questions[q.ID] = &row
	return nil
}

func (s *state) listQuestions(chapterID int64) ([]*coursecontent.Question, error) {
	var out []*coursecontent.Question
	for _, q := range s.questions {
		if q.ChapterID == chapterID {
			row := *q
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *state) getQuestionByID(id int64) (*coursecontent.Question, error) {
	q, ok := s.questions[id]
	if !ok {
		return nil, coursecontent.ErrQuestionNotFound
	}
	row := *q
	return &row, nil
}

func (s *state) getQuestionByNumber(chapterID int64, number int) (*coursecontent.Question, error) {
	for _, q := range s.questions {
		if q.ChapterID == chapterID && q.Number == number {
			row := *q
			return &row, nil
		}
	}
	return nil, coursecontent.ErrQuestionNotFound
}

func (s *state) getQuestionByUID(chapterID int64, uid string) (*coursecontent.Question, error) {
	for _, q := range s.questions {
		if q.ChapterID == chapterID && q.UID != "" && q.UID == uid {
			row := *q
			return &row, nil
		}
	}
	return nil, coursecontent.ErrQuestionNotFound
}

func (s *state) deleteQuestions(ids []int64) error {
	for _, id := range ids {
		delete(s.questions, id)
	}
	return nil
}

// Slot and option operations

func (s *state) createSlot(slot *coursecontent.Slot) error {
	slot.ID = s.allocID()
	row := *slot
	s.slots[slot.ID] = &row
	return nil
}

func (s *state) listSlots(questionID int64) ([]*coursecontent.Slot, error) {
	var out []*coursecontent.Slot
	for _, slot := range s.slots {
		if slot.QuestionID == questionID {
			row := *slot
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *state) deleteSlots(ids []int64) error {
	for _, id := range ids {
		delete(s.slots, id)
	}
	return nil
}

func (s *state) createSlotOption(opt *coursecontent.SlotOption) error {
	opt.ID = s.allocID()
	row := *opt
	s.slotOptions[opt.ID] = &row
	return nil
}

func (s *state) listSlotOptions(slotID int64) ([]*coursecontent.SlotOption, error) {
	var out []*coursecontent.SlotOption
	for _, opt := range s.slotOptions {
		if opt.SlotID == slotID {
			row := *opt
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *state) deleteSlotOptions(ids []int64) error {
	for _, id := range ids {
		delete(s.slotOptions, id)
	}
	return nil
}

func (s *state) createLegacyOption(opt *coursecontent.LegacyOption) error {
	opt.ID = s.allocID()
	row := *opt
	s.legacyOptions[opt.ID] = &row
	return nil
}

func (s *state) listLegacyOptions(questionID int64) ([]*coursecontent.LegacyOption, error) {
	var out []*coursecontent.LegacyOption
	for _, opt := range s.legacyOptions {
		if opt.QuestionID == questionID {
			row := *opt
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *state) deleteLegacyOptions(ids []int64) error {
	for _, id := range ids {
		delete(s.legacyOptions, id)
	}
	return nil
}
