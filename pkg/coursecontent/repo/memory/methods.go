package memory

import (
	"context"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

// Locked delegation for direct (non-transactional) calls.

func (r *Repository) GetCourse(ctx context.Context, id string) (*coursecontent.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getCourse(id)
}

func (r *Repository) LockCourse(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.lockCourse(id)
}

func (r *Repository) UpsertCourse(ctx context.Context, course *coursecontent.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.upsertCourse(course)
}

func (r *Repository) DeleteCourse(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteCourse(id)
}

func (r *Repository) ListCourses(ctx context.Context) ([]*coursecontent.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listCourses()
}

func (r *Repository) CreateChapter(ctx context.Context, ch *coursecontent.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createChapter(ch)
}

func (r *Repository) UpdateChapter(ctx context.Context, ch *coursecontent.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.updateChapter(ch)
}

func (r *Repository) ListChapters(ctx context.Context, courseID string) ([]*coursecontent.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listChapters(courseID)
}

func (r *Repository) GetChapterByID(ctx context.Context, id int64) (*coursecontent.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getChapterByID(id)
}

func (r *Repository) GetChapterByNumber(ctx context.Context, courseID string, number int) (*coursecontent.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getChapterByNumber(courseID, number)
}

func (r *Repository) GetChapterByUID(ctx context.Context, courseID, uid string) (*coursecontent.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getChapterByUID(courseID, uid)
}

func (r *Repository) DeleteChapters(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteChapters(ids)
}

func (r *Repository) CreateSubchapter(ctx context.Context, sub *coursecontent.Subchapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createSubchapter(sub)
}

func (r *Repository) UpdateSubchapter(ctx context.Context, sub *coursecontent.Subchapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.updateSubchapter(sub)
}

func (r *Repository) ListSubchapters(ctx context.Context, chapterID int64) ([]*coursecontent.Subchapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listSubchapters(chapterID)
}

func (r *Repository) GetSubchapterByID(ctx context.Context, id int64) (*coursecontent.Subchapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getSubchapterByID(id)
}

func (r *Repository) GetSubchapterByNumber(ctx context.Context, chapterID int64, number int) (*coursecontent.Subchapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getSubchapterByNumber(chapterID, number)
}

func (r *Repository) GetSubchapterByUID(ctx context.Context, chapterID int64, uid string) (*coursecontent.Subchapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getSubchapterByUID(chapterID, uid)
}

func (r *Repository) DeleteSubchapters(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteSubchapters(ids)
}

func (r *Repository) CreateQuestion(ctx context.Context, q *coursecontent.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createQuestion(q)
}

func (r *Repository) UpdateQuestion(ctx context.Context, q *coursecontent.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.updateQuestion(q)
}

func (r *Repository) ListQuestions(ctx context.Context, chapterID int64) ([]*coursecontent.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listQuestions(chapterID)
}

func (r *Repository) GetQuestionByID(ctx context.Context, id int64) (*coursecontent.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getQuestionByID(id)
}

func (r *Repository) GetQuestionByNumber(ctx context.Context, chapterID int64, number int) (*coursecontent.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getQuestionByNumber(chapterID, number)
}

func (r *Repository) GetQuestionByUID(ctx context.Context, chapterID int64, uid string) (*coursecontent.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.getQuestionByUID(chapterID, uid)
}

func (r *Repository) DeleteQuestions(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteQuestions(ids)
}

func (r *Repository) CreateSlot(ctx context.Context, slot *coursecontent.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createSlot(slot)
}

func (r *Repository) ListSlots(ctx context.Context, questionID int64) ([]*coursecontent.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listSlots(questionID)
}

func (r *Repository) DeleteSlots(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteSlots(ids)
}

func (r *Repository) CreateSlotOption(ctx context.Context, opt *coursecontent.SlotOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createSlotOption(opt)
}

func (r *Repository) ListSlotOptions(ctx context.Context, slotID int64) ([]*coursecontent.SlotOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listSlotOptions(slotID)
}

func (r *Repository) DeleteSlotOptions(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteSlotOptions(ids)
}

func (r *Repository) CreateLegacyOption(ctx context.Context, opt *coursecontent.LegacyOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.createLegacyOption(opt)
}

func (r *Repository) ListLegacyOptions(ctx context.Context, questionID int64) ([]*coursecontent.LegacyOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.listLegacyOptions(questionID)
}

func (r *Repository) DeleteLegacyOptions(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.deleteLegacyOptions(ids)
}

// Unlocked delegation for transaction views.

func (t *txRepository) GetCourse(ctx context.Context, id string) (*coursecontent.Course, error) {
	return t.st.getCourse(id)
}

func (t *txRepository) LockCourse(ctx context.Context, id string) error {
	return t.st.lockCourse(id)
}

func (t *txRepository) UpsertCourse(ctx context.Context, course *coursecontent.Course) error {
	return t.st.upsertCourse(course)
}

func (t *txRepository) DeleteCourse(ctx context.Context, id string) error {
	return t.st.deleteCourse(id)
}

func (t *txRepository) ListCourses(ctx context.Context) ([]*coursecontent.Course, error) {
	return t.st.listCourses()
}

func (t *txRepository) CreateChapter(ctx context.Context, ch *coursecontent.Chapter) error {
	return t.st.createChapter(ch)
}

func (t *txRepository) UpdateChapter(ctx context.Context, ch *coursecontent.Chapter) error {
	return t.st.updateChapter(ch)
}

func (t *txRepository) ListChapters(ctx context.Context, courseID string) ([]*coursecontent.Chapter, error) {
	return t.st.listChapters(courseID)
}

func (t *txRepository) GetChapterByID(ctx context.Context, id int64) (*coursecontent.Chapter, error) {
	return t.st.getChapterByID(id)
}

func (t *txRepository) GetChapterByNumber(ctx context.Context, courseID string, number int) (*coursecontent.Chapter, error) {
	return t.st.getChapterByNumber(courseID, number)
}

func (t *txRepository) GetChapterByUID(ctx context.Context, courseID, uid string) (*coursecontent.Chapter, error) {
	return t.st.getChapterByUID(courseID, uid)
}

func (t *txRepository) DeleteChapters(ctx context.Context, ids []int64) error {
	return t.st.deleteChapters(ids)
}

func (t *txRepository) CreateSubchapter(ctx context.Context, sub *coursecontent.Subchapter) error {
	return t.st.createSubchapter(sub)
}

func (t *txRepository) UpdateSubchapter(ctx context.Context, sub *coursecontent.Subchapter) error {
	return t.st.updateSubchapter(sub)
}

func (t *txRepository) ListSubchapters(ctx context.Context, chapterID int64) ([]*coursecontent.Subchapter, error) {
	return t.st.listSubchapters(chapterID)
}

func (t *txRepository) GetSubchapterByID(ctx context.Context, id int64) (*coursecontent.Subchapter, error) {
	return t.st.getSubchapterByID(id)
}

func (t *txRepository) GetSubchapterByNumber(ctx context.Context, chapterID int64, number int) (*coursecontent.Subchapter, error) {
	return t.st.getSubchapterByNumber(chapterID, number)
}

func (t *txRepository) GetSubchapterByUID(ctx context.Context, chapterID int64, uid string) (*coursecontent.Subchapter, error) {
	return t.st.getSubchapterByUID(chapterID, uid)
}

func (t *txRepository) DeleteSubchapters(ctx context.Context, ids []int64) error {
	return t.st.deleteSubchapters(ids)
}

func (t *txRepository) CreateQuestion(ctx context.Context, q *coursecontent.Question) error {
	return t.st.createQuestion(q)
}

func (t *txRepository) UpdateQuestion(ctx context.Context, q *coursecontent.Question) error {
	return t.st.updateQuestion(q)
}

func (t *txRepository) ListQuestions(ctx context.Context, chapterID int64) ([]*coursecontent.Question, error) {
	return t.st.listQuestions(chapterID)
}

func (t *txRepository) GetQuestionByID(ctx context.Context, id int64) (*coursecontent.Question, error) {
	return t.st.getQuestionByID(id)
}

func (t *txRepository) GetQuestionByNumber(ctx context.Context, chapterID int64, number int) (*coursecontent.Question, error) {
	return t.st.getQuestionByNumber(chapterID, number)
}

func (t *txRepository) GetQuestionByUID(ctx context.Context, chapterID int64, uid string) (*coursecontent.Question, error) {
	return t.st.getQuestionByUID(chapterID, uid)
}

func (t *txRepository) DeleteQuestions(ctx context.Context, ids []int64) error {
	return t.st.deleteQuestions(ids)
}

func (t *txRepository) CreateSlot(ctx context.Context, slot *coursecontent.Slot) error {
	return t.st.createSlot(slot)
}

func (t *txRepository) ListSlots(ctx context.Context, questionID int64) ([]*coursecontent.Slot, error) {
	return t.st.listSlots(questionID)
}

func (t *txRepository) DeleteSlots(ctx context.Context, ids []int64) error {
	return t.st.deleteSlots(ids)
}

func (t *txRepository) CreateSlotOption(ctx context.Context, opt *coursecontent.SlotOption) error {
	return t.st.createSlotOption(opt)
}

func (t *txRepository) ListSlotOptions(ctx context.Context, slotID int64) ([]*coursecontent.SlotOption, error) {
	return t.st.listSlotOptions(slotID)
}

func (t *txRepository) DeleteSlotOptions(ctx context.Context, ids []int64) error {
	return t.st.deleteSlotOptions(ids)
}

func (t *txRepository) CreateLegacyOption(ctx context.Context, opt *coursecontent.LegacyOption) error {
	return t.st.createLegacyOption(opt)
}

func (t *txRepository) ListLegacyOptions(ctx context.Context, questionID int64) ([]*coursecontent.LegacyOption, error) {
	return t.st.listLegacyOptions(questionID)
}

func (t *txRepository) DeleteLegacyOptions(ctx context.Context, ids []int64) error {
	return t.st.deleteLegacyOptions(ids)
}
