// Package postgres implements coursecontent.Repository on PostgreSQL via
// pgx.
//
// Expected tables: course (id text primary key), chapter, subchapter,
// question, slot, slot_option and legacy_option, each child keyed by a
// bigserial id plus its parent's key, with the ordering column (number /
// idx) alongside. The uid columns are nullable text; rows created before
// stable identifiers existed carry NULL until a load backfills them.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

// DBTX is an interface that allows us to use either a connection pool or a
// transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements coursecontent.Repository using PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewWithPool creates a new PostgreSQL repository with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// InTx runs fn inside a database transaction. A Repository already bound to
// a transaction joins it instead of opening a nested one.
func (r *Repository) InTx(ctx context.Context, fn func(coursecontent.Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("commit transaction", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", operation, coursecontent.ErrConflict)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%s: %w", operation, coursecontent.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced record not found", operation)
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required", operation)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// nullableUID maps the nullable uid column to the domain's empty string.
type nullableUID struct {
	value *string
}

func (n nullableUID) String() string {
	if n.value == nil {
		return ""
	}
	return *n.value
}

func uidParam(uid string) any {
	if uid == "" {
		return nil
	}
	return uid
}

// Course operations

func (r *Repository) GetCourse(ctx context.Context, id string) (*coursecontent.Course, error) {
	query := `
        SELECT id, title, description, language, cover_image_url, published,
               target_students, created_at, updated_at
        FROM course WHERE id = $1`

	var (
		course coursecontent.Course
		blob   []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID, &course.Title, &course.Description, &course.Language,
		&course.CoverImageURL, &course.Published, &blob,
		&course.CreatedAt, &course.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursecontent.ErrCourseNotFound
		}
		return nil, r.handlePostgresError("get course", err)
	}

	course.TargetStudents = coursecontent.DecodeTargetStudents(blob)
	return &course, nil
}

func (r *Repository) LockCourse(ctx context.Context, id string) error {
	var locked string
	err := r.db.QueryRow(ctx, `SELECT id FROM course WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coursecontent.ErrCourseNotFound
		}
		return r.handlePostgresError("lock course", err)
	}
	return nil
}

func (r *Repository) UpsertCourse(ctx context.Context, course *coursecontent.Course) error {
	query := `
		INSERT INTO course (
			id, title, description, language, cover_image_url, published,
			target_students, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			language = EXCLUDED.language,
			cover_image_url = EXCLUDED.cover_image_url,
			published = EXCLUDED.published,
			target_students = EXCLUDED.target_students,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		course.ID, course.Title, course.Description, course.Language,
		course.CoverImageURL, course.Published, course.TargetStudents.Encode(),
		course.CreatedAt, course.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("upsert course", err)
	}
	return nil
}

func (r *Repository) DeleteCourse(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete course", err)
	}
	if tag.RowsAffected() == 0 {
		return coursecontent.ErrCourseNotFound
	}
	return nil
}

func (r *Repository) ListCourses(ctx context.Context) ([]*coursecontent.Course, error) {
	query := `
        SELECT id, title, description, language, cover_image_url, published,
               target_students, created_at, updated_at
        FROM course ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list courses", err)
	}
	defer rows.Close()

	var courses []*coursecontent.Course
	for rows.Next() {
		var (
			course coursecontent.Course
			blob   []byte
		)
		if err := rows.Scan(
			&course.ID, &course.Title, &course.Description, &course.Language,
			&course.CoverImageURL, &course.Published, &blob,
			&course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("scan course", err)
		}
		course.TargetStudents = coursecontent.DecodeTargetStudents(blob)
		courses = append(courses, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate course rows", err)
	}
	return courses, nil
}

// Chapter operations

func (r *Repository) CreateChapter(ctx context.Context, ch *coursecontent.Chapter) error {
	query := `
		INSERT INTO chapter (course_id, number, name, uid)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, ch.CourseID, ch.Number, ch.Name, uidParam(ch.UID)).Scan(&ch.ID)
	if err != nil {
		return r.handlePostgresError("create chapter", err)
	}
	return nil
}

func (r *Repository) UpdateChapter(ctx context.Context, ch *coursecontent.Chapter) error {
	query := `UPDATE chapter SET number = $2, name = $3, uid = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, ch.ID, ch.Number, ch.Name, uidParam(ch.UID))
	if err != nil {
		return r.handlePostgresError("update chapter", err)
	}
	if tag.RowsAffected() == 0 {
		return coursecontent.ErrChapterNotFound
	}
	return nil
}

func (r *Repository) scanChapter(row pgx.Row) (*coursecontent.Chapter, error) {
	var (
		ch  coursecontent.Chapter
		uid nullableUID
	)
	if err := row.Scan(&ch.ID, &ch.CourseID, &ch.Number, &ch.Name, &uid.value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursecontent.ErrChapterNotFound
		}
		return nil, r.handlePostgresError("scan chapter", err)
	}
	ch.UID = uid.String()
	return &ch, nil
}

const chapterColumns = `id, course_id, number, name, uid`

func (r *Repository) ListChapters(ctx context.Context, courseID string) ([]*coursecontent.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapter WHERE course_id = $1 ORDER BY number`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, r.handlePostgresError("list chapters", err)
	}
	defer rows.Close()

	var chapters []*coursecontent.Chapter
	for rows.Next() {
		ch, err := r.scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate chapter rows", err)
	}
	return chapters, nil
}

func (r *Repository) GetChapterByID(ctx context.Context, id int64) (*coursecontent.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapter WHERE id = $1`
	return r.scanChapter(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetChapterByNumber(ctx context.Context, courseID string, number int) (*coursecontent.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapter WHERE course_id = $1 AND number = $2`
	return r.scanChapter(r.db.QueryRow(ctx, query, courseID, number))
}

func (r *Repository) GetChapterByUID(ctx context.Context, courseID, uid string) (*coursecontent.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapter WHERE course_id = $1 AND uid = $2`
	return r.scanChapter(r.db.QueryRow(ctx, query, courseID, uid))
}

func (r *Repository) DeleteChapters(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM chapter WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handlePostgresError("delete chapters", err)
	}
	return nil
}

// Subchapter operations

const subchapterColumns = `id, chapter_id, number, name, markdown, uid`

func (r *Repository) CreateSubchapter(ctx context.Context, sub *coursecontent.Subchapter) error {
	query := `
		INSERT INTO subchapter (chapter_id, number, name, markdown, uid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		sub.ChapterID, sub.Number, sub.Name, sub.Markdown, uidParam(sub.UID)).Scan(&sub.ID)
	if err != nil {
		return r.handlePostgresError("create subchapter", err)
	}
	return nil
}

func (r *Repository) UpdateSubchapter(ctx context.Context, sub *coursecontent.Subchapter) error {
	query := `UPDATE subchapter SET number = $2, name = $3, markdown = $4, uid = $5 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, sub.ID, sub.Number, sub.Name, sub.Markdown, uidParam(sub.UID))
	if err != nil {
		return r.handlePostgresError("update subchapter", err)
	}
	if tag.RowsAffected() == 0 {
		return coursecontent.ErrSubchapterNotFound
	}
	return nil
}

func (r *Repository) scanSubchapter(row pgx.Row) (*coursecontent.Subchapter, error) {
	var (
		sub coursecontent.Subchapter
		uid nullableUID
	)
	if err := row.Scan(&sub.ID, &sub.ChapterID, &sub.Number, &sub.Name, &sub.Markdown, &uid.value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursecontent.ErrSubchapterNotFound
		}
		return nil, r.handlePostgresError("scan subchapter", err)
	}
	sub.UID = uid.String()
	return &sub, nil
}

func (r *Repository) ListSubchapters(ctx context.Context, chapterID int64) ([]*coursecontent.Subchapter, error) {
	query := `SELECT ` + subchapterColumns + ` FROM subchapter WHERE chapter_id = $1 ORDER BY number`
	rows, err := r.db.Query(ctx, query, chapterID)
	if err != nil {
		return nil, r.handlePostgresError("list subchapters", err)
	}
	defer rows.Close()

	var subs []*coursecontent.Subchapter
	for rows.Next() {
		sub, err := r.scanSubchapter(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate subchapter rows", err)
	}
	return subs, nil
}

func (r *Repository) GetSubchapterByID(ctx context.Context, id int64) (*coursecontent.Subchapter, error) {
	query := `SELECT ` + subchapterColumns + ` FROM subchapter WHERE id = $1`
	return r.scanSubchapter(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetSubchapterByNumber(ctx context.Context, chapterID int64, number int) (*coursecontent.Subchapter, error) {
	query := `SELECT ` + subchapterColumns + ` FROM subchapter WHERE chapter_id = $1 AND number = $2`
	return r.scanSubchapter(r.db.QueryRow(ctx, query, chapterID, number))
}

func (r *Repository) GetSubchapterByUID(ctx context.Context, chapterID int64, uid string) (*coursecontent.Subchapter, error) {
	query := `SELECT ` + subchapterColumns + ` FROM subchapter WHERE chapter_id = $1 AND uid = $2`
	return r.scanSubchapter(r.db.QueryRow(ctx, query, chapterID, uid))
}

func (r *Repository) DeleteSubchapters(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM subchapter WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handlePostgresError("delete subchapters", err)
	}
	return nil
}

// Question operations

const questionColumns = `id, chapter_id, number, markdown, explanation, uid`

func (r *Repository) CreateQuestion(ctx context.Context, q *coursecontent.Question) error {
	query := `
		INSERT INTO question (chapter_id, number, markdown, explanation, uid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		q.ChapterID, q.Number, q.Markdown, q.Explanation, uidParam(q.UID)).Scan(&q.ID)
	if err != nil {
		return r.handlePostgresError("create question", err)
	}
	return nil
}

func (r *Repository) UpdateQuestion(ctx context.Context, q *coursecontent.Question) error {
	query := `UPDATE question SET number = $2, markdown = $3, explanation = $4, uid = $5 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, q.ID, q.Number, q.Markdown, q.Explanation, uidParam(q.UID))
	if err != nil {
		return r.handlePostgresError("update question", err)
	}
	if tag.RowsAffected() == 0 {
		return coursecontent.ErrQuestionNotFound
	}
	return nil
}

func (r *Repository) scanQuestion(row pgx.Row) (*coursecontent.Question, error) {
	var (
		q   coursecontent.Question
		uid nullableUID
	)
	if err := row.Scan(&q.ID, &q.ChapterID, &q.Number, &q.Markdown, &q.Explanation, &uid.value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursecontent.ErrQuestionNotFound
		}
		return nil, r.handlePostgresError("scan question", err)
	}
	q.UID = uid.String()
	return &q, nil
}

func (r *Repository) ListQuestions(ctx context.Context, chapterID int64) ([]*coursecontent.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM question WHERE chapter_id = $1 ORDER BY number`
	rows, err := r.db.Query(ctx, query, chapterID)
	if err != nil {
		return nil, r.handlePostgresError("list questions", err)
	}
	defer rows.Close()

	var questions []*coursecontent.Question
	for rows.Next() {
		q, err := r.scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate question rows", err)
	}
	return questions, nil
}

func (r *Repository) GetQuestionByID(ctx context.Context, id int64) (*coursecontent.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM question WHERE id = $1`
	return r.scanQuestion(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetQuestionByNumber(ctx context.Context, chapterID int64, number int) (*coursecontent.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM question WHERE chapter_id = $1 AND number = $2`
	return r.scanQuestion(r.db.QueryRow(ctx, query, chapterID, number))
}

func (r *Repository) GetQuestionByUID(ctx context.Context, chapterID int64, uid string) (*coursecontent.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM question WHERE chapter_id = $1 AND uid = $2`
	return r.scanQuestion(r.db.QueryRow(ctx, query, chapterID, uid))
}

func (r *Repository) DeleteQuestions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM question WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handlePostgresError("delete questions", err)
	}
	return nil
}

// Slot and option operations

func (r *Repository) CreateSlot(ctx context.Context, slot *coursecontent.Slot) error {
	query := `INSERT INTO slot (question_id, idx) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRow(ctx, query, slot.QuestionID, slot.Index).Scan(&slot.ID)
	if err != nil {
		return r.handlePostgresError("create slot", err)
	}
	return nil
}

func (r *Repository) ListSlots(ctx context.Context, questionID int64) ([]*coursecontent.Slot, error) {
	query := `SELECT id, question_id, idx FROM slot WHERE question_id = $1 ORDER BY idx`
	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, r.handlePostgresError("list slots", err)
	}
	defer rows.Close()

	var slots []*coursecontent.Slot
	for rows.Next() {
		var slot coursecontent.Slot
		if err := rows.Scan(&slot.ID, &slot.QuestionID, &slot.Index); err != nil {
			return nil, r.handlePostgresError("scan slot", err)
		}
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate slot rows", err)
	}
	return slots, nil
}

func (r *Repository) DeleteSlots(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM slot WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handlePostgresError("delete slots", err)
	}
	return nil
}

func (r *Repository) CreateSlotOption(ctx context.Context, opt *coursecontent.SlotOption) error {
	query := `
		INSERT INTO slot_option (slot_id, idx, content, correct)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, opt.SlotID, opt.Index, opt.Content, opt.Correct).Scan(&opt.ID)
	if err != nil {
		return r.handlePostgresError("create slot option", err)
	}
	return nil
}

func (r *Repository) ListSlotOptions(ctx context.Context, slotID int64) ([]*coursecontent.SlotOption, error) {
	query := `SELECT id, slot_id, idx, content, correct FROM slot_option WHERE slot_id = $1 ORDER BY idx`
	rows, err := r.db.Query(ctx, query, slotID)
	if err != nil {
		return nil, r.handlePostgresError("list slot options", err)
	}
	defer rows.Close()

	var options []*coursecontent.SlotOption
	for rows.Next() {
		var opt coursecontent.SlotOption
		if err := rows.Scan(&opt.ID, &opt.SlotID, &opt.Index, &opt.Content, &opt.Correct); err != nil {
			return nil, r.handlePostgresError("scan slot option", err)
		}
		options = append(options, &opt)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate slot option rows", err)
	}
	return options, nil
}

func (r *Repository) DeleteSlotOptions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM slot_option WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handlePostgresError("delete slot options", err)
	}
	return nil
}

func (r *Repository) CreateLegacyOption(ctx context.Context, opt *coursecontent.LegacyOption) error {
	query := `
		INSERT INTO legacy_option (question_id, idx, content, correct)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, opt.QuestionID, opt.Index, opt.Content, opt.Correct).Scan(&opt.ID)
	if err != nil {
		return r.handlePostgresError("create legacy option", err)
	}
	return nil
}

func (r *Repository) ListLegacyOptions(ctx context.Context, questionID int64) ([]*coursecontent.LegacyOption, error) {
	query := `SELECT id, question_id, idx, content, correct FROM legacy_option WHERE question_id = $1 ORDER BY idx`
	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, r.handlePostgresError("list legacy options", err)
	}
	defer rows.Close()

	var options []*coursecontent.LegacyOption
	for rows.Next() {
		var opt coursecontent.LegacyOption
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Index, &opt.Content, &opt.Correct); err != nil {
			return nil, r.handlePostgresError("scan legacy option", err)
		}
		options = append(options, &opt)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate legacy option rows", err)
	}
	return options, nil
}

func (r *Repository) DeleteLegacyOptions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM legacy_option WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handlePostgresError("delete legacy options", err)
	}
	return nil
}
