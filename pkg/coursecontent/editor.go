package coursecontent

import (
	"context"
	"strings"
	"time"
)

// GetEditorCourse builds the full in-memory aggregate for the editor. Every
// node visited that lacks a stable UID gets one assigned and persisted, so
// back-to-back loads return identical identifiers.
func (s *service) GetEditorCourse(ctx context.Context, courseID string) (*EditorCourse, error) {
	var out *EditorCourse
	err := s.repo.InTx(ctx, func(tx Repository) error {
		course, err := tx.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}

		chapters, err := tx.ListChapters(ctx, courseID)
		if err != nil {
			return err
		}

		agg := &EditorCourse{
			ID:                course.ID,
			Title:             course.Title,
			Description:       course.Description,
			Language:          course.Language,
			Published:         course.Published,
			TargetStudents:    course.TargetStudents,
			CoverImageDataURL: course.CoverImageURL,
			Chapters:          make([]EditorChapter, 0, len(chapters)),
		}

		for _, ch := range chapters {
			if err := ensureChapterUID(ctx, tx, ch); err != nil {
				return err
			}
			ec, err := loadEditorChapter(ctx, tx, ch)
			if err != nil {
				return err
			}
			agg.Chapters = append(agg.Chapters, *ec)
		}

		out = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loadEditorChapter(ctx context.Context, tx Repository, ch *Chapter) (*EditorChapter, error) {
	ec := &EditorChapter{
		ID:          ch.UID,
		Number:      ch.Number,
		Name:        ch.Name,
		Subchapters: []EditorSubchapter{},
		Questions:   []EditorQuestion{},
	}

	subs, err := tx.ListSubchapters(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if err := ensureSubchapterUID(ctx, tx, sub); err != nil {
			return nil, err
		}
		ec.Subchapters = append(ec.Subchapters, EditorSubchapter{
			ID:       sub.UID,
			Number:   sub.Number,
			Name:     sub.Name,
			Markdown: sub.Markdown,
		})
	}

	questions, err := tx.ListQuestions(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if err := ensureQuestionUID(ctx, tx, q); err != nil {
			return nil, err
		}
		slotOptions, err := loadSlotOptions(ctx, tx, q.ID)
		if err != nil {
			return nil, err
		}
		ec.Questions = append(ec.Questions, EditorQuestion{
			ID:                  q.UID,
			QuestionNumber:      q.Number,
			QuestionMarkdown:    q.Markdown,
			ExplanationMarkdown: q.Explanation,
			SlotOptions:         slotOptions,
		})
	}

	return ec, nil
}

// loadSlotOptions returns the per-slot option matrix of a question. Explicit
// slots are canonical; a question carrying only the legacy flat list is
// synthesized into a single-slot view.
func loadSlotOptions(ctx context.Context, tx Repository, questionID int64) ([][]EditorOption, error) {
	slots, err := tx.ListSlots(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if len(slots) > 0 {
		out := make([][]EditorOption, 0, len(slots))
		for _, slot := range slots {
			options, err := tx.ListSlotOptions(ctx, slot.ID)
			if err != nil {
				return nil, err
			}
			row := make([]EditorOption, 0, len(options))
			for _, opt := range options {
				row = append(row, EditorOption{
					OptionIndex:   opt.Index,
					OptionContent: opt.Content,
					IsCorrect:     opt.Correct,
				})
			}
			out = append(out, row)
		}
		return out, nil
	}

	legacy, err := tx.ListLegacyOptions(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if len(legacy) == 0 {
		return [][]EditorOption{}, nil
	}
	row := make([]EditorOption, 0, len(legacy))
	for _, opt := range legacy {
		row = append(row, EditorOption{
			OptionIndex:   opt.Index,
			OptionContent: opt.Content,
			IsCorrect:     opt.Correct,
		})
	}
	return [][]EditorOption{row}, nil
}

// SaveEditorCourse persists the aggregate with the replace-everything
// protocol: course metadata is upserted, the course row is locked, the whole
// descendant subtree is deleted leaf-to-root and reinserted root-to-leaf from
// the payload. Caller-supplied stable UIDs and numbering are written
// verbatim; after a successful return the persisted subtree is exactly the
// payload, never a merge.
func (s *service) SaveEditorCourse(ctx context.Context, course *EditorCourse) error {
	if course == nil || strings.TrimSpace(course.ID) == "" {
		return newValidationError("courseId", "must not be blank")
	}

	return s.repo.InTx(ctx, func(tx Repository) error {
		now := time.Now().UTC()
		row, err := tx.GetCourse(ctx, course.ID)
		if err != nil {
			if !IsNotFound(err) {
				return err
			}
			row = &Course{ID: course.ID, CreatedAt: now}
		}
		row.Title = course.Title
		row.Description = course.Description
		row.Language = course.Language
		row.Published = course.Published
		row.TargetStudents = course.TargetStudents
		row.CoverImageURL = course.CoverImageDataURL
		row.UpdatedAt = now
		if err := tx.UpsertCourse(ctx, row); err != nil {
			return err
		}

		if err := tx.LockCourse(ctx, course.ID); err != nil {
			return err
		}

		if err := deleteCourseSubtree(ctx, tx, course.ID); err != nil {
			return err
		}

		return insertCourseSubtree(ctx, tx, course)
	})
}

// deleteCourseSubtree removes every descendant row of the course in
// leaf-to-root order so referential constraints are never violated.
func deleteCourseSubtree(ctx context.Context, tx Repository, courseID string) error {
	chapters, err := tx.ListChapters(ctx, courseID)
	if err != nil {
		return err
	}

	var chapterIDs, subchapterIDs, questionIDs []int64
	var slotIDs, slotOptionIDs, legacyOptionIDs []int64

	for _, ch := range chapters {
		chapterIDs = append(chapterIDs, ch.ID)

		subs, err := tx.ListSubchapters(ctx, ch.ID)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			subchapterIDs = append(subchapterIDs, sub.ID)
		}

		questions, err := tx.ListQuestions(ctx, ch.ID)
		if err != nil {
			return err
		}
		for _, q := range questions {
			questionIDs = append(questionIDs, q.ID)

			slots, err := tx.ListSlots(ctx, q.ID)
			if err != nil {
				return err
			}
			for _, slot := range slots {
				slotIDs = append(slotIDs, slot.ID)
				options, err := tx.ListSlotOptions(ctx, slot.ID)
				if err != nil {
					return err
				}
				for _, opt := range options {
					slotOptionIDs = append(slotOptionIDs, opt.ID)
				}
			}

			legacy, err := tx.ListLegacyOptions(ctx, q.ID)
			if err != nil {
				return err
			}
			for _, opt := range legacy {
				legacyOptionIDs = append(legacyOptionIDs, opt.ID)
			}
		}
	}

	if err := tx.DeleteSlotOptions(ctx, slotOptionIDs); err != nil {
		return err
	}
	if err := tx.DeleteSlots(ctx, slotIDs); err != nil {
		return err
	}
	if err := tx.DeleteLegacyOptions(ctx, legacyOptionIDs); err != nil {
		return err
	}
	if err := tx.DeleteQuestions(ctx, questionIDs); err != nil {
		return err
	}
	if err := tx.DeleteSubchapters(ctx, subchapterIDs); err != nil {
		return err
	}
	return tx.DeleteChapters(ctx, chapterIDs)
}

// insertCourseSubtree writes the aggregate root-to-leaf. UIDs and numbers are
// taken from the payload as-is; nothing is regenerated or renumbered.
func insertCourseSubtree(ctx context.Context, tx Repository, course *EditorCourse) error {
	for _, ec := range course.Chapters {
		chapter := &Chapter{
			CourseID: course.ID,
			Number:   ec.Number,
			Name:     ec.Name,
			UID:      ec.ID,
		}
		if err := tx.CreateChapter(ctx, chapter); err != nil {
			return err
		}

		for _, es := range ec.Subchapters {
			sub := &Subchapter{
				ChapterID: chapter.ID,
				Number:    es.Number,
				Name:      es.Name,
				Markdown:  es.Markdown,
				UID:       es.ID,
			}
			if err := tx.CreateSubchapter(ctx, sub); err != nil {
				return err
			}
		}

		for _, eq := range ec.Questions {
			question := &Question{
				ChapterID:   chapter.ID,
				Number:      eq.QuestionNumber,
				Markdown:    eq.QuestionMarkdown,
				Explanation: eq.ExplanationMarkdown,
				UID:         eq.ID,
			}
			if err := tx.CreateQuestion(ctx, question); err != nil {
				return err
			}

			for slotIndex, options := range eq.SlotOptions {
				slot := &Slot{QuestionID: question.ID, Index: slotIndex}
				if err := tx.CreateSlot(ctx, slot); err != nil {
					return err
				}
				for _, opt := range options {
					option := &SlotOption{
						SlotID:  slot.ID,
						Index:   opt.OptionIndex,
						Content: opt.OptionContent,
						Correct: opt.IsCorrect,
					}
					if err := tx.CreateSlotOption(ctx, option); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
