package coursecontent

import (
	"context"
	"fmt"
	"strings"
)

// Outline mutations operate incrementally on the live tree; they never reload
// or rewrite untouched siblings.

const defaultSubchapterName = "New subchapter"

func (s *service) AddChapter(ctx context.Context, courseID, name string) (*Chapter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "must not be blank")
	}

	var chapter *Chapter
	err := s.repo.InTx(ctx, func(tx Repository) error {
		if _, err := tx.GetCourse(ctx, courseID); err != nil {
			return err
		}
		if err := tx.LockCourse(ctx, courseID); err != nil {
			return err
		}

		chapters, err := tx.ListChapters(ctx, courseID)
		if err != nil {
			return err
		}
		number := 1
		for _, ch := range chapters {
			if ch.Number >= number {
				number = ch.Number + 1
			}
		}

		chapter = &Chapter{CourseID: courseID, Number: number, Name: name}
		if err := tx.CreateChapter(ctx, chapter); err != nil {
			return err
		}
		if err := ensureChapterUID(ctx, tx, chapter); err != nil {
			return err
		}

		// a chapter is never left without a subchapter
		sub := &Subchapter{ChapterID: chapter.ID, Number: 1, Name: defaultSubchapterName}
		if err := tx.CreateSubchapter(ctx, sub); err != nil {
			return err
		}
		return ensureSubchapterUID(ctx, tx, sub)
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *service) RenameChapter(ctx context.Context, courseID, chapterToken, name string) (*Chapter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "must not be blank")
	}

	var chapter *Chapter
	err := s.repo.InTx(ctx, func(tx Repository) error {
		ch, err := resolveChapter(ctx, tx, courseID, chapterToken)
		if err != nil {
			return err
		}
		ch.Name = name
		if err := tx.UpdateChapter(ctx, ch); err != nil {
			return err
		}
		chapter = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

func (s *service) DeleteChapter(ctx context.Context, courseID, chapterToken string) error {
	return s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockCourse(ctx, courseID); err != nil {
			return err
		}

		chapter, err := resolveChapter(ctx, tx, courseID, chapterToken)
		if err != nil {
			return err
		}

		chapters, err := tx.ListChapters(ctx, courseID)
		if err != nil {
			return err
		}
		if len(chapters) <= 1 {
			return fmt.Errorf("chapter %d: %w", chapter.Number, ErrLastChapter)
		}

		return deleteChapterSubtree(ctx, tx, chapter)
	})
}

// deleteChapterSubtree cascades over the chapter's questions (slots and
// options first) and subchapters, then removes the chapter row itself.
func deleteChapterSubtree(ctx context.Context, tx Repository, chapter *Chapter) error {
	questions, err := tx.ListQuestions(ctx, chapter.ID)
	if err != nil {
		return err
	}
	var questionIDs []int64
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)

		slots, err := tx.ListSlots(ctx, q.ID)
		if err != nil {
			return err
		}
		var slotIDs, optionIDs []int64
		for _, slot := range slots {
			slotIDs = append(slotIDs, slot.ID)
			options, err := tx.ListSlotOptions(ctx, slot.ID)
			if err != nil {
				return err
			}
			for _, opt := range options {
				optionIDs = append(optionIDs, opt.ID)
			}
		}
		if err := tx.DeleteSlotOptions(ctx, optionIDs); err != nil {
			return err
		}
		if err := tx.DeleteSlots(ctx, slotIDs); err != nil {
			return err
		}

		legacy, err := tx.ListLegacyOptions(ctx, q.ID)
		if err != nil {
			return err
		}
		var legacyIDs []int64
		for _, opt := range legacy {
			legacyIDs = append(legacyIDs, opt.ID)
		}
		if err := tx.DeleteLegacyOptions(ctx, legacyIDs); err != nil {
			return err
		}
	}
	if err := tx.DeleteQuestions(ctx, questionIDs); err != nil {
		return err
	}

	subs, err := tx.ListSubchapters(ctx, chapter.ID)
	if err != nil {
		return err
	}
	var subIDs []int64
	for _, sub := range subs {
		subIDs = append(subIDs, sub.ID)
	}
	if err := tx.DeleteSubchapters(ctx, subIDs); err != nil {
		return err
	}

	return tx.DeleteChapters(ctx, []int64{chapter.ID})
}

func (s *service) AddSubchapter(ctx context.Context, courseID, chapterToken, name string) (*Subchapter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "must not be blank")
	}

	var subchapter *Subchapter
	err := s.repo.InTx(ctx, func(tx Repository) error {
		chapter, err := resolveChapter(ctx, tx, courseID, chapterToken)
		if err != nil {
			return err
		}

		subs, err := tx.ListSubchapters(ctx, chapter.ID)
		if err != nil {
			return err
		}
		number := 1
		for _, sub := range subs {
			if sub.Number >= number {
				number = sub.Number + 1
			}
		}

		subchapter = &Subchapter{ChapterID: chapter.ID, Number: number, Name: name}
		if err := tx.CreateSubchapter(ctx, subchapter); err != nil {
			return err
		}
		return ensureSubchapterUID(ctx, tx, subchapter)
	})
	if err != nil {
		return nil, err
	}
	return subchapter, nil
}

func (s *service) RenameSubchapter(ctx context.Context, courseID, chapterToken, subchapterToken, name string) (*Subchapter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, newValidationError("name", "must not be blank")
	}

	var subchapter *Subchapter
	err := s.repo.InTx(ctx, func(tx Repository) error {
		chapter, err := resolveChapter(ctx, tx, courseID, chapterToken)
		if err != nil {
			return err
		}
		sub, err := resolveSubchapter(ctx, tx, chapter.ID, subchapterToken)
		if err != nil {
			return err
		}
		sub.Name = name
		if err := tx.UpdateSubchapter(ctx, sub); err != nil {
			return err
		}
		subchapter = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subchapter, nil
}

func (s *service) DeleteSubchapter(ctx context.Context, courseID, chapterToken, subchapterToken string) error {
	return s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.LockCourse(ctx, courseID); err != nil {
			return err
		}

		chapter, err := resolveChapter(ctx, tx, courseID, chapterToken)
		if err != nil {
			return err
		}
		sub, err := resolveSubchapter(ctx, tx, chapter.ID, subchapterToken)
		if err != nil {
			return err
		}

		subs, err := tx.ListSubchapters(ctx, chapter.ID)
		if err != nil {
			return err
		}
		if len(subs) <= 1 {
			return fmt.Errorf("subchapter %d: %w", sub.Number, ErrLastSubchapter)
		}

		return tx.DeleteSubchapters(ctx, []int64{sub.ID})
	})
}
