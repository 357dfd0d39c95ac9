package coursecontent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Identifier resolution. A node token is accepted in three forms, classified
// in order:
//
//  1. all digits: the position number within the parent scope
//  2. a stable UID within the parent scope
//  3. "<kind>_<digits>": the legacy surrogate-id form, verified to belong to
//     the parent scope so guessed ids cannot reach foreign nodes
//
// Numeric tokens always win: a token "2" resolves to position 2 even when
// another node's UID is literally "2". Any successful resolution backfills a
// missing stable UID before returning.

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// surrogateIDFromToken extracts the numeric surrogate id from a
// "<kind>_<digits>" token, or returns false.
func surrogateIDFromToken(token, kind string) (int64, bool) {
	rest, ok := strings.CutPrefix(token, kind+"_")
	if !ok || !isAllDigits(rest) {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func resolveChapter(ctx context.Context, repo Repository, courseID, token string) (*Chapter, error) {
	token = strings.TrimSpace(token)

	if isAllDigits(token) {
		number, err := strconv.Atoi(token)
		if err != nil {
			return nil, ErrChapterNotFound
		}
		ch, err := repo.GetChapterByNumber(ctx, courseID, number)
		if err != nil {
			return nil, err
		}
		return ch, ensureChapterUID(ctx, repo, ch)
	}

	if ch, err := repo.GetChapterByUID(ctx, courseID, token); err == nil {
		return ch, nil
	} else if !errors.Is(err, ErrChapterNotFound) {
		return nil, err
	}

	if id, ok := surrogateIDFromToken(token, UIDPrefixChapter); ok {
		ch, err := repo.GetChapterByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ch.CourseID != courseID {
			return nil, ErrChapterNotFound
		}
		return ch, ensureChapterUID(ctx, repo, ch)
	}

	return nil, ErrChapterNotFound
}

func resolveSubchapter(ctx context.Context, repo Repository, chapterID int64, token string) (*Subchapter, error) {
	token = strings.TrimSpace(token)

	if isAllDigits(token) {
		number, err := strconv.Atoi(token)
		if err != nil {
			return nil, ErrSubchapterNotFound
		}
		sub, err := repo.GetSubchapterByNumber(ctx, chapterID, number)
		if err != nil {
			return nil, err
		}
		return sub, ensureSubchapterUID(ctx, repo, sub)
	}

	if sub, err := repo.GetSubchapterByUID(ctx, chapterID, token); err == nil {
		return sub, nil
	} else if !errors.Is(err, ErrSubchapterNotFound) {
		return nil, err
	}

	if id, ok := surrogateIDFromToken(token, UIDPrefixSubchapter); ok {
		sub, err := repo.GetSubchapterByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sub.ChapterID != chapterID {
			return nil, ErrSubchapterNotFound
		}
		return sub, ensureSubchapterUID(ctx, repo, sub)
	}

	return nil, ErrSubchapterNotFound
}

func resolveQuestion(ctx context.Context, repo Repository, chapterID int64, token string) (*Question, error) {
	token = strings.TrimSpace(token)

	if isAllDigits(token) {
		number, err := strconv.Atoi(token)
		if err != nil {
			return nil, ErrQuestionNotFound
		}
		q, err := repo.GetQuestionByNumber(ctx, chapterID, number)
		if err != nil {
			return nil, err
		}
		return q, ensureQuestionUID(ctx, repo, q)
	}

	if q, err := repo.GetQuestionByUID(ctx, chapterID, token); err == nil {
		return q, nil
	} else if !errors.Is(err, ErrQuestionNotFound) {
		return nil, err
	}

	if id, ok := surrogateIDFromToken(token, UIDPrefixQuestion); ok {
		q, err := repo.GetQuestionByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if q.ChapterID != chapterID {
			return nil, ErrQuestionNotFound
		}
		return q, ensureQuestionUID(ctx, repo, q)
	}

	return nil, ErrQuestionNotFound
}

// UID backfill. Assigned identifiers are "<kind>_<surrogateID>" and are
// persisted immediately so repeated reads return the same identifier.

func ensureChapterUID(ctx context.Context, repo Repository, ch *Chapter) error {
	if ch.UID != "" {
		return nil
	}
	ch.UID = fmt.Sprintf("%s_%d", UIDPrefixChapter, ch.ID)
	return repo.UpdateChapter(ctx, ch)
}

func ensureSubchapterUID(ctx context.Context, repo Repository, sub *Subchapter) error {
	if sub.UID != "" {
		return nil
	}
	sub.UID = fmt.Sprintf("%s_%d", UIDPrefixSubchapter, sub.ID)
	return repo.UpdateSubchapter(ctx, sub)
}

func ensureQuestionUID(ctx context.Context, repo Repository, q *Question) error {
	if q.UID != "" {
		return nil
	}
	q.UID = fmt.Sprintf("%s_%d", UIDPrefixQuestion, q.ID)
	return repo.UpdateQuestion(ctx, q)
}
