package coursecontent

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxCoverImageBytes bounds a single image upload (cover or markdown inline).
const maxCoverImageBytes = 5 << 20

// service implements the Service interface
type service struct {
	repo  Repository
	store BlobStore
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the content tree repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithBlobStore sets the asset storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// GetCourse returns the bare course row. Unlike GetEditorCourse it never
// walks the tree and never writes backfilled identifiers.
func (s *service) GetCourse(ctx context.Context, courseID string) (*Course, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, newValidationError("courseId", "must not be blank")
	}
	return s.repo.GetCourse(ctx, courseID)
}

func (s *service) UpdateCourseMeta(ctx context.Context, req UpdateCourseMetaRequest) (*Course, error) {
	if strings.TrimSpace(req.CourseID) == "" {
		return nil, newValidationError("courseId", "must not be blank")
	}

	now := time.Now().UTC()
	course, err := s.repo.GetCourse(ctx, req.CourseID)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		course = &Course{ID: req.CourseID, CreatedAt: now}
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Language = req.Language
	course.Published = req.Published
	course.TargetStudents = req.TargetStudents
	course.UpdatedAt = now

	if err := s.repo.UpsertCourse(ctx, course); err != nil {
		return nil, &CourseError{CourseID: course.ID, Op: "update_meta", Err: err}
	}
	return course, nil
}

func (s *service) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, CourseSummary{
			ID:            c.ID,
			Title:         c.Title,
			Language:      c.Language,
			Published:     c.Published,
			CoverImageURL: c.CoverImageURL,
			UpdatedAt:     c.UpdatedAt,
		})
	}
	return summaries, nil
}

// DeleteCourse removes the course row with its whole subtree, then every
// stored asset under the course prefix. Row deletion commits before asset
// deletion starts; a storage failure aborts with the rows already gone.
func (s *service) DeleteCourse(ctx context.Context, courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return newValidationError("courseId", "must not be blank")
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if _, err := tx.GetCourse(ctx, courseID); err != nil {
			return err
		}
		if err := tx.LockCourse(ctx, courseID); err != nil {
			return err
		}
		if err := deleteCourseSubtree(ctx, tx, courseID); err != nil {
			return err
		}
		return tx.DeleteCourse(ctx, courseID)
	})
	if err != nil {
		return err
	}

	objects, err := s.store.List(ctx, courseAssetPrefix(courseID))
	if err != nil {
		return &StorageError{Key: courseAssetPrefix(courseID), Op: "list", Err: err}
	}
	for _, obj := range objects {
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return &StorageError{Key: obj.Key, Op: "delete", Err: err}
		}
	}
	return nil
}

func (s *service) UploadCoverImage(ctx context.Context, req UploadImageRequest) (*StoredObject, error) {
	if strings.TrimSpace(req.CourseID) == "" {
		return nil, newValidationError("courseId", "must not be blank")
	}
	if err := validateImageUpload(req.ContentType, req.Size); err != nil {
		return nil, err
	}

	course, err := s.repo.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	key := coverImageKey(req.CourseID, storedFileName(req.FileName))
	obj, err := s.store.Upload(ctx, key, req.ContentType, req.Reader)
	if err != nil {
		return nil, &StorageError{Key: key, Op: "upload", Err: err}
	}

	course.CoverImageURL = obj.URL
	course.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpsertCourse(ctx, course); err != nil {
		return nil, &CourseError{CourseID: course.ID, Op: "upload_cover", Err: err}
	}
	return obj, nil
}

func (s *service) UploadMarkdownImage(ctx context.Context, req UploadMarkdownImageRequest) (*StoredObject, error) {
	if strings.TrimSpace(req.CourseID) == "" {
		return nil, newValidationError("courseId", "must not be blank")
	}
	if err := validateImageUpload(req.ContentType, req.Size); err != nil {
		return nil, err
	}
	if req.Kind != ImageKindSubchapter && req.Kind != ImageKindQuestion && req.Kind != ImageKindExplanation {
		return nil, newValidationError("kind", fmt.Sprintf("unknown image kind %q", req.Kind))
	}

	chapter, err := resolveChapter(ctx, s.repo, req.CourseID, req.ChapterToken)
	if err != nil {
		return nil, err
	}

	var targetUID string
	if req.Kind == ImageKindSubchapter {
		sub, err := resolveSubchapter(ctx, s.repo, chapter.ID, req.TargetToken)
		if err != nil {
			return nil, err
		}
		targetUID = sub.UID
	} else {
		q, err := resolveQuestion(ctx, s.repo, chapter.ID, req.TargetToken)
		if err != nil {
			return nil, err
		}
		targetUID = q.UID
	}

	key := markdownImageKey(req.CourseID, chapter.UID, targetUID, req.Kind, storedFileName(req.FileName))
	obj, err := s.store.Upload(ctx, key, req.ContentType, req.Reader)
	if err != nil {
		return nil, &StorageError{Key: key, Op: "upload", Err: err}
	}
	return obj, nil
}

// ListChapterAssets lists everything under the chapter's markdown-editor
// prefix and groups it by (target UID, kind). Group labels map the stable
// identifier back to the node's current position number via the live tree.
func (s *service) ListChapterAssets(ctx context.Context, courseID, chapterToken string) ([]AssetGroup, error) {
	chapter, err := resolveChapter(ctx, s.repo, courseID, chapterToken)
	if err != nil {
		return nil, err
	}

	prefix := chapterAssetPrefix(courseID, chapter.UID)
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "list", Err: err}
	}

	subs, err := s.repo.ListSubchapters(ctx, chapter.ID)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.ListQuestions(ctx, chapter.ID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*AssetGroup)
	var order []string
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, prefix)
		parts := strings.Split(rel, "/")
		// <targetUID>/<kind>/images/<file>; stray objects under the chapter
		// prefix that don't match the template are not surfaced
		if len(parts) < 4 || parts[2] != "images" {
			continue
		}
		targetUID, kind := parts[0], parts[1]
		if kind != ImageKindSubchapter && kind != ImageKindQuestion && kind != ImageKindExplanation {
			continue
		}
		groupKey := targetUID + "/" + kind
		group, ok := grouped[groupKey]
		if !ok {
			group = &AssetGroup{
				TargetUID: targetUID,
				Kind:      kind,
				Label:     assetGroupLabel(targetUID, kind, subs, questions),
			}
			grouped[groupKey] = group
			order = append(order, groupKey)
		}
		group.Assets = append(group.Assets, obj)
	}

	groups := make([]AssetGroup, 0, len(order))
	for _, k := range order {
		groups = append(groups, *grouped[k])
	}
	return groups, nil
}

func assetGroupLabel(targetUID, kind string, subs []*Subchapter, questions []*Question) string {
	switch kind {
	case ImageKindSubchapter:
		for _, sub := range subs {
			if sub.UID == targetUID {
				return fmt.Sprintf("Subchapter %d", sub.Number)
			}
		}
	case ImageKindQuestion, ImageKindExplanation:
		for _, q := range questions {
			if q.UID == targetUID {
				return fmt.Sprintf("Question %d", q.Number)
			}
		}
	}
	return targetUID
}

func (s *service) DeleteAsset(ctx context.Context, courseID, key string) error {
	if strings.TrimSpace(courseID) == "" {
		return newValidationError("courseId", "must not be blank")
	}
	normalized, ok := NormalizeAssetKey(key)
	if !ok || !strings.HasPrefix(normalized, courseAssetPrefix(courseID)) {
		return newValidationError("key", "outside the course asset tree")
	}
	if err := s.store.Delete(ctx, normalized); err != nil {
		return &StorageError{Key: normalized, Op: "delete", Err: err}
	}
	return nil
}

func validateImageUpload(contentType string, size int64) error {
	if size > maxCoverImageBytes {
		return newValidationError("file", fmt.Sprintf("exceeds the %d byte limit", maxCoverImageBytes))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return newValidationError("file", fmt.Sprintf("content type %q is not an image", contentType))
	}
	return nil
}

// storedFileName produces a fresh storage file name, keeping the upload's
// extension so served URLs stay recognizable.
func storedFileName(original string) string {
	return uuid.New().String() + strings.ToLower(path.Ext(original))
}
