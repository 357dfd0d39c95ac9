// Package api exposes the course content service over HTTP using chi.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	coursecontent "github.com/edustack/course-content/pkg/coursecontent"
)

// maxImportBytes caps the request body accepted by the import endpoint. The
// per-entry ceilings inside the archive are enforced separately by the
// service.
const maxImportBytes = 256 << 20

// CourseHandler handles HTTP requests for course content using
// pkg/coursecontent
type CourseHandler struct {
	service coursecontent.Service
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(service coursecontent.Service) *CourseHandler {
	return &CourseHandler{service: service}
}

// Routes returns the routes for courses
func (h *CourseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListCourses)
	r.Post("/import", h.ImportArchive)

	r.Route("/{courseID}", func(r chi.Router) {
		r.Put("/", h.UpdateCourseMeta)
		r.Delete("/", h.DeleteCourse)
		r.Get("/editor", h.GetEditorCourse)
		r.Put("/editor", h.SaveEditorCourse)
		r.Post("/cover", h.UploadCoverImage)
		r.Get("/export", h.ExportArchive)
		r.Delete("/assets", h.DeleteAsset)

		r.Route("/chapters", func(r chi.Router) {
			r.Post("/", h.AddChapter)
			r.Route("/{chapter}", func(r chi.Router) {
				r.Patch("/", h.RenameChapter)
				r.Delete("/", h.DeleteChapter)
				r.Get("/assets", h.ListChapterAssets)
				r.Post("/markdown-images", h.UploadMarkdownImage)
				r.Post("/subchapters", h.AddSubchapter)
				r.Patch("/subchapters/{sub}", h.RenameSubchapter)
				r.Delete("/subchapters/{sub}", h.DeleteSubchapter)
			})
		})
	})

	return r
}

// writeError maps service errors onto HTTP statuses. Internal failures keep
// their detail out of the response body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case coursecontent.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case coursecontent.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, coursecontent.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		var archiveErr *coursecontent.ArchiveError
		if errors.As(err, &archiveErr) {
			http.Error(w, archiveErr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// CourseMetaRequest is the request body for the metadata upsert
type CourseMetaRequest struct {
	Title          string                       `json:"title"`
	Description    string                       `json:"description"`
	Language       string                       `json:"language"`
	Published      bool                         `json:"published"`
	TargetStudents coursecontent.TargetStudents `json:"targetStudents"`
}

// NameRequest is the request body for outline add/rename operations
type NameRequest struct {
	Name string `json:"name"`
}

// DeleteAssetRequest is the request body for asset deletion
type DeleteAssetRequest struct {
	Key string `json:"key"`
}

// ListCourses returns summaries for every stored course
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListCourses(r.Context())
	if err != nil {
		slog.Error("Failed to list courses", "error", err)
		writeError(w, err)
		return
	}

	render.JSON(w, r, summaries)
}

// GetEditorCourse returns the full editor aggregate for a course
func (h *CourseHandler) GetEditorCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	course, err := h.service.GetEditorCourse(r.Context(), courseID)
	if err != nil {
		slog.Error("Failed to load editor course", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	render.JSON(w, r, course)
}

// SaveEditorCourse performs a replace-everything save of the content tree
func (h *CourseHandler) SaveEditorCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var course coursecontent.EditorCourse
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		slog.Error("Failed to decode editor course", "course_id", courseID, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The path is authoritative for which course gets replaced.
	course.ID = courseID

	if err := h.service.SaveEditorCourse(r.Context(), &course); err != nil {
		slog.Error("Failed to save editor course", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Course saved", "course_id", courseID)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateCourseMeta upserts the course metadata without touching the tree
func (h *CourseHandler) UpdateCourseMeta(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var req CourseMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	course, err := h.service.UpdateCourseMeta(r.Context(), coursecontent.UpdateCourseMetaRequest{
		CourseID:       courseID,
		Title:          req.Title,
		Description:    req.Description,
		Language:       req.Language,
		Published:      req.Published,
		TargetStudents: req.TargetStudents,
	})
	if err != nil {
		slog.Error("Failed to update course metadata", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Course metadata updated", "course_id", courseID)
	render.JSON(w, r, course)
}

// DeleteCourse deletes a course, its tree and its stored assets
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	if err := h.service.DeleteCourse(r.Context(), courseID); err != nil {
		slog.Error("Failed to delete course", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Course deleted", "course_id", courseID)
	w.WriteHeader(http.StatusNoContent)
}

// AddChapter appends a chapter to the end of the course outline
func (h *CourseHandler) AddChapter(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chapter, err := h.service.AddChapter(r.Context(), courseID, req.Name)
	if err != nil {
		slog.Error("Failed to add chapter", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Chapter added", "course_id", courseID, "chapter_uid", chapter.UID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, chapter)
}

// RenameChapter renames a chapter addressed by any token form
func (h *CourseHandler) RenameChapter(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chapter, err := h.service.RenameChapter(r.Context(), courseID, chapterToken, req.Name)
	if err != nil {
		slog.Error("Failed to rename chapter", "course_id", courseID, "chapter", chapterToken, "error", err)
		writeError(w, err)
		return
	}

	render.JSON(w, r, chapter)
}

// DeleteChapter removes a chapter and everything below it
func (h *CourseHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")

	if err := h.service.DeleteChapter(r.Context(), courseID, chapterToken); err != nil {
		slog.Error("Failed to delete chapter", "course_id", courseID, "chapter", chapterToken, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Chapter deleted", "course_id", courseID, "chapter", chapterToken)
	w.WriteHeader(http.StatusNoContent)
}

// AddSubchapter appends a subchapter to the end of a chapter
func (h *CourseHandler) AddSubchapter(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subchapter, err := h.service.AddSubchapter(r.Context(), courseID, chapterToken, req.Name)
	if err != nil {
		slog.Error("Failed to add subchapter", "course_id", courseID, "chapter", chapterToken, "error", err)
		writeError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, subchapter)
}

// RenameSubchapter renames a subchapter addressed by any token form
func (h *CourseHandler) RenameSubchapter(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")
	subToken := chi.URLParam(r, "sub")

	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subchapter, err := h.service.RenameSubchapter(r.Context(), courseID, chapterToken, subToken, req.Name)
	if err != nil {
		slog.Error("Failed to rename subchapter", "course_id", courseID, "chapter", chapterToken, "subchapter", subToken, "error", err)
		writeError(w, err)
		return
	}

	render.JSON(w, r, subchapter)
}

// DeleteSubchapter removes a subchapter
func (h *CourseHandler) DeleteSubchapter(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")
	subToken := chi.URLParam(r, "sub")

	if err := h.service.DeleteSubchapter(r.Context(), courseID, chapterToken, subToken); err != nil {
		slog.Error("Failed to delete subchapter", "course_id", courseID, "chapter", chapterToken, "subchapter", subToken, "error", err)
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadCoverImage accepts a multipart cover image upload
func (h *CourseHandler) UploadCoverImage(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Missing cover upload file", "course_id", courseID, "error", err)
		http.Error(w, "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := h.service.UploadCoverImage(r.Context(), coursecontent.UploadImageRequest{
		CourseID:    courseID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		slog.Error("Failed to upload cover image", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Cover image uploaded", "course_id", courseID, "key", stored.Key)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stored)
}

// UploadMarkdownImage accepts a multipart inline image upload for a
// subchapter, question or explanation markdown body
func (h *CourseHandler) UploadMarkdownImage(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := h.service.UploadMarkdownImage(r.Context(), coursecontent.UploadMarkdownImageRequest{
		CourseID:     courseID,
		ChapterToken: chapterToken,
		TargetToken:  r.FormValue("target"),
		Kind:         r.FormValue("kind"),
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Reader:       file,
	})
	if err != nil {
		slog.Error("Failed to upload markdown image", "course_id", courseID, "chapter", chapterToken, "error", err)
		writeError(w, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, stored)
}

// ListChapterAssets returns the stored images of a chapter grouped by their
// markdown target
func (h *CourseHandler) ListChapterAssets(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	chapterToken := chi.URLParam(r, "chapter")

	groups, err := h.service.ListChapterAssets(r.Context(), courseID, chapterToken)
	if err != nil {
		slog.Error("Failed to list chapter assets", "course_id", courseID, "chapter", chapterToken, "error", err)
		writeError(w, err)
		return
	}

	render.JSON(w, r, groups)
}

// DeleteAsset removes a single stored object belonging to the course
func (h *CourseHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var req DeleteAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteAsset(r.Context(), courseID, req.Key); err != nil {
		slog.Error("Failed to delete asset", "course_id", courseID, "key", req.Key, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Asset deleted", "course_id", courseID, "key", req.Key)
	w.WriteHeader(http.StatusNoContent)
}

// ExportArchive streams the course as a zip archive
func (h *CourseHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	// Existence is checked before any bytes are written so a missing course
	// still gets a clean 404. The bare row read keeps the pre-flight from
	// walking the tree a second time.
	if _, err := h.service.GetCourse(r.Context(), courseID); err != nil {
		slog.Error("Failed to load course for export", "course_id", courseID, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", courseID+".zip"))

	if err := h.service.ExportArchive(r.Context(), courseID, w); err != nil {
		// Headers are already on the wire; all we can do is log.
		slog.Error("Failed to export course", "course_id", courseID, "error", err)
		return
	}

	slog.Info("Course exported", "course_id", courseID)
}

// ImportArchive accepts a zip archive upload and recreates the course it
// contains
func (h *CourseHandler) ImportArchive(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		slog.Error("Failed to read import body", "error", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(data) > maxImportBytes {
		http.Error(w, "archive too large", http.StatusRequestEntityTooLarge)
		return
	}

	courseID, err := h.service.ImportArchive(r.Context(), data)
	if err != nil {
		slog.Error("Failed to import course", "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Course imported", "course_id", courseID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"id": courseID})
}
