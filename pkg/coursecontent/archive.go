package coursecontent

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Archive container layout. The zip holds meta.json, course.json and zero or
// more assets/<key> entries. This layout is the compatibility surface:
// archives written here must stay readable by any conforming reader.
const (
	archiveFormat  = "course-archive"
	archiveVersion = 1

	metaEntryName    = "meta.json"
	courseEntryName  = "course.json"
	assetEntryPrefix = "assets/"

	// Per-entry ceilings bound memory use against archives claiming huge
	// uncompressed sizes.
	maxEntryBytes    = 25 << 20
	maxManifestBytes = 2 << 20
)

// ExportArchive serializes the course aggregate and every stored asset under
// the course prefix into a zip container written to w. Entries are streamed
// one at a time; the archive is never buffered whole.
func (s *service) ExportArchive(ctx context.Context, courseID string, w io.Writer) error {
	agg, err := s.GetEditorCourse(ctx, courseID)
	if err != nil {
		return err
	}

	prefix := courseAssetPrefix(courseID)
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return &StorageError{Key: prefix, Op: "list", Err: err}
	}

	manifest := ArchiveManifest{
		Format:        archiveFormat,
		Version:       archiveVersion,
		ExportedAt:    time.Now().UTC(),
		CourseID:      courseID,
		CoverImageKey: matchCoverKey(agg.CoverImageDataURL, objects),
		AssetCount:    len(objects),
	}

	zw := zip.NewWriter(w)

	if err := writeJSONEntry(zw, metaEntryName, manifest); err != nil {
		return err
	}
	if err := writeJSONEntry(zw, courseEntryName, agg); err != nil {
		return err
	}

	for _, obj := range objects {
		key, ok := NormalizeAssetKey(obj.Key)
		if !ok {
			continue
		}
		entry, err := zw.Create(assetEntryPrefix + key)
		if err != nil {
			return &ArchiveError{Entry: key, Op: "export", Err: err}
		}
		rc, err := s.store.Download(ctx, obj.Key)
		if err != nil {
			return &StorageError{Key: obj.Key, Op: "download", Err: err}
		}
		_, err = io.Copy(entry, rc)
		rc.Close()
		if err != nil {
			return &ArchiveError{Entry: key, Op: "export", Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return &ArchiveError{Op: "export", Err: err}
	}
	return nil
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	entry, err := zw.Create(name)
	if err != nil {
		return &ArchiveError{Entry: name, Op: "export", Err: err}
	}
	enc := json.NewEncoder(entry)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return &ArchiveError{Entry: name, Op: "export", Err: err}
	}
	return nil
}

// ImportArchive restores a course from an archive container. The whole
// archive is parsed and validated before any row is touched; the save is then
// a full destructive replace of any existing course with the same id.
//
// Asset re-uploads happen after the row save commits. A failed re-upload
// fails the import but leaves the saved structural data in place: structural
// data wins over assets, because a re-run of the import can restore assets
// while a rolled-back save would lose the whole course.
func (s *service) ImportArchive(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ArchiveError{Op: "import", Err: fmt.Errorf("not a zip container: %w", err)}
	}

	var (
		agg          *EditorCourse
		manifest     ArchiveManifest
		assets       = make(map[string][]byte)
		assetOrder   []string
		courseParsed bool
	)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch {
		case f.Name == courseEntryName:
			raw, err := readEntry(f, maxEntryBytes)
			if err != nil {
				return "", err
			}
			agg = &EditorCourse{}
			if err := json.Unmarshal(raw, agg); err != nil {
				return "", &ArchiveError{Entry: f.Name, Op: "import", Err: err}
			}
			courseParsed = true
		case f.Name == metaEntryName:
			raw, err := readEntry(f, maxManifestBytes)
			if err != nil {
				return "", err
			}
			if err := json.Unmarshal(raw, &manifest); err != nil {
				return "", &ArchiveError{Entry: f.Name, Op: "import", Err: err}
			}
		case strings.HasPrefix(f.Name, assetEntryPrefix):
			key, ok := NormalizeAssetKey(strings.TrimPrefix(f.Name, assetEntryPrefix))
			if !ok {
				// unsafe path, skipped; the rest of the import proceeds
				continue
			}
			raw, err := readEntry(f, maxEntryBytes)
			if err != nil {
				return "", err
			}
			if _, seen := assets[key]; !seen {
				assetOrder = append(assetOrder, key)
			}
			assets[key] = raw
		}
	}

	if !courseParsed {
		return "", &ArchiveError{Entry: courseEntryName, Op: "import", Err: fmt.Errorf("entry missing")}
	}
	if strings.TrimSpace(agg.ID) == "" {
		return "", &ArchiveError{Entry: courseEntryName, Op: "import", Err: fmt.Errorf("course id is blank")}
	}

	if err := s.SaveEditorCourse(ctx, agg); err != nil {
		return "", err
	}

	uploaded := make(map[string]*StoredObject, len(assets))
	for _, key := range assetOrder {
		raw := assets[key]
		obj, err := s.store.Upload(ctx, key, sniffContentType(raw), bytes.NewReader(raw))
		if err != nil {
			return "", &StorageError{Key: key, Op: "upload", Err: err}
		}
		uploaded[key] = obj
	}

	if cover := resolveImportedCover(manifest, agg.CoverImageDataURL, uploaded, assetOrder); cover != nil {
		course, err := s.repo.GetCourse(ctx, agg.ID)
		if err != nil {
			return "", err
		}
		course.CoverImageURL = cover.URL
		course.UpdatedAt = time.Now().UTC()
		if err := s.repo.UpsertCourse(ctx, course); err != nil {
			return "", &CourseError{CourseID: agg.ID, Op: "import_cover", Err: err}
		}
	}

	return agg.ID, nil
}

// resolveImportedCover picks the uploaded asset the course cover should point
// at: the manifest's recorded key when that asset was just uploaded,
// otherwise the filename heuristic against the uploaded set.
func resolveImportedCover(manifest ArchiveManifest, coverURL string, uploaded map[string]*StoredObject, order []string) *StoredObject {
	if manifest.CoverImageKey != "" {
		if obj, ok := uploaded[manifest.CoverImageKey]; ok {
			return obj
		}
	}
	candidates := make([]StoredObject, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, StoredObject{Key: key})
	}
	if key := matchCoverKey(coverURL, candidates); key != "" {
		return uploaded[key]
	}
	return nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &ArchiveError{Entry: f.Name, Op: "import", Err: err}
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, &ArchiveError{Entry: f.Name, Op: "import", Err: err}
	}
	if int64(len(raw)) > limit {
		return nil, &ArchiveError{Entry: f.Name, Op: "import",
			Err: fmt.Errorf("entry exceeds the %d byte ceiling", limit)}
	}
	return raw, nil
}

func sniffContentType(raw []byte) string {
	if len(raw) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(raw)
}
