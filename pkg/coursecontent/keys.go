package coursecontent

import (
	"fmt"
	"path"
	"strings"
)

// Asset storage keys follow the fixed template courses/<courseID>/... with
// cover images under cover/ and inline markdown images under
// markdown-editor/<chapterUID>/<targetUID>/<kind>/images/.

func courseAssetPrefix(courseID string) string {
	return fmt.Sprintf("courses/%s/", courseID)
}

func coverImageKey(courseID, fileName string) string {
	return fmt.Sprintf("courses/%s/cover/%s", courseID, fileName)
}

func chapterAssetPrefix(courseID, chapterUID string) string {
	return fmt.Sprintf("courses/%s/markdown-editor/%s/", courseID, chapterUID)
}

func markdownImageKey(courseID, chapterUID, targetUID, kind, fileName string) string {
	return fmt.Sprintf("courses/%s/markdown-editor/%s/%s/%s/images/%s",
		courseID, chapterUID, targetUID, kind, fileName)
}

// NormalizeAssetKey converts a raw key or archive entry name into a safe
// relative storage key: backslashes become forward slashes and leading
// slashes are stripped. Keys that still contain a ".." path segment are
// rejected; this is the sole zip-slip defense for archive asset entries.
func NormalizeAssetKey(raw string) (string, bool) {
	key := strings.ReplaceAll(raw, "\\", "/")
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return key, true
}

// matchCoverKey resolves the asset key of a course's cover image by matching
// the file name portion of the cover URL against keys containing a /cover/
// path segment. Best effort: returns "" when nothing matches. Known weak
// link: two cover assets sharing a file name under different folders can
// mis-resolve; kept for archive compatibility.
func matchCoverKey(coverURL string, objects []StoredObject) string {
	name := coverFileName(coverURL)
	if name == "" {
		return ""
	}
	for _, obj := range objects {
		if !strings.Contains(obj.Key, "/cover/") {
			continue
		}
		if path.Base(obj.Key) == name {
			return obj.Key
		}
	}
	return ""
}

// coverFileName extracts the bare file name from a cover URL, dropping any
// query string or fragment.
func coverFileName(coverURL string) string {
	if coverURL == "" {
		return ""
	}
	trimmed := coverURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	name := path.Base(trimmed)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
