package coursecontent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAssetKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "plain key", raw: "courses/c1/cover/a.png", want: "courses/c1/cover/a.png", ok: true},
		{name: "backslashes", raw: "courses\\c1\\cover\\a.png", want: "courses/c1/cover/a.png", ok: true},
		{name: "leading slash", raw: "/courses/c1/a.png", want: "courses/c1/a.png", ok: true},
		{name: "many leading slashes", raw: "///a.png", want: "a.png", ok: true},
		{name: "parent traversal", raw: "../etc/passwd", ok: false},
		{name: "embedded traversal", raw: "courses/../../etc/passwd", ok: false},
		{name: "backslash traversal", raw: "courses\\..\\secret", ok: false},
		{name: "empty", raw: "", ok: false},
		{name: "only slashes", raw: "///", ok: false},
		{name: "dot segment is allowed", raw: "courses/./a.png", want: "courses/./a.png", ok: true},
		{name: "dotdot as name fragment is allowed", raw: "courses/..hidden/a.png", want: "courses/..hidden/a.png", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAssetKey(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMatchCoverKey(t *testing.T) {
	objects := []StoredObject{
		{Key: "courses/c1/markdown-editor/ch/sub/subchapter/images/abc.png"},
		{Key: "courses/c1/cover/abc.png"},
		{Key: "courses/c1/cover/other.png"},
	}

	tests := []struct {
		name     string
		coverURL string
		want     string
	}{
		{name: "plain url", coverURL: "https://cdn.example.com/courses/c1/cover/abc.png", want: "courses/c1/cover/abc.png"},
		{name: "query string stripped", coverURL: "https://cdn.example.com/files/abc.png?v=2", want: "courses/c1/cover/abc.png"},
		{name: "fragment stripped", coverURL: "https://cdn.example.com/files/other.png#top", want: "courses/c1/cover/other.png"},
		{name: "only cover keys match", coverURL: "https://cdn.example.com/files/nothing.png", want: ""},
		{name: "empty url", coverURL: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCoverKey(tt.coverURL, objects))
		})
	}
}

func TestAssetKeyTemplates(t *testing.T) {
	assert.Equal(t, "courses/c1/", courseAssetPrefix("c1"))
	assert.Equal(t, "courses/c1/cover/a.png", coverImageKey("c1", "a.png"))
	assert.Equal(t, "courses/c1/markdown-editor/ch-1/", chapterAssetPrefix("c1", "ch-1"))
	assert.Equal(t,
		"courses/c1/markdown-editor/ch-1/sub-2/subchapter/images/a.png",
		markdownImageKey("c1", "ch-1", "sub-2", ImageKindSubchapter, "a.png"))
}

func TestSurrogateIDFromToken(t *testing.T) {
	id, ok := surrogateIDFromToken("chapter_42", UIDPrefixChapter)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = surrogateIDFromToken("chapter_42", UIDPrefixSubchapter)
	assert.False(t, ok)

	_, ok = surrogateIDFromToken("chapter_", UIDPrefixChapter)
	assert.False(t, ok)

	_, ok = surrogateIDFromToken("chapter_4x", UIDPrefixChapter)
	assert.False(t, ok)

	_, ok = surrogateIDFromToken("42", UIDPrefixChapter)
	assert.False(t, ok)
}

func TestIsAllDigits(t *testing.T) {
	assert.True(t, isAllDigits("0"))
	assert.True(t, isAllDigits("123"))
	assert.False(t, isAllDigits(""))
	assert.False(t, isAllDigits("12a"))
	assert.False(t, isAllDigits("-1"))
	assert.False(t, isAllDigits("１２")) // full-width digits are not positions
}

func TestDecodeTargetStudents(t *testing.T) {
	ts := DecodeTargetStudents([]byte(`{"schoolYears":[7,8],"classes":["7a"]}`))
	assert.Equal(t, []int{7, 8}, ts.SchoolYears)
	assert.Equal(t, []string{"7a"}, ts.Classes)

	assert.Equal(t, TargetStudents{}, DecodeTargetStudents(nil))
	assert.Equal(t, TargetStudents{}, DecodeTargetStudents([]byte("not json")))
}
