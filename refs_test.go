package coremark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLinkReference_Basic(t *testing.T) {
	data := []byte("[foo]: /url \"title\"\n")
	consumed, ref := scanLinkReference(data, 0)
	require.NotNil(t, ref)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, "foo", string(ref.name))
	assert.Equal(t, "/url", string(ref.link))
	assert.Equal(t, "title", string(ref.title))
}

func TestScanLinkReference_NoTitle(t *testing.T) {
	data := []byte("[bar]: http://example.com\n")
	consumed, ref := scanLinkReference(data, 0)
	require.NotNil(t, ref)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, "http://example.com", string(ref.link))
	assert.Empty(t, ref.title)
}

func TestScanLinkReference_AngleBracketedURL(t *testing.T) {
	data := []byte("[x]: <http://a.b/c>\n")
	_, ref := scanLinkReference(data, 0)
	require.NotNil(t, ref)
	assert.Equal(t, "http://a.b/c", string(ref.link))
}

func TestScanLinkReference_NotAReference(t *testing.T) {
	data := []byte("this is a paragraph\n")
	consumed, ref := scanLinkReference(data, 0)
	assert.Equal(t, 0, consumed)
	assert.Nil(t, ref)
}

func TestScanFootnoteDef_SingleLine(t *testing.T) {
	data := []byte("[^1]: a note\n")
	consumed, note := scanFootnoteDef(data, 0)
	require.NotNil(t, note)
	assert.Equal(t, len(data), consumed)
	assert.Equal(t, "1", string(note.name))
	assert.Equal(t, "a note", string(note.contents))
	assert.False(t, note.isUsed)
}

func TestScanFootnoteDef_ContinuationLines(t *testing.T) {
	data := []byte("[^1]: first line\n    second line\n\nnot part of it\n")
	consumed, note := scanFootnoteDef(data, 0)
	require.NotNil(t, note)
	assert.Equal(t, "first line\nsecond line", string(note.contents))
	assert.Less(t, consumed, len(data))
}

func TestScanFootnoteDef_TabContinuationTreatedLikeFourSpaces(t *testing.T) {
	data := []byte("[^1]: first\n\tsecond\n")
	_, note := scanFootnoteDef(data, 0)
	require.NotNil(t, note)
	assert.Equal(t, "first\nsecond", string(note.contents))
}

func TestIndentWidth(t *testing.T) {
	assert.Equal(t, 4, indentWidth([]byte("    x"), 4))
	assert.Equal(t, 1, indentWidth([]byte("\tx"), 4))
	assert.Equal(t, 0, indentWidth([]byte("  x"), 4))
	assert.Equal(t, 0, indentWidth(nil, 4))
}

func TestLookupReference_CaseSensitive(t *testing.T) {
	refs := []*reference{{name: []byte("Foo"), link: []byte("/foo")}}
	assert.NotNil(t, lookupReference(refs, []byte("Foo")))
	assert.Nil(t, lookupReference(refs, []byte("foo")))
}

func TestCollectReferences_ElidesMatchedLines(t *testing.T) {
	data := []byte("para one\n\n[ref]: /url\n\npara two\n")
	staging, refs, notes := collectReferences(data, false)
	require.Len(t, refs, 1)
	assert.Empty(t, notes)
	assert.NotContains(t, string(staging), "[ref]: /url")
	assert.Contains(t, string(staging), "para one")
	assert.Contains(t, string(staging), "para two")
}

func TestCollectReferences_FootnotesDisabledLeavesFootnoteLineAlone(t *testing.T) {
	data := []byte("[^1]: not collected\n")
	staging, refs, notes := collectReferences(data, false)
	assert.Empty(t, refs)
	assert.Empty(t, notes)
	assert.Contains(t, string(staging), "[^1]: not collected")
}
