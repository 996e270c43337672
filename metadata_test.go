package coremark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeMetadata(t *testing.T) {
	assert.True(t, looksLikeMetadata([]byte("title: Hello\n\nbody\n")))
	assert.False(t, looksLikeMetadata([]byte("# Hello\n\nbody\n")))
	assert.False(t, looksLikeMetadata([]byte(": no key\n")))
	assert.False(t, looksLikeMetadata(nil))
}

func TestParseMetadataBlock_SimpleKeys(t *testing.T) {
	data := []byte("Title: My Doc\nAuthor: Jane\n\nbody starts here\n")
	entries, consumed := parseMetadataBlock(data)
	require.Len(t, entries, 2)
	assert.Equal(t, "title", string(entries[0].key))
	assert.Equal(t, "My Doc", string(entries[0].value))
	assert.Equal(t, "author", string(entries[1].key))
	assert.Equal(t, "Jane", string(entries[1].value))
	assert.Equal(t, "body starts here\n", string(data[consumed:]))
}

func TestParseMetadataBlock_ContinuationLines(t *testing.T) {
	data := []byte("Summary: line one\n  line two\n  line three\n\nbody\n")
	entries, _ := parseMetadataBlock(data)
	require.Len(t, entries, 1)
	assert.Equal(t, "summary", string(entries[0].key))
	assert.Equal(t, "line one\n  line two\n  line three", string(entries[0].value))
}

func TestParseMetadataBlock_StopsAtNewKey(t *testing.T) {
	data := []byte("A: 1\nB: 2\n")
	entries, _ := parseMetadataBlock(data)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", string(entries[0].key))
	assert.Equal(t, "b", string(entries[1].key))
}

func TestNormalizeMetaKey(t *testing.T) {
	assert.Equal(t, "my-key", string(normalizeMetaKey([]byte("My-Key"))))
	assert.Equal(t, "ab", string(normalizeMetaKey([]byte("a b"))))
	assert.Equal(t, "a?b", string(normalizeMetaKey([]byte("a.b"))))
}

func TestOrderMetadata_TitleFirst(t *testing.T) {
	entries := []metaEntry{
		{key: []byte("author"), value: []byte("Jane")},
		{key: []byte("title"), value: []byte("Doc")},
	}
	ordered := orderMetadata(entries)
	require.Len(t, ordered, 2)
	assert.Equal(t, "title", string(ordered[0].key))
	assert.Equal(t, "author", string(ordered[1].key))
}

func TestMergeMetadataQueues_Precedence(t *testing.T) {
	doc := []metaEntry{{key: []byte("author"), value: []byte("doc-author")}}
	q := metadataQueues{
		defaults:  []metaEntry{{key: []byte("author"), value: []byte("default-author")}, {key: []byte("license"), value: []byte("MIT")}},
		overrides: []metaEntry{{key: []byte("author"), value: []byte("override-author")}},
	}
	merged := mergeMetadataQueues(doc, q)

	byKey := map[string]string{}
	for _, e := range merged {
		byKey[string(e.key)] = string(e.value)
	}
	assert.Equal(t, "override-author", byKey["author"])
	assert.Equal(t, "MIT", byKey["license"])
}

func TestLookupMeta(t *testing.T) {
	entries := []metaEntry{{key: []byte("title"), value: []byte("Doc")}}
	found := lookupMeta(entries, []byte("title"))
	require.NotNil(t, found)
	assert.Equal(t, "Doc", string(found.value))
	assert.Nil(t, lookupMeta(entries, []byte("missing")))
}
