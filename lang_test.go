package coremark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLang_KnownAlias(t *testing.T) {
	assert.Equal(t, "JavaScript", normalizeLang("js"))
}

func TestNormalizeLang_UnknownFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "not-a-real-language", normalizeLang("not-a-real-language"))
}

func TestNormalizeLang_Empty(t *testing.T) {
	assert.Equal(t, "", normalizeLang(""))
}
