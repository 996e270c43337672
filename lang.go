package coremark

import enry "github.com/go-enry/go-enry/v2"

// normalizeLang turns a fenced code block's raw info-string token into a
// canonical language name via go-enry's alias table, grounded on
// yaklabco-gomdlint/pkg/langdetect's use of the same entry point. This is
// alias normalisation only ("js" → "JavaScript"), never content-based
// detection: BLOCKCODE.lang (spec.md §3) stays exactly what the author
// typed in the fence's info string when no alias matches.
func normalizeLang(raw string) string {
	if raw == "" {
		return ""
	}
	if canonical, ok := enry.GetLanguageByAlias(raw); ok {
		return canonical
	}
	return raw
}
