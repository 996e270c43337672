package coremark

import "bytes"

// metaEntry is a parsed key/value pair from the leading metadata block
// (C5), or one supplied via WithMetadata/WithMetadataOverrides.
type metaEntry struct {
	key   []byte
	value []byte
}

// metadataQueues holds the two command-line-equivalent queues described in
// spec.md §4.5: DEFAULTS are overridden by anything the document itself
// sets, OVERRIDES win over the document.
type metadataQueues struct {
	defaults  []metaEntry
	overrides []metaEntry
}

// looksLikeMetadata reports whether data (the cleaned buffer, after BOM
// stripping) opens with a metadata block: the first byte is alphanumeric
// and the first logical line contains a ':' before its newline.
func looksLikeMetadata(data []byte) bool {
	if len(data) == 0 || !isalnum(data[0]) {
		return false
	}
	end := bytes.IndexByte(data, '\n')
	if end < 0 {
		end = len(data)
	}
	return bytes.IndexByte(data[:end], ':') >= 0
}

// parseMetadataBlock consumes a leading key/value block per spec.md §4.5
// and returns the entries found plus the number of bytes consumed
// (including the terminating blank line, if any).
func parseMetadataBlock(data []byte) (entries []metaEntry, consumed int) {
	i := 0
	for i < len(data) {
		lineStart := i
		lineEnd := lineStart
		for lineEnd < len(data) && data[lineEnd] != '\n' {
			lineEnd++
		}
		nextLine := lineEnd
		if nextLine < len(data) {
			nextLine++
		}

		if isEmptyLine(data[lineStart:nextLine]) {
			i = nextLine
			break
		}

		colon := bytes.IndexByte(data[lineStart:lineEnd], ':')
		if colon < 0 || data[lineStart] == ' ' || data[lineStart] == '\t' {
			// malformed metadata line with no leading-whitespace key: stop
			break
		}

		key := normalizeMetaKey(data[lineStart : lineStart+colon])
		valueStart := lineStart + colon + 1
		for valueStart < lineEnd && (data[valueStart] == ' ' || data[valueStart] == '\t') {
			valueStart++
		}

		var value bytes.Buffer
		value.Write(data[valueStart:lineEnd])

		cursor := nextLine
		for cursor < len(data) {
			contLineEnd := cursor
			for contLineEnd < len(data) && data[contLineEnd] != '\n' {
				contLineEnd++
			}
			contNext := contLineEnd
			if contNext < len(data) {
				contNext++
			}
			if isEmptyLine(data[cursor:contNext]) {
				break
			}
			if isNewMetaKeyLine(data[cursor:contLineEnd]) {
				break
			}
			value.WriteByte('\n')
			value.Write(data[cursor:contLineEnd])
			cursor = contNext
		}

		finalValue := value.Bytes()
		if cursor == nextLine {
			// single-line value: trim trailing spaces
			finalValue = bytes.TrimRight(finalValue, " \t")
		}

		entries = append(entries, metaEntry{key: key, value: finalValue})
		i = cursor
	}

	return entries, i
}

// isNewMetaKeyLine reports whether line opens a new `key:` entry: a colon
// before the newline with no leading whitespace on the left side.
func isNewMetaKeyLine(line []byte) bool {
	if len(line) == 0 || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	return bytes.IndexByte(line, ':') >= 0
}

// normalizeMetaKey lowercases, keeps alphanumerics/-/_, drops whitespace,
// and maps everything else to '?'.
func normalizeMetaKey(raw []byte) []byte {
	out := make([]byte, 0, len(raw))
	for _, c := range raw {
		switch {
		case c == ' ' || c == '\t':
			continue
		case c >= 'A' && c <= 'Z':
			out = append(out, c-'A'+'a')
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '?')
		}
	}
	return out
}

// orderMetadata moves the entry whose key is "title" to the head of the
// list, per spec.md §4.5's canonical-ordering rule.
func orderMetadata(entries []metaEntry) []metaEntry {
	for i, e := range entries {
		if bytes.Equal(e.key, []byte("title")) {
			if i == 0 {
				return entries
			}
			ordered := make([]metaEntry, 0, len(entries))
			ordered = append(ordered, e)
			ordered = append(ordered, entries[:i]...)
			ordered = append(ordered, entries[i+1:]...)
			return ordered
		}
	}
	return entries
}

// lookupMeta performs the linear scan over a document's (usually tiny)
// metadata list that a [%key] inline reference needs.
func lookupMeta(entries []metaEntry, key []byte) *metaEntry {
	for i := range entries {
		if bytes.Equal(entries[i].key, key) {
			return &entries[i]
		}
	}
	return nil
}

// mergeMetadataQueues applies DEFAULTS (document wins on key collision),
// then document entries, then OVERRIDES (which win on key collision),
// exactly as spec.md §4.5 describes doc_new's meta/metaovr queues.
func mergeMetadataQueues(doc []metaEntry, q metadataQueues) []metaEntry {
	seen := make(map[string]bool, len(doc))
	for _, e := range doc {
		seen[string(e.key)] = true
	}

	overridden := make(map[string]bool, len(q.overrides))
	for _, e := range q.overrides {
		overridden[string(e.key)] = true
	}

	merged := make([]metaEntry, 0, len(doc)+len(q.defaults)+len(q.overrides))
	for _, e := range q.defaults {
		if !seen[string(e.key)] && !overridden[string(e.key)] {
			merged = append(merged, e)
		}
	}
	for _, e := range doc {
		if !overridden[string(e.key)] {
			merged = append(merged, e)
		}
	}
	for _, e := range q.overrides {
		merged = append(merged, e)
	}
	return orderMetadata(merged)
}
