// Blackfriday Markdown Processor
// Available at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.

package coremark

import "strings"

// leftAngle handles '<': either a raw HTML tag, or — when Autolink is on
// and the contents look like a URL/email scheme — a tag-style autolink
// such as <https://example.com> or <user@example.com>, grounded on
// classic blackfriday's tagLength.
func leftAngle(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	kind, end := tagLength(span)
	if end <= 2 {
		return 0, nil
	}
	if kind != AutolinkNone && p.extensions&Autolink != 0 {
		node := p.addChild(LinkAuto, 0)
		node.AutolinkDest = unescapeBytes(span[1 : end-1])
		node.AutolinkKind = kind
		return end, node
	}
	node := p.addChild(RawHTML, 0)
	node.Literal = append([]byte{}, span[:end]...)
	return end, node
}

// tagLength scans a leading '<' for either a bracketed autolink
// (<scheme:...> or <user@host>) or a plain HTML tag, returning which kind
// it found (AutolinkNone for a plain tag) and the total length including
// both angle brackets.
func tagLength(data []byte) (AutolinkType, int) {
	if len(data) < 3 || data[0] != '<' {
		return AutolinkNone, 0
	}

	i := 1
	if data[1] == '/' {
		i = 2
	}
	if i >= len(data) || !isalnum(data[i]) {
		return AutolinkNone, 0
	}
	for i < len(data) && (isalnum(data[i]) || data[i] == '.' || data[i] == '+' || data[i] == '-') {
		i++
	}

	if i > 1 && i < len(data) && data[i] == '@' {
		if j := isMailtoAutoLink(data[i:]); j > 0 {
			return AutolinkEmail, i + j
		}
	}

	if i > 2 && i < len(data) && data[i] == ':' {
		j := i + 1
		for j < len(data) {
			if data[j] == '\\' {
				j += 2
				continue
			}
			if data[j] == '>' || data[j] == '\'' || data[j] == '"' || isspace(data[j]) {
				break
			}
			j++
		}
		if j < len(data) && j > i+1 && data[j] == '>' {
			return AutolinkNormal, j + 1
		}
	}

	for i < len(data) && data[i] != '>' {
		i++
	}
	if i >= len(data) {
		return AutolinkNone, 0
	}
	return AutolinkNone, i + 1
}

// isMailtoAutoLink reports whether data, which begins with '@', continues
// with a plausible domain and closing '>', returning the length from '@'
// through and including '>' — 0 if it doesn't look like one.
func isMailtoAutoLink(data []byte) int {
	i := 1
	nb := 0
	for i < len(data) && (isalnum(data[i]) || data[i] == '.' || data[i] == '-' || data[i] == '_') {
		if isalnum(data[i]) {
			nb++
		}
		i++
	}
	if i >= len(data) || data[i] != '>' || nb == 0 {
		return 0
	}
	return i + 1
}

// matchURLScheme reports a bare "scheme://..." autolink starting at the
// front of span, grounded on classic blackfriday's inlineAutoLink scan
// but triggered forward from the scheme's first letter (our dispatch
// table registers 'h'/'m'/'f'/'w' and their uppercase forms) rather than
// backward from ':'.
func matchURLScheme(span []byte) (AutolinkType, int, bool) {
	schemes := []struct {
		prefix string
		kind   AutolinkType
	}{
		{"http://", AutolinkNormal},
		{"https://", AutolinkNormal},
		{"ftp://", AutolinkNormal},
		{"mailto://", AutolinkEmail},
	}
	for _, s := range schemes {
		n := len(s.prefix)
		if len(span) > n && strings.EqualFold(string(span[:n]), s.prefix) && isalnum(span[n]) {
			return s.kind, scanURLEnd(span), true
		}
	}
	return AutolinkNone, 0, false
}

// matchWWW reports a bare "www.host..." autolink with no scheme.
func matchWWW(span []byte) (int, bool) {
	if len(span) > 4 && strings.EqualFold(string(span[:4]), "www.") && isalnum(span[4]) {
		return scanURLEnd(span), true
	}
	return 0, false
}

// matchBareEmail looks both ways from a bare '@' at data[offset]: rewind
// counts the local-part bytes immediately to its left (already emitted
// as plain text by the time this runs), fwd counts '@' plus the domain
// to its right. ok is false unless a domain with at least one '.' and a
// non-empty local part are both present.
func matchBareEmail(data []byte, offset int) (rewind, fwd int, ok bool) {
	for offset-rewind > 0 && rewind < 64 {
		c := data[offset-rewind-1]
		if isalnum(c) || c == '.' || c == '_' || c == '-' || c == '+' {
			rewind++
		} else {
			break
		}
	}
	if rewind == 0 {
		return 0, 0, false
	}

	i := offset + 1
	domBeg := i
	for i < len(data) && (isalnum(data[i]) || data[i] == '.' || data[i] == '-') {
		i++
	}
	for i > domBeg && data[i-1] == '.' {
		i--
	}
	if i == domBeg {
		return 0, 0, false
	}
	hasDot := false
	for _, c := range data[domBeg:i] {
		if c == '.' {
			hasDot = true
			break
		}
	}
	if !hasDot {
		return 0, 0, false
	}
	return rewind, i - offset, true
}

// scanURLEnd trims a scanned URL's trailing punctuation and any unbalanced
// closing bracket/quote, so "(see http://example.com)." ends the autolink
// before the sentence's own closing paren and period.
func scanURLEnd(data []byte) int {
	end := 0
	for end < len(data) && !isspace(data[end]) {
		end++
	}
	for end > 0 && (data[end-1] == '.' || data[end-1] == ',' || data[end-1] == ';') {
		end--
	}

	var open byte
	if end > 0 {
		switch data[end-1] {
		case '"':
			open = '"'
		case '\'':
			open = '\''
		case ')':
			open = '('
		case ']':
			open = '['
		case '}':
			open = '{'
		}
	}
	if open != 0 {
		depth := 1
		for j := end - 2; j >= 0 && data[j] != '\n' && depth > 0; j-- {
			switch {
			case data[j] == open:
				depth--
			case data[j] == data[end-1]:
				depth++
			}
		}
		if depth > 0 {
			end--
		}
	}
	return end
}

// emitBareAutolink produces the LinkAuto node for a bare autolink match.
// rewind bytes of already-flushed plain text immediately preceding
// offset are retracted into the autolink (the local part of a bare
// email); consumedForward bytes starting at offset are claimed from the
// unscanned remainder.
func emitBareAutolink(p *Markdown, data []byte, offset, consumedForward int, kind AutolinkType, rewind int) (int, *Node) {
	if rewind > 0 {
		p.trimTrailingBytes(rewind)
	}
	full := data[offset-rewind : offset+consumedForward]
	node := p.addChild(LinkAuto, 0)
	node.AutolinkDest = append([]byte{}, full...)
	node.AutolinkKind = kind
	return consumedForward, node
}

// maybeAutoLink is registered on the first letter of each bare-autolink
// scheme ('h', 'm', 'f', 'w' and uppercase forms) and on '@'.
func maybeAutoLink(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	if kind, end, ok := matchURLScheme(span); ok && end > 0 {
		return emitBareAutolink(p, data, offset, end, kind, 0)
	}
	if end, ok := matchWWW(span); ok && end > 0 {
		return emitBareAutolink(p, data, offset, end, AutolinkNormal, 0)
	}
	if data[offset] == '@' {
		if rewind, fwd, ok := matchBareEmail(data, offset); ok {
			return emitBareAutolink(p, data, offset, fwd, AutolinkEmail, rewind)
		}
	}
	return 0, nil
}
