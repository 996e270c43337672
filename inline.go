// Blackfriday Markdown Processor
// Available at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.

package coremark

import "bytes"

// escapeChars is the set a backslash may escape (spec.md §4.7).
var escapeChars = []byte("\\`*_{}[]()#+-.!:|&<>^~=\"$")

// inline runs the C7 active-character scan over data, appending the nodes
// it produces as children of parent. It is the inline-pass equivalent of
// block's dispatch loop: plain runs are flushed as NormalText, and any
// byte with a registered inlineCallback is handed to that callback at the
// triggering offset.
//
// parent's existing p.tip is saved and restored around the call so a
// recursive call (an emphasis or link handler parsing its own inner text)
// can reuse the same addChild/canContain machinery — including depth
// tracking — that the block pass uses.
func (p *Markdown) inline(parent *Node, data []byte) {
	if p.depthExceeded {
		return
	}
	saveTip := p.tip
	p.tip = parent

	i := 0
	for i < len(data) {
		end := i
		for end < len(data) && p.inlineCallback[data[end]] == nil {
			end++
		}
		if end > i {
			p.flushText(data[i:end])
		}
		if end >= len(data) {
			break
		}

		parser := p.inlineCallback[data[end]]
		consumed, _ := parser(p, data, end)
		if consumed == 0 {
			p.flushText(data[end : end+1])
			i = end + 1
		} else {
			i = end + consumed
		}
		p.tip = parent
		if p.depthExceeded {
			break
		}
	}

	p.tip = saveTip
}

// flushText appends a NormalText leaf for a run of plain text. It is a
// no-op for an empty run, so callers never need to guard the call.
func (p *Markdown) flushText(data []byte) {
	if len(data) == 0 {
		return
	}
	node := p.addChild(NormalText, 0)
	node.Literal = append([]byte{}, data...)
}

// trimTrailingSpaces strips trailing ' ' bytes from the NormalText node
// that immediately precedes the current cursor, used by a hard line break
// to drop the two marker spaces that preceded it.
func (p *Markdown) trimTrailingSpaces() {
	target := p.tip
	if target.Type != NormalText {
		target = target.LastChild
	}
	if target != nil && target.Type == NormalText {
		target.Literal = bytes.TrimRight(target.Literal, " ")
	}
}

// trimTrailingBytes drops the last n bytes from the run of NormalText
// nodes that precedes the cursor, unlinking any node it empties, used to
// retract a backslash that turned out to start a CommonMark line break, or
// a bare email's local part that a later '@' claims.
func (p *Markdown) trimTrailingBytes(n int) {
	target := p.tip
	if target.Type != NormalText {
		target = target.LastChild
	}
	for n > 0 && target != nil && target.Type == NormalText {
		if n < len(target.Literal) {
			target.Literal = target.Literal[:len(target.Literal)-n]
			return
		}
		n -= len(target.Literal)
		prev := target.Prev
		if p.tip == target {
			p.tip = target.Parent
		}
		target.Unlink()
		target = prev
	}
}

// maybeLineBreak is registered on ' ': two spaces immediately before a
// newline make a hard break (spec.md §4.7).
func maybeLineBreak(p *Markdown, data []byte, offset int) (int, *Node) {
	if offset+2 >= len(data) || data[offset+1] != ' ' || data[offset+2] != '\n' {
		return 0, nil
	}
	node := p.addChild(Linebreak, 0)
	return 3, node
}

// lineBreak is registered on '\n'. It catches the two cases maybeLineBreak
// cannot see itself: the CommonMark backslash line break, and a defensive
// fallback for a double space that reached here unconsumed.
func lineBreak(p *Markdown, data []byte, offset int) (int, *Node) {
	if p.extensions&CommonMark != 0 && offset >= 1 && data[offset-1] == '\\' {
		p.trimTrailingBytes(1)
		node := p.addChild(Linebreak, 0)
		return 1, node
	}
	if offset >= 2 && data[offset-1] == ' ' && data[offset-2] == ' ' {
		p.trimTrailingSpaces()
		node := p.addChild(Linebreak, 0)
		return 1, node
	}
	return 0, nil
}

// escape unescapes a single backslash-escaped punctuation byte, or — when
// Math is enabled — opens a \(...\) / \[...\] math span (spec.md §4.7's
// math-and-escape combination).
func escape(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	if len(span) < 2 {
		return 0, nil
	}
	if p.extensions&Math != 0 && (span[1] == '(' || span[1] == '[') {
		if consumed, node := mathEscapeSpan(p, span); consumed > 0 {
			return consumed, node
		}
	}
	if bytes.IndexByte(escapeChars, span[1]) < 0 {
		return 0, nil
	}
	node := p.addChild(NormalText, 0)
	node.Literal = append([]byte{}, span[1])
	return 2, node
}

// mathEscapeSpan matches \(...\) (inline math) or \[...\] (display math).
func mathEscapeSpan(p *Markdown, span []byte) (int, *Node) {
	display := span[1] == '['
	closer := byte(')')
	if display {
		closer = ']'
	}
	i := 2
	for i+1 < len(span) && !(span[i] == '\\' && span[i+1] == closer) {
		i++
	}
	if i+1 >= len(span) {
		return 0, nil
	}
	nodeType := MathInline
	if display {
		nodeType = MathBlock
	}
	node := p.addChild(nodeType, 0)
	node.Literal = append([]byte{}, span[2:i]...)
	return i + 2, node
}

// entity matches an HTML/XML numeric or named character reference.
func entity(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	end := 1
	if end < len(span) && span[end] == '#' {
		end++
	}
	start := end
	for end < len(span) && isalnum(span[end]) {
		end++
	}
	if end == start || end >= len(span) || span[end] != ';' {
		return 0, nil
	}
	end++
	node := p.addChild(Entity, 0)
	node.Literal = append([]byte{}, span[:end]...)
	return end, node
}

// codespan matches a run of N backticks, its content, and the first run
// of N backticks that closes it, grounded on classic blackfriday's
// inlineCodeSpan: interior leading/trailing whitespace is trimmed so a
// codespan can itself contain a literal backtick (`` `x` ``).
func codespan(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	nb := 0
	for nb < len(span) && span[nb] == '`' {
		nb++
	}

	end, i := nb, 0
	for ; end < len(span) && i < nb; end++ {
		if span[end] == '`' {
			i++
		} else {
			i = 0
		}
	}
	if i < nb && end >= len(span) {
		return 0, nil
	}

	fBegin := nb
	for fBegin < end && (span[fBegin] == ' ' || span[fBegin] == '\t') {
		fBegin++
	}
	fEnd := end - nb
	for fEnd > fBegin && (span[fEnd-1] == ' ' || span[fEnd-1] == '\t') {
		fEnd--
	}

	node := p.addChild(Codespan, 0)
	if fBegin < fEnd {
		node.Literal = append([]byte{}, span[fBegin:fEnd]...)
	}
	return end, node
}

// mathInline matches $...$ / $$...$$, producing MathInline or MathBlock.
func mathInline(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	if len(span) < 2 {
		return 0, nil
	}
	display := span[1] == '$'
	delimLen := 1
	if display {
		delimLen = 2
	}
	i := delimLen
	for i < len(span) {
		if span[i] == '$' && (!display || (i+1 < len(span) && span[i+1] == '$')) {
			break
		}
		i++
	}
	if i >= len(span) {
		return 0, nil
	}
	content := span[delimLen:i]
	consumed := i + delimLen

	nodeType := MathInline
	if display {
		nodeType = MathBlock
	}
	node := p.addChild(nodeType, 0)
	node.Literal = append([]byte{}, content...)
	return consumed, node
}

// superscript matches ^text^ or ^(balanced text)^. The closing '^' is
// consumed when present but is not required.
func superscript(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	if len(span) < 2 {
		return 0, nil
	}
	if span[1] == '(' {
		depth := 1
		i := 2
		for i < len(span) && depth > 0 {
			switch span[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			i++
		}
		if depth != 0 {
			return 0, nil
		}
		node := p.addChild(Superscript, 0)
		p.inline(node, span[2:i-1])
		if i < len(span) && span[i] == '^' {
			i++
		}
		return i, node
	}

	i := 1
	for i < len(span) && !isspace(span[i]) && span[i] != '^' {
		i++
	}
	if i == 1 {
		return 0, nil
	}
	node := p.addChild(Superscript, 0)
	node.Literal = append([]byte{}, span[1:i]...)
	if i < len(span) && span[i] == '^' {
		i++
	}
	return i, node
}

//
// Emphasis family: *em*, **strong**, ***strong em***, ~~strike~~, ==mark==
//
// This is the classic skip-aware scan (spec.md §4.7), not a delimiter
// stack: inlineHelperFindEmphChar jumps over codespans and bracketed
// links while hunting for a closing run of the same marker.
//

func emphasis(p *Markdown, data []byte, offset int) (int, *Node) {
	span := data[offset:]
	c := span[0]

	if len(span) > 2 && span[1] != c {
		if c == '~' || c == '=' || isspace(span[1]) {
			return 0, nil
		}
		if ret := inlineHelperEmph1(p, span[1:], c); ret > 0 {
			return ret + 1, nil
		}
		return 0, nil
	}

	if len(span) > 3 && span[1] == c && span[2] != c {
		if isspace(span[2]) {
			return 0, nil
		}
		if ret := inlineHelperEmph2(p, span[2:], c); ret > 0 {
			return ret + 2, nil
		}
		return 0, nil
	}

	if len(span) > 4 && span[1] == c && span[2] == c && span[3] != c {
		if c == '~' || c == '=' || isspace(span[3]) {
			return 0, nil
		}
		if ret := inlineHelperEmph3(p, span, 3, c); ret > 0 {
			return ret + 3, nil
		}
		return 0, nil
	}

	return 0, nil
}

// inlineHelperFindEmphChar scans data for the next occurrence of c,
// jumping over `codespans` and [bracketed links] so an emphasis marker
// inside either is never mistaken for the closing delimiter.
func inlineHelperFindEmphChar(data []byte, c byte) int {
	i := 0
	for i < len(data) {
		for i < len(data) && data[i] != c && data[i] != '`' && data[i] != '[' {
			i++
		}
		if i >= len(data) {
			return 0
		}
		if data[i] == c {
			return i
		}

		if data[i] == '`' {
			nb := 0
			for i < len(data) && data[i] == '`' {
				nb++
				i++
			}
			for end := 0; i < len(data) && end < nb; i++ {
				if data[i] == '`' {
					end++
				} else {
					end = 0
				}
			}
			if i >= len(data) {
				return 0
			}
			continue
		}

		if data[i] == '[' {
			depth := 1
			i++
			for i < len(data) && depth > 0 {
				switch data[i] {
				case '[':
					depth++
				case ']':
					depth--
				}
				i++
			}
			continue
		}
	}
	return 0
}

func inlineHelperEmph1(p *Markdown, data []byte, c byte) int {
	i := 0
	for i < len(data) {
		length := inlineHelperFindEmphChar(data[i:], c)
		if length == 0 {
			return 0
		}
		i += length
		if i >= len(data) {
			return 0
		}
		if i+1 < len(data) && data[i+1] == c {
			i++
			continue
		}
		if data[i] == c && !isspace(data[i-1]) {
			if p.extensions&NoIntraEmphasis != 0 {
				if !(i+1 == len(data) || isspace(data[i+1]) || ispunct(data[i+1])) {
					i++
					continue
				}
			}
			node := p.addChild(Emphasis, 0)
			p.inline(node, data[:i])
			return i + 1
		}
		i++
	}
	return 0
}

func inlineHelperEmph2(p *Markdown, data []byte, c byte) int {
	nodeType := DoubleEmphasis
	switch c {
	case '~':
		nodeType = Strikethrough
	case '=':
		nodeType = Highlight
	}

	i := 0
	for i < len(data) {
		length := inlineHelperFindEmphChar(data[i:], c)
		if length == 0 {
			return 0
		}
		i += length
		if i+1 < len(data) && data[i] == c && data[i+1] == c && i > 0 && !isspace(data[i-1]) {
			node := p.addChild(nodeType, 0)
			p.inline(node, data[:i])
			return i + 2
		}
		i++
	}
	return 0
}

func inlineHelperEmph3(p *Markdown, data []byte, offset int, c byte) int {
	origData := data
	span := data[offset:]
	i := 0
	for i < len(span) {
		length := inlineHelperFindEmphChar(span[i:], c)
		if length == 0 {
			return 0
		}
		i += length
		if i >= len(span) || span[i] != c || isspace(span[i-1]) {
			i++
			continue
		}

		switch {
		case i+2 < len(span) && span[i+1] == c && span[i+2] == c:
			node := p.addChild(TripleEmphasis, 0)
			p.inline(node, span[:i])
			return i + 3
		case i+1 < len(span) && span[i+1] == c:
			length = inlineHelperEmph1(p, origData[offset-2:], c)
			if length == 0 {
				return 0
			}
			return length - 2
		default:
			length = inlineHelperEmph2(p, origData[offset-1:], c)
			if length == 0 {
				return 0
			}
			return length - 1
		}
	}
	return 0
}

//
// Links, images, footnote references and metadata references — all
// bracket-led, so they share one scanner.
//

func link(p *Markdown, data []byte, offset int) (int, *Node) {
	return linkOrImage(p, data, offset, false)
}

func maybeImage(p *Markdown, data []byte, offset int) (int, *Node) {
	if offset+1 >= len(data) || data[offset+1] != '[' {
		return 0, nil
	}
	consumed, node := linkOrImage(p, data, offset+1, true)
	if consumed == 0 {
		return 0, nil
	}
	return consumed + 1, node
}

// linkOrImage is the shared bracket-matching scanner grounded on classic
// blackfriday's inlineLink: it locates the closing ']', then dispatches
// on what follows — "(dest "title")", "[ref]", or nothing (a shortcut
// reference using the bracketed text itself as the id).
func linkOrImage(p *Markdown, data []byte, offset int, isImg bool) (int, *Node) {
	span := data[offset:]
	if len(span) < 2 || span[0] != '[' {
		return 0, nil
	}
	if !isImg && p.insideLink {
		return 0, nil
	}

	if !isImg && len(span) > 1 {
		switch span[1] {
		case '^':
			if p.extensions&Footnotes != 0 {
				return footnoteRef(p, span)
			}
		case '%':
			if p.extensions&Metadata != 0 {
				return metaRefInline(p, span)
			}
		}
	}

	i := 1
	textHasNL := false
	level := 1
	for ; level > 0 && i < len(span); i++ {
		switch {
		case span[i] == '\n':
			textHasNL = true
		case i > 0 && span[i-1] == '\\':
			continue
		case span[i] == '[':
			level++
		case span[i] == ']':
			level--
			if level <= 0 {
				i--
			}
		}
	}
	if i >= len(span) {
		return 0, nil
	}
	txtEnd := i
	i++

	for i < len(span) && isspace(span[i]) {
		i++
	}

	var linkDest, linkTitle []byte
	haveDest := false

	switch {
	case i < len(span) && span[i] == '(':
		i++
		for i < len(span) && isspace(span[i]) {
			i++
		}
		linkBeg := i
		for i < len(span) {
			if span[i] == '\\' {
				i += 2
				continue
			}
			if span[i] == ')' || span[i] == '\'' || span[i] == '"' {
				break
			}
			i++
		}
		if i >= len(span) {
			return 0, nil
		}
		linkEndPos := i
		var titleBeg, titleEnd int
		if span[i] == '\'' || span[i] == '"' {
			i++
			titleBeg = i
			for i < len(span) {
				if span[i] == '\\' {
					i += 2
					continue
				}
				if span[i] == ')' {
					break
				}
				i++
			}
			if i >= len(span) {
				return 0, nil
			}
			titleEnd = i
			for titleEnd > titleBeg && isspace(span[titleEnd-1]) {
				titleEnd--
			}
			if titleEnd <= titleBeg || (span[titleEnd-1] != '\'' && span[titleEnd-1] != '"') {
				titleBeg, titleEnd = 0, 0
			} else {
				titleEnd--
			}
		}
		for i < len(span) && span[i] != ')' {
			i++
		}
		if i >= len(span) {
			return 0, nil
		}
		for linkEndPos > linkBeg && isspace(span[linkEndPos-1]) {
			linkEndPos--
		}
		if linkBeg < linkEndPos && span[linkBeg] == '<' {
			linkBeg++
		}
		if linkEndPos > linkBeg && span[linkEndPos-1] == '>' {
			linkEndPos--
		}
		if linkEndPos > linkBeg {
			linkDest = span[linkBeg:linkEndPos]
		}
		if titleEnd > titleBeg {
			linkTitle = span[titleBeg:titleEnd]
		}
		haveDest = true
		i++

	case i < len(span) && span[i] == '[':
		i++
		idBeg := i
		for i < len(span) && span[i] != ']' {
			i++
		}
		if i >= len(span) {
			return 0, nil
		}
		idEnd := i
		var id []byte
		if idBeg == idEnd {
			id = referenceID(span, textHasNL, txtEnd)
		} else {
			id = span[idBeg:idEnd]
		}
		ref := lookupReference(p.refs, id)
		if ref == nil {
			return 0, nil
		}
		linkDest, linkTitle = ref.link, ref.title
		haveDest = true
		i++

	default:
		id := referenceID(span, textHasNL, txtEnd)
		ref := lookupReference(p.refs, id)
		if ref == nil {
			return 0, nil
		}
		linkDest, linkTitle = ref.link, ref.title
		haveDest = true
		i = txtEnd + 1
	}

	if !haveDest {
		return 0, nil
	}

	var node *Node
	if isImg {
		node = p.addChild(ImageNode, 0)
		node.LinkDest = unescapeBytes(linkDest)
		node.LinkTitle = append([]byte{}, linkTitle...)
		if txtEnd > 1 {
			node.ImageAlt = append([]byte{}, span[1:txtEnd]...)
		}
		if p.extensions&ImageExtensions != 0 && i < len(span) {
			if n, width, height, hasW, hasH := parseImageAttrs(span[i:]); n > 0 {
				node.ImageWidth, node.HasWidth = width, hasW
				node.ImageHeight, node.HasHeight = height, hasH
				i += n
			}
		}
	} else {
		node = p.addChild(Link, 0)
		node.LinkDest = unescapeBytes(linkDest)
		node.LinkTitle = append([]byte{}, linkTitle...)
		if txtEnd > 1 {
			p.insideLink = true
			p.inline(node, span[1:txtEnd])
			p.insideLink = false
		}
	}

	return i, node
}

// referenceID builds the lookup key for a shortcut or collapsed reference
// link: the bracketed text itself, with any embedded newline folded to a
// single space the way a reference label is normalized for matching.
func referenceID(span []byte, textHasNL bool, txtEnd int) []byte {
	if !textHasNL {
		return span[1:txtEnd]
	}
	var b bytes.Buffer
	for j := 1; j < txtEnd; j++ {
		switch {
		case span[j] != '\n':
			b.WriteByte(span[j])
		case j == 0 || span[j-1] != ' ':
			b.WriteByte(' ')
		}
	}
	return b.Bytes()
}

// unescapeBytes removes the backslash from any backslash-escaped byte in
// a link destination, where the inline pass's usual escape() handler
// never runs because destinations are consumed whole by linkOrImage.
func unescapeBytes(src []byte) []byte {
	if bytes.IndexByte(src, '\\') < 0 {
		return append([]byte{}, src...)
	}
	var out bytes.Buffer
	i := 0
	for i < len(src) {
		start := i
		for i < len(src) && src[i] != '\\' {
			i++
		}
		if i > start {
			out.Write(src[start:i])
		}
		if i+1 >= len(src) {
			if i < len(src) {
				out.WriteByte(src[i])
			}
			break
		}
		out.WriteByte(src[i+1])
		i += 2
	}
	return out.Bytes()
}

// parseImageAttrs matches a trailing "{width=... height=...}" block
// (ImageExtensions, spec.md §4.7).
func parseImageAttrs(data []byte) (consumed int, width, height string, hasWidth, hasHeight bool) {
	i := 0
	for i < len(data) && data[i] == ' ' {
		i++
	}
	if i >= len(data) || data[i] != '{' {
		return 0, "", "", false, false
	}
	start := i
	i++
	for i < len(data) && data[i] != '}' {
		i++
	}
	if i >= len(data) {
		return 0, "", "", false, false
	}
	body := data[start+1 : i]
	i++

	for _, field := range bytes.Fields(body) {
		kv := bytes.SplitN(field, []byte("="), 2)
		if len(kv) != 2 {
			continue
		}
		switch string(kv[0]) {
		case "width":
			width, hasWidth = string(kv[1]), true
		case "height":
			height, hasHeight = string(kv[1]), true
		}
	}
	return i, width, height, hasWidth, hasHeight
}

// footnoteRef handles "[^id]". A second reference to an id already used
// earlier in the document falls back to literal text (spec.md §9's open
// question on repeated footnote references): only the first occurrence
// earns the FootnoteRef node and the next ordinal.
func footnoteRef(p *Markdown, span []byte) (int, *Node) {
	i := 2
	idBeg := i
	for i < len(span) && span[i] != ']' && span[i] != '\n' {
		i++
	}
	if i >= len(span) || span[i] != ']' {
		return 0, nil
	}
	id := span[idBeg:i]
	consumed := i + 1

	note := lookupFootnote(p.footnotes, id)
	if note == nil {
		return 0, nil
	}
	if note.isUsed {
		if p.logger != nil {
			p.logger.Debug("repeated footnote reference emitted as text", "id", string(id))
		}
		node := p.addChild(NormalText, 0)
		node.Literal = append([]byte{}, span[:consumed]...)
		return consumed, node
	}

	note.isUsed = true
	p.footnoteOrdinal++
	note.ordinal = p.footnoteOrdinal

	node := p.addChild(FootnoteRef, 0)
	node.FootnoteNum = note.ordinal
	return consumed, node
}

// metaRefInline handles "[%key]": the key is normalized exactly as a
// metadata block's own keys are and looked up in the merged meta list,
// inlining its value as plain text.
func metaRefInline(p *Markdown, span []byte) (int, *Node) {
	i := 2
	keyBeg := i
	for i < len(span) && span[i] != ']' && span[i] != '\n' {
		i++
	}
	if i >= len(span) || span[i] != ']' {
		return 0, nil
	}
	key := normalizeMetaKey(span[keyBeg:i])
	consumed := i + 1

	entry := lookupMeta(p.meta, key)
	if entry == nil {
		return 0, nil
	}
	node := p.addChild(NormalText, 0)
	node.Literal = append([]byte{}, entry.value...)
	return consumed, node
}
