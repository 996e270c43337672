//
// Blackfriday Markdown Processor
// Available at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.
//

//
// Functions to parse block-level elements (C6).
//

package coremark

import (
	"bytes"
	"strings"
)

// block parses block-level data. This function and many that it calls
// assume the input buffer ends with a newline (guaranteed by preprocess).
// It is called recursively for blockquote and list item bodies, so nesting
// is tracked through addChild/finalize rather than here.
func (p *Markdown) block(data []byte) {
	for len(data) > 0 && !p.depthExceeded {
		// blank lines: returns the # of bytes to skip
		if i := p.isEmpty(data); i > 0 {
			data = data[i:]
			continue
		}

		// ATX header: # .. ######
		if i := p.atxHeader(data); i > 0 {
			data = data[i:]
			continue
		}

		// HTML block
		if i := p.htmlBlock(data); i > 0 {
			data = data[i:]
			continue
		}

		// horizontal rule
		if p.isHRule(data) {
			p.addBlock(HorizontalRule, nil)
			var i int
			for i = 0; i < len(data) && data[i] != '\n'; i++ {
			}
			if i < len(data) {
				i++
			}
			data = data[i:]
			continue
		}

		// fenced code block
		if p.extensions&FencedCode != 0 {
			if i := p.fencedCodeBlock(data); i > 0 {
				data = data[i:]
				continue
			}
		}

		// table
		if p.extensions&Tables != 0 {
			if i := p.table(data); i > 0 {
				data = data[i:]
				continue
			}
		}

		// block quote
		if p.quotePrefix(data) > 0 {
			data = data[p.quote(data):]
			continue
		}

		// indented code block
		if p.extensions&NoCodeIndent == 0 {
			if p.codePrefix(data) > 0 {
				if i := p.code(data); i > 0 {
					data = data[i:]
					continue
				}
			}
		}

		// unordered list
		if p.uliPrefix(data) > 0 {
			data = data[p.list(data, 0):]
			continue
		}

		// definition list: standalone ": " line whose preceding sibling is
		// a one-line paragraph
		if p.extensions&DefinitionLists != 0 {
			if p.dliPrefix(data) > 0 {
				data = data[p.definitionList(data):]
				continue
			}
		}

		// ordered list
		if p.oliPrefix(data) > 0 {
			data = data[p.list(data, ListTypeOrdered):]
			continue
		}

		// anything else must look like a normal paragraph
		// note: this finds underlined (setext) headings and definition
		// lists reached by a preceding paragraph, too
		data = data[p.paragraph(data):]
	}
}

func (p *Markdown) addBlock(typ NodeType, content []byte) *Node {
	container := p.addChild(typ, 0)
	container.content = content
	return container
}

func (*Markdown) isEmpty(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	var i int
	for i = 0; i < len(data) && data[i] != '\n'; i++ {
		if data[i] != ' ' && data[i] != '\t' {
			return 0
		}
	}
	if i < len(data) && data[i] == '\n' {
		i++
	}
	return i
}

func (*Markdown) isHRule(data []byte) bool {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	if i >= len(data) {
		return false
	}
	if data[i] != '*' && data[i] != '-' && data[i] != '_' {
		return false
	}
	c := data[i]

	n := 0
	for i < len(data) && data[i] != '\n' {
		switch {
		case data[i] == c:
			n++
		case data[i] != ' ':
			return false
		}
		i++
	}
	return n >= 3
}

// atxHeader matches a `#`-prefixed header per spec.md §4.6 rule 1. In
// CommonMark mode a space (or end of line) must follow the hashes; outside
// CommonMark mode, any following byte is accepted, matching the looser
// classic behaviour.
func (p *Markdown) atxHeader(data []byte) int {
	level := 0
	for level < 6 && level < len(data) && data[level] == '#' {
		level++
	}
	if level == 0 || level >= len(data) {
		return 0
	}
	i := level
	if p.extensions&CommonMark != 0 {
		if i < len(data) && data[i] != ' ' && data[i] != '\n' {
			return 0
		}
	}
	for i < len(data) && data[i] == ' ' {
		i++
	}

	start := i
	lineEnd := i
	for lineEnd < len(data) && data[lineEnd] != '\n' {
		lineEnd++
	}
	end := lineEnd
	if end < len(data) {
		end++
	}

	textEnd := lineEnd
	for textEnd > start && data[textEnd-1] == ' ' {
		textEnd--
	}
	hashEnd := textEnd
	for hashEnd > start && data[hashEnd-1] == '#' {
		hashEnd--
	}
	if hashEnd < textEnd && (hashEnd == start || data[hashEnd-1] == ' ') {
		textEnd = hashEnd
		for textEnd > start && data[textEnd-1] == ' ' {
			textEnd--
		}
	}
	if textEnd < start {
		textEnd = start
	}

	header := p.addBlock(Header, data[start:textEnd])
	header.Level = level - 1
	return end
}

// isSetextUnderline reports whether data's first line is entirely '=' (a
// level-1 underline) or entirely '-' (level-2), ignoring trailing spaces.
func isSetextUnderline(data []byte) (level int, ok bool) {
	if len(data) == 0 {
		return 0, false
	}
	c := data[0]
	if c != '=' && c != '-' {
		return 0, false
	}
	i := 0
	for i < len(data) && data[i] == c {
		i++
	}
	for i < len(data) && data[i] == ' ' {
		i++
	}
	if i < len(data) && data[i] != '\n' {
		return 0, false
	}
	if c == '=' {
		return 1, true
	}
	return 2, true
}

var htmlBlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true,
	"basefont": true, "blockquote": true, "body": true, "caption": true,
	"center": true, "col": true, "colgroup": true, "dd": true,
	"details": true, "dialog": true, "dir": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "html": true, "iframe": true,
	"legend": true, "li": true, "link": true, "main": true, "menu": true,
	"menuitem": true, "nav": true, "noframes": true, "ol": true,
	"optgroup": true, "option": true, "p": true, "param": true,
	"pre": true, "script": true, "section": true, "style": true,
	"summary": true, "table": true, "tbody": true, "td": true,
	"textarea": true, "tfoot": true, "th": true, "thead": true,
	"title": true, "tr": true, "track": true, "ul": true,
	"ins": true, "del": true,
}

// htmlBlockOpen reports whether data opens an HTML block per spec.md §4.6
// rule 2: a comment, a self-closing <hr>, or a tag from the fixed
// block-level set.
func htmlBlockOpen(data []byte) (tag string, isComment bool, ok bool) {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	if i >= len(data) || data[i] != '<' {
		return "", false, false
	}
	i++
	if i+2 < len(data) && data[i] == '!' && data[i+1] == '-' && data[i+2] == '-' {
		return "", true, true
	}
	start := i
	for i < len(data) && (isletter(data[i]) || data[i] == '-') {
		i++
	}
	if i == start {
		return "", false, false
	}
	tag = strings.ToLower(string(data[start:i]))
	if tag == "hr" {
		return "hr", false, true
	}
	if !htmlBlockTags[tag] {
		return "", false, false
	}
	return tag, false, true
}

// htmlBlock implements spec.md §4.6 rule 2. Every tag is treated alike
// (<ins>/<del> get no separate handling): the block ends at the first line
// containing the closing tag, matched case-insensitively anywhere on the
// line, and one blank line after it is consumed when present. The closing
// tag need not be unindented or followed by a blank line. With no closing
// tag the block runs to the end of data.
func (p *Markdown) htmlBlock(data []byte) int {
	tag, isComment, ok := htmlBlockOpen(data)
	if !ok {
		return 0
	}

	if isComment {
		end := bytes.Index(data, []byte("-->"))
		lineEnd := len(data)
		if end >= 0 {
			lineEnd = end + 3
			for lineEnd < len(data) && data[lineEnd] != '\n' {
				lineEnd++
			}
		}
		if lineEnd < len(data) {
			lineEnd++
		}
		block := p.addBlock(HTMLBlock, nil)
		block.Literal = trimOneTrailingNL(data[:lineEnd])
		return lineEnd
	}

	if tag == "hr" {
		lineEnd := 0
		for lineEnd < len(data) && data[lineEnd] != '\n' {
			lineEnd++
		}
		if lineEnd < len(data) {
			lineEnd++
		}
		block := p.addBlock(HTMLBlock, nil)
		block.Literal = trimOneTrailingNL(data[:lineEnd])
		return lineEnd
	}

	closeTag := []byte("</" + tag + ">")
	i := 0
	for i < len(data) {
		lineStart := i
		lineEnd := i
		for lineEnd < len(data) && data[lineEnd] != '\n' {
			lineEnd++
		}
		line := bytes.ToLower(data[lineStart:lineEnd])
		if bytes.Contains(line, closeTag) {
			next := lineEnd
			if next < len(data) {
				next++
			}
			if next < len(data) {
				if n := p.isEmpty(data[next:]); n > 0 {
					next += n
				}
			}
			block := p.addBlock(HTMLBlock, nil)
			block.Literal = trimOneTrailingNL(data[:lineEnd])
			return next
		}
		i = lineEnd
		if i < len(data) {
			i++
		}
	}

	block := p.addBlock(HTMLBlock, nil)
	block.Literal = trimOneTrailingNL(data)
	return i
}

func trimOneTrailingNL(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return data[:len(data)-1]
	}
	return data
}

// isFenceLine reports whether data opens a fenced code block per spec.md
// §4.6 rule 5: ≥3 backticks or tildes, with an optional info string.
func isFenceLine(data []byte) (fenceChar byte, fenceLen int, lang string, ok bool) {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	if i >= len(data) {
		return
	}
	c := data[i]
	if c != '`' && c != '~' {
		return
	}
	start := i
	for i < len(data) && data[i] == c {
		i++
	}
	n := i - start
	if n < 3 {
		return
	}
	for i < len(data) && data[i] == ' ' {
		i++
	}
	infoStart := i
	infoEnd := i
	for infoEnd < len(data) && data[infoEnd] != '\n' {
		infoEnd++
	}
	info := bytes.TrimSpace(data[infoStart:infoEnd])
	info = bytes.Trim(info, "{}")
	info = bytes.TrimPrefix(info, []byte("."))
	tok := info
	if sp := bytes.IndexAny(info, " \t"); sp >= 0 {
		tok = info[:sp]
	}
	return c, n, string(tok), true
}

func closingFenceLength(line []byte, fenceChar byte, fenceLen int) int {
	i := 0
	for i < 3 && i < len(line) && line[i] == ' ' {
		i++
	}
	start := i
	for i < len(line) && line[i] == fenceChar {
		i++
	}
	n := i - start
	if n < fenceLen {
		return 0
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i != len(line) {
		return 0
	}
	return n
}

func (p *Markdown) fencedCodeBlock(data []byte) int {
	fenceChar, fenceLen, lang, ok := isFenceLine(data)
	if !ok {
		return 0
	}
	i := 0
	for i < len(data) && data[i] != '\n' {
		i++
	}
	if i < len(data) {
		i++
	}

	var work bytes.Buffer
	for i < len(data) {
		lineStart := i
		lineEnd := i
		for lineEnd < len(data) && data[lineEnd] != '\n' {
			lineEnd++
		}
		line := data[lineStart:lineEnd]
		if n := closingFenceLength(line, fenceChar, fenceLen); n > 0 {
			i = lineEnd
			if i < len(data) {
				i++
			}
			block := p.addBlock(BlockCode, nil)
			block.CodeText = work.Bytes()
			block.Lang = normalizeLang(lang)
			return i
		}
		work.Write(line)
		work.WriteByte('\n')
		i = lineEnd
		if i < len(data) {
			i++
		}
	}

	// unterminated fence: recovered per spec.md §7 MalformedConstruct —
	// the rest of the buffer becomes the code block's text instead of
	// failing the parse.
	block := p.addBlock(BlockCode, nil)
	block.CodeText = work.Bytes()
	block.Lang = normalizeLang(lang)
	if p.logger != nil {
		p.logger.Debug("unterminated fenced code block recovered as plain code")
	}
	return i
}

// codePrefix reports the indent width (4, or 0) of an indented-code-block
// line per spec.md §4.6 rule 8.
func (*Markdown) codePrefix(data []byte) int {
	if len(data) >= 4 && data[0] == ' ' && data[1] == ' ' && data[2] == ' ' && data[3] == ' ' {
		return 4
	}
	return 0
}

func (p *Markdown) code(data []byte) int {
	var work bytes.Buffer

	i := 0
	for i < len(data) {
		beg := i
		for i < len(data) && data[i] != '\n' {
			i++
		}
		if i < len(data) {
			i++
		}

		blankline := p.isEmpty(data[beg:i]) > 0
		if pre := p.codePrefix(data[beg:i]); pre > 0 {
			beg += pre
		} else if !blankline {
			i = beg
			break
		}

		if blankline {
			work.WriteByte('\n')
		} else {
			work.Write(data[beg:i])
		}
	}

	codeBytes := work.Bytes()
	for len(codeBytes) > 0 && codeBytes[len(codeBytes)-1] == '\n' {
		codeBytes = codeBytes[:len(codeBytes)-1]
	}
	if len(codeBytes) == 0 {
		return 0
	}
	codeBytes = append(codeBytes, '\n')

	block := p.addBlock(BlockCode, nil)
	block.CodeText = codeBytes
	return i
}

func (p *Markdown) table(data []byte) int {
	table := p.addBlock(Table, nil)
	i, columns := p.tableHeader(data)
	if i == 0 {
		p.tip = table.Parent
		table.Unlink()
		return 0
	}
	table.Columns = len(columns)

	p.addBlock(TableBody, nil)

	for i < len(data) {
		pipes, rowStart := 0, i
		for ; i < len(data) && data[i] != '\n'; i++ {
			if data[i] == '|' {
				pipes++
			}
		}

		if pipes == 0 {
			i = rowStart
			break
		}

		if i < len(data) && data[i] == '\n' {
			i++
		}
		p.tableRow(data[rowStart:i], columns, false)
	}

	return i
}

func isBackslashEscaped(data []byte, i int) bool {
	backslashes := 0
	for i-backslashes-1 >= 0 && data[i-backslashes-1] == '\\' {
		backslashes++
	}
	return backslashes&1 == 1
}

func (p *Markdown) tableHeader(data []byte) (size int, columns []CellAlignFlags) {
	i := 0
	colCount := 1
	for i = 0; i < len(data) && data[i] != '\n'; i++ {
		if data[i] == '|' && !isBackslashEscaped(data, i) {
			colCount++
		}
	}

	if colCount == 1 {
		return
	}

	j := i
	if j < len(data) && data[j] == '\n' {
		j++
	}
	header := data[:j]

	if data[0] == '|' {
		colCount--
	}
	if i > 2 && data[i-1] == '|' && !isBackslashEscaped(data, i-1) {
		colCount--
	}

	columns = make([]CellAlignFlags, colCount)

	i++
	if i >= len(data) {
		return
	}

	if data[i] == '|' && !isBackslashEscaped(data, i) {
		i++
	}
	i = skipChar(data, i, ' ')

	col := 0
	for i < len(data) && data[i] != '\n' {
		dashes := 0

		if data[i] == ':' {
			i++
			columns[col] |= TableAlignmentLeft
			dashes++
		}
		for i < len(data) && data[i] == '-' {
			i++
			dashes++
		}
		if i < len(data) && data[i] == ':' {
			i++
			columns[col] |= TableAlignmentRight
			dashes++
		}
		for i < len(data) && data[i] == ' ' {
			i++
		}
		if i == len(data) {
			return
		}
		switch {
		case dashes < 3:
			return

		case data[i] == '|' && !isBackslashEscaped(data, i):
			col++
			i++
			for i < len(data) && data[i] == ' ' {
				i++
			}
			if col >= colCount && i < len(data) && data[i] != '\n' {
				return
			}

		case (data[i] != '|' || isBackslashEscaped(data, i)) && col+1 < colCount:
			return

		case data[i] == '\n':
			col++

		default:
			return
		}
	}
	if col != colCount {
		return
	}

	p.addBlock(TableHead, nil)
	p.tableRow(header, columns, true)
	size = i
	if size < len(data) && data[size] == '\n' {
		size++
	}
	return
}

func (p *Markdown) tableRow(data []byte, columns []CellAlignFlags, header bool) {
	p.addBlock(TableRow, nil)
	i, col := 0, 0

	if len(data) > 0 && data[i] == '|' && !isBackslashEscaped(data, i) {
		i++
	}

	for col = 0; col < len(columns) && i < len(data); col++ {
		for i < len(data) && data[i] == ' ' {
			i++
		}

		cellStart := i

		for i < len(data) && (data[i] != '|' || isBackslashEscaped(data, i)) && data[i] != '\n' {
			i++
		}

		cellEnd := i
		i++

		for cellEnd > cellStart && cellEnd-1 < len(data) && data[cellEnd-1] == ' ' {
			cellEnd--
		}

		cell := p.addBlock(TableCell, data[cellStart:cellEnd])
		cell.IsHeader = header
		cell.Columns = len(columns)
		cell.Col = col
		cell.Align = columns[col]
		p.finalize(cell)
	}

	for ; col < len(columns); col++ {
		cell := p.addBlock(TableCell, nil)
		cell.IsHeader = header
		cell.Columns = len(columns)
		cell.Col = col
		cell.Align = columns[col]
		p.finalize(cell)
	}

	p.finalize(p.tip) // TableRow
}

func (p *Markdown) quotePrefix(data []byte) int {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	if i < len(data) && data[i] == '>' {
		if i+1 < len(data) && data[i+1] == ' ' {
			return i + 2
		}
		return i + 1
	}
	return 0
}

func (p *Markdown) terminateBlockquote(data []byte, beg, end int) bool {
	if p.isEmpty(data[beg:]) <= 0 {
		return false
	}
	if end >= len(data) {
		return true
	}
	return p.quotePrefix(data[end:]) == 0 && p.isEmpty(data[end:]) == 0
}

func (p *Markdown) quote(data []byte) int {
	block := p.addBlock(BlockQuote, nil)
	var raw bytes.Buffer
	beg, end := 0, 0
	for beg < len(data) {
		end = beg
		for end < len(data) && data[end] != '\n' {
			end++
		}
		if end < len(data) && data[end] == '\n' {
			end++
		}
		if pre := p.quotePrefix(data[beg:]); pre > 0 {
			beg += pre
		} else if p.terminateBlockquote(data, beg, end) {
			break
		}
		raw.Write(data[beg:end])
		beg = end
	}
	p.block(raw.Bytes())
	p.finalize(block)
	return end
}

func (p *Markdown) uliPrefix(data []byte) int {
	i := 0
	for i < len(data) && i < 3 && data[i] == ' ' {
		i++
	}
	if i >= len(data)-1 {
		return 0
	}
	if (data[i] != '*' && data[i] != '+' && data[i] != '-') ||
		(data[i+1] != ' ' && data[i+1] != '\t') {
		return 0
	}
	return i + 2
}

// oliPrefix matches an ordered-list marker per spec.md §4.6 rule 11: digits
// followed by '.' (or ')' in CommonMark mode). CommonMark mode additionally
// caps the marker at 9 digits.
func (p *Markdown) oliPrefix(data []byte) int {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}

	start := i
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		i++
	}
	digits := i - start
	if start == i || i >= len(data)-1 {
		return 0
	}
	if p.extensions&CommonMark != 0 && digits > 9 {
		return 0
	}

	marker := data[i]
	if marker != '.' && !(p.extensions&CommonMark != 0 && marker == ')') {
		return 0
	}
	if !(data[i+1] == ' ' || data[i+1] == '\t') {
		return 0
	}
	return i + 2
}

func (p *Markdown) dliPrefix(data []byte) int {
	if len(data) < 2 {
		return 0
	}
	i := 0
	if data[i] != ':' || !(data[i+1] == ' ' || data[i+1] == '\t') {
		return 0
	}
	for i < len(data) && data[i] == ' ' {
		i++
	}
	return i + 2
}

// definitionList implements spec.md §4.6 rule 10: the preceding sibling,
// if it is a one-line paragraph, is re-parented as the DEFINITION_TITLE of
// a new DEFINITION block; each ": "-prefixed line (with ≥4-space/tab
// continuations) becomes a DEFINITION_DATA child.
func (p *Markdown) definitionList(data []byte) int {
	def := p.addBlock(Definition, nil)
	reparentAsTitle(def)

	i := 0
	for i < len(data) {
		n := p.dliPrefix(data[i:])
		if n == 0 {
			break
		}
		lineStart := i + n
		lineEnd := lineStart
		for lineEnd < len(data) && data[lineEnd] != '\n' {
			lineEnd++
		}
		var raw bytes.Buffer
		raw.Write(data[lineStart:lineEnd])
		next := lineEnd
		if next < len(data) {
			next++
		}

		for next < len(data) {
			contN := indentWidth(data[next:], 4)
			if contN == 0 {
				break
			}
			ce := next + contN
			le := ce
			for le < len(data) && data[le] != '\n' {
				le++
			}
			raw.WriteByte('\n')
			raw.Write(data[ce:le])
			next = le
			if next < len(data) {
				next++
			}
		}

		dd := p.addChild(DefinitionData, 0)
		dd.content = raw.Bytes()
		p.finalize(dd)
		i = next
	}

	p.finalize(def)
	return i
}

// reparentAsTitle moves def's immediately preceding sibling — if it is a
// one-line paragraph — inside def and retypes it DefinitionTitle. Grounded
// on the teacher's finalizeList/addChild pair and on containers-podman's
// canNodeContain, which this generalises into a one-off re-parenting
// primitive rather than a containment check.
func reparentAsTitle(def *Node) *Node {
	prev := def.Prev
	if prev == nil || prev.Type != Paragraph {
		return nil
	}
	if bytes.Count(bytes.TrimRight(prev.content, "\n"), []byte{'\n'}) > 0 {
		return nil
	}
	prev.Unlink()
	prev.Type = DefinitionTitle
	def.AppendChild(prev)
	return prev
}

func (p *Markdown) list(data []byte, flags ListType) int {
	i := 0
	flags |= ListItemBeginningOfList
	block := p.addBlock(List, nil)
	block.ListFlags = flags
	block.Tight = true
	if flags&ListTypeOrdered != 0 {
		j := 0
		for j < 3 && j < len(data) && data[j] == ' ' {
			j++
		}
		k := j
		for k < len(data) && k-j < 9 && data[k] >= '0' && data[k] <= '9' {
			k++
		}
		block.ListStart = string(data[j:k])
	}

	for i < len(data) {
		skip := p.listItem(data[i:], &flags)
		if flags&ListItemContainsBlock != 0 {
			block.Tight = false
		}
		i += skip
		if skip == 0 || flags&ListItemEndOfList != 0 {
			break
		}
		flags &= ^ListItemBeginningOfList
	}

	above := block.Parent
	finalizeList(block)
	p.tip = above
	return i
}

func (p *Markdown) listTypeChanged(data []byte, flags *ListType) bool {
	if p.dliPrefix(data) > 0 && *flags&ListTypeDefinition == 0 {
		return true
	} else if p.oliPrefix(data) > 0 && *flags&ListTypeOrdered == 0 {
		return true
	} else if p.uliPrefix(data) > 0 && (*flags&ListTypeOrdered != 0 || *flags&ListTypeDefinition != 0) {
		return true
	}
	return false
}

func endsWithBlankLine(block *Node) bool {
	for block != nil {
		t := block.Type
		if t == List || t == Item {
			block = block.LastChild
		} else {
			break
		}
	}
	return false
}

func finalizeList(block *Node) {
	block.open = false
	item := block.FirstChild
	for item != nil {
		if endsWithBlankLine(item) && item.Next != nil {
			block.Tight = false
			break
		}
		subItem := item.FirstChild
		for subItem != nil {
			if endsWithBlankLine(subItem) && (item.Next != nil || subItem.Next != nil) {
				block.Tight = false
				break
			}
			subItem = subItem.Next
		}
		item = item.Next
	}
}

func (p *Markdown) listItem(data []byte, flags *ListType) int {
	itemIndent := 0
	if data[0] == '\t' {
		itemIndent += 4
	} else {
		for itemIndent < 3 && data[itemIndent] == ' ' {
			itemIndent++
		}
	}

	var bulletChar byte = '*'
	var delimiter byte = '.'
	i := p.uliPrefix(data)
	if i == 0 {
		if n := p.oliPrefix(data); n > 0 {
			i = n
			delimiter = data[n-2]
		}
	} else {
		bulletChar = data[i-2]
	}
	if i == 0 {
		i = p.dliPrefix(data)
		if i > 0 {
			*flags &= ^ListTypeTerm
		}
	}
	if i == 0 {
		if *flags&ListTypeDefinition != 0 {
			*flags |= ListTypeTerm
		} else {
			return 0
		}
	}

	for i < len(data) && data[i] == ' ' {
		i++
	}

	line := i
	for i > 0 && i < len(data) && data[i-1] != '\n' {
		i++
	}

	var raw bytes.Buffer
	raw.Write(data[line:i])
	line = i

	containsBlankLine := false
	sublist := 0

gatherlines:
	for line < len(data) {
		i++

		for i < len(data) && data[i-1] != '\n' {
			i++
		}

		if p.isEmpty(data[line:i]) > 0 {
			containsBlankLine = true
			line = i
			continue
		}

		indent := 0
		indentIndex := 0
		if data[line] == '\t' {
			indentIndex++
			indent += 4
		} else {
			for indent < 4 && line+indent < i && data[line+indent] == ' ' {
				indent++
				indentIndex++
			}
		}

		chunk := data[line+indentIndex : i]

		switch {
		case (p.uliPrefix(chunk) > 0 && !p.isHRule(chunk)) ||
			p.oliPrefix(chunk) > 0 ||
			p.dliPrefix(chunk) > 0:

			if indent <= itemIndent {
				if p.listTypeChanged(chunk, flags) {
					*flags |= ListItemEndOfList
				} else if containsBlankLine {
					*flags |= ListItemContainsBlock
				}
				break gatherlines
			}

			if containsBlankLine {
				*flags |= ListItemContainsBlock
			}

			if sublist == 0 {
				sublist = raw.Len()
			}

		case containsBlankLine && indent < 4:
			if *flags&ListTypeDefinition != 0 && i < len(data)-1 {
				next := i
				for next < len(data) && data[next] != '\n' {
					next++
				}
				for next < len(data)-1 && data[next] == '\n' {
					next++
				}
				if i < len(data)-1 && data[i] != ':' && data[next] != ':' {
					*flags |= ListItemEndOfList
				}
			} else {
				*flags |= ListItemEndOfList
			}
			break gatherlines

		case containsBlankLine:
			raw.WriteByte('\n')
			*flags |= ListItemContainsBlock
		}

		if containsBlankLine {
			containsBlankLine = false
			raw.WriteByte('\n')
		}

		raw.Write(data[line+indentIndex : i])

		line = i
	}

	rawBytes := raw.Bytes()

	block := p.addBlock(Item, nil)
	block.ListFlags = *flags
	block.Tight = false
	block.BulletChar = bulletChar
	block.Delimiter = delimiter

	if *flags&ListItemContainsBlock != 0 && *flags&ListTypeTerm == 0 {
		if sublist > 0 {
			p.block(rawBytes[:sublist])
			p.block(rawBytes[sublist:])
		} else {
			p.block(rawBytes)
		}
	} else {
		if sublist > 0 {
			child := p.addChild(Paragraph, 0)
			child.content = rawBytes[:sublist]
			p.finalize(child)
			p.block(rawBytes[sublist:])
		} else {
			child := p.addChild(Paragraph, 0)
			child.content = rawBytes
			p.finalize(child)
		}
	}
	p.finalize(block)
	return line
}

func (p *Markdown) renderParagraph(data []byte) {
	if len(data) == 0 {
		return
	}

	beg := 0
	for beg < len(data) && data[beg] == ' ' {
		beg++
	}

	end := len(data)
	if data[len(data)-1] == '\n' {
		end--
	}

	for end > beg && data[end-1] == ' ' {
		end--
	}

	p.addBlock(Paragraph, data[beg:end])
	p.finalize(p.tip)
}

// breakIntoDefinitionList renders the lines before at as an ordinary
// paragraph (if any), renders the single line [prev:at) as a candidate
// title paragraph, then parses the definition-list body starting at at —
// definitionList's reparentAsTitle call picks the candidate back up.
func (p *Markdown) breakIntoDefinitionList(data []byte, prev, at int) int {
	if prev > 0 {
		p.renderParagraph(data[:prev])
	}
	p.renderParagraph(data[prev:at])
	return at + p.definitionList(data[at:])
}

func (p *Markdown) paragraph(data []byte) int {
	var prev, line, i int
	for i < len(data) {
		prev = line
		current := data[i:]
		line = i

		if n := p.isEmpty(current); n > 0 {
			if p.extensions&DefinitionLists != 0 {
				if i < len(data)-1 && data[i+1] == ':' {
					return p.breakIntoDefinitionList(data, prev, i+n)
				}
			}
			p.renderParagraph(data[:i])
			return i + n
		}

		if level, ok := isSetextUnderline(current); ok && i > 0 {
			if prev < line {
				p.renderParagraph(data[:prev])
			}
			headerText := bytes.TrimRight(data[prev:line], "\n")
			header := p.addBlock(Header, headerText)
			header.Level = level - 1
			p.finalize(p.tip)

			end := line
			for end < len(data) && data[end] != '\n' {
				end++
			}
			if end < len(data) {
				end++
			}
			return end
		}

		if p.isHRule(current) {
			p.renderParagraph(data[:i])
			return i
		}

		if p.extensions&DefinitionLists != 0 {
			if p.dliPrefix(current) != 0 {
				return p.breakIntoDefinitionList(data, prev, line)
			}
		}

		if p.extensions&NoEmptyLineBeforeBlock != 0 {
			if p.uliPrefix(current) != 0 ||
				p.oliPrefix(current) != 0 ||
				p.quotePrefix(current) != 0 {
				p.renderParagraph(data[:i])
				return i
			}
		}

		nl := bytes.IndexByte(data[i:], '\n')
		if nl >= 0 {
			i += nl + 1
		} else {
			i += len(data[i:])
		}
	}

	p.renderParagraph(data[:i])
	return i
}

func skipChar(data []byte, start int, char byte) int {
	i := start
	for i < len(data) && data[i] == char {
		i++
	}
	return i
}
