// Blackfriday Markdown Processor
// Available at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.

package coremark

import (
	colog "github.com/coremark/coremark/log"
)

// Extensions is a bitwise-or'ed collection of the feature flags spec.md
// §6 describes. OR these values together to enable more than one.
type Extensions int

const (
	NoExtensions Extensions = 0

	// NoIntraEmphasis stops a single-marker emphasis (`*` or `_`) from
	// closing on a marker followed by anything other than whitespace,
	// punctuation or the end of the span (NOINTEM). The byte before the
	// opening marker is not checked, and double and triple markers are not
	// affected.
	NoIntraEmphasis Extensions = 1 << iota

	// Tables enables pipe-table parsing (TABLES).
	Tables

	// FencedCode enables ``` / ~~~ fenced code blocks (FENCED).
	FencedCode

	// Autolink enables detection of bare URLs/emails/www-hosts (AUTOLINK).
	Autolink

	// ExtStrikethrough enables ~~text~~ (STRIKE).
	ExtStrikethrough

	// ExtHighlight enables ==text== (HILITE).
	ExtHighlight

	// ExtSuperscript enables ^text^ (SUPER).
	ExtSuperscript

	// Math enables $...$ / $$...$$ inline and display math (MATH).
	Math

	// NoCodeIndent disables 4-space indented code blocks (NOCODEIND).
	NoCodeIndent

	// Metadata enables the leading key/value block (METADATA).
	Metadata

	// CommonMark tightens a handful of constructs towards CommonMark
	// semantics (ATX space requirement, ')' ordered-list marker, ≤9-digit
	// ordinals) (COMMONMARK).
	CommonMark

	// DefinitionLists enables ": " definition lists (DEFLIST).
	DefinitionLists

	// Footnotes enables [^id] / [^id]: definitions (FOOTNOTES).
	Footnotes

	// ImageExtensions enables the {width=... height=...} attribute block
	// following an image (IMG_EXT).
	ImageExtensions

	// NoEmptyLineBeforeBlock lets a list/quote start immediately after a
	// paragraph line with no blank line between them.
	NoEmptyLineBeforeBlock

	// CommonExtensions is a reasonable default bundle.
	CommonExtensions = Tables | FencedCode | Autolink | ExtStrikethrough |
		Footnotes | DefinitionLists | NoEmptyLineBeforeBlock
)

// ListType contains bitwise or'ed flags for list and list item nodes.
type ListType int

const (
	ListTypeOrdered ListType = 1 << iota
	ListTypeDefinition
	ListTypeTerm

	ListItemContainsBlock
	ListItemBeginningOfList
	ListItemEndOfList
)

// CellAlignFlags holds the alignment of a table cell.
type CellAlignFlags int

const (
	TableAlignmentLeft CellAlignFlags = 1 << iota
	TableAlignmentRight
	TableAlignmentCenter = TableAlignmentLeft | TableAlignmentRight
)

// inlineParser is the active-character dispatch table's callback type
// (C7): it is handed the full remaining span and the offset of the
// triggering byte, and returns how many bytes it consumed (0 ⇒ not a
// match) plus the node it produced, if any.
type inlineParser func(p *Markdown, data []byte, offset int) (int, *Node)

// Markdown holds the feature flags and transient parse state for a single
// Parse call. It is not safe for concurrent use — construct one New per
// goroutine, or reuse across sequential Parse calls (Parse resets the
// parse-local fields each time).
type Markdown struct {
	extensions     Extensions
	inlineCallback [256]inlineParser
	maxNesting     int
	insideLink     bool

	nesting       int
	depthExceeded bool
	nextID        int

	doc *Node
	tip *Node

	refs      []*reference
	footnotes []*footnoteEntry
	meta      []metaEntry
	metaQ     metadataQueues

	footnoteOrdinal int

	logger *colog.Logger
}

func (p *Markdown) finalize(block *Node) {
	above := block.Parent
	block.open = false
	p.tip = above
	if p.nesting > 0 {
		p.nesting--
	}
}

func (p *Markdown) addChild(node NodeType, offset uint32) *Node {
	return p.addExistingChild(NewNode(node), offset)
}

func (p *Markdown) addExistingChild(node *Node, offset uint32) *Node {
	for !p.tip.canContain(node.Type) {
		p.finalize(p.tip)
	}

	depth := 0
	for n := p.tip; n.Parent != nil; n = n.Parent {
		depth++
	}
	if p.maxNesting > 0 && depth >= p.maxNesting {
		p.depthExceeded = true
		if p.logger != nil {
			p.logger.Debug("max nesting depth exceeded, dropping construct", "type", node.Type.String(), "depth", depth)
		}
		return p.tip
	}

	node.ID = p.nextID
	p.nextID++
	p.tip.AppendChild(node)
	p.tip = node
	p.nesting++
	return node
}

// Option customizes a Markdown processor's behavior.
type Option func(*Markdown)

// WithExtensions sets the feature bitset. Multiple flags may be OR'ed.
func WithExtensions(e Extensions) Option {
	return func(p *Markdown) { p.extensions = e }
}

// WithMaxDepth overrides the default nesting-depth ceiling (128). 0 means
// unlimited — spec.md §6 calls this out as an explicit, documented choice,
// not an oversight.
func WithMaxDepth(n int) Option {
	return func(p *Markdown) { p.maxNesting = n }
}

// WithLogger attaches a logger for Debug-level parse traces (§9.1 of
// SPEC_FULL.md). A nil logger (the default) makes the parser a silent,
// pure function of its input.
func WithLogger(l *colog.Logger) Option {
	return func(p *Markdown) { p.logger = l }
}

// WithMetadata seeds the DEFAULTS queue: entries the document's own
// metadata block may override (spec.md §4.5).
func WithMetadata(entries map[string]string) Option {
	return func(p *Markdown) {
		for k, v := range entries {
			p.metaQ.defaults = append(p.metaQ.defaults, metaEntry{key: normalizeMetaKey([]byte(k)), value: []byte(v)})
		}
	}
}

// WithMetadataOverrides seeds the OVERRIDES queue: entries that win over
// whatever the document itself sets (spec.md §4.5).
func WithMetadataOverrides(entries map[string]string) Option {
	return func(p *Markdown) {
		for k, v := range entries {
			p.metaQ.overrides = append(p.metaQ.overrides, metaEntry{key: normalizeMetaKey([]byte(k)), value: []byte(v)})
		}
	}
}

// New constructs a Markdown processor. maxNesting defaults to 128 unless
// overridden with WithMaxDepth.
func New(opts ...Option) *Markdown {
	p := &Markdown{maxNesting: 128}
	for _, opt := range opts {
		opt(p)
	}
	p.insideLink = false

	p.inlineCallback[' '] = maybeLineBreak
	p.inlineCallback['*'] = emphasis
	p.inlineCallback['_'] = emphasis
	if p.extensions&ExtStrikethrough != 0 {
		p.inlineCallback['~'] = emphasis
	}
	if p.extensions&ExtHighlight != 0 {
		p.inlineCallback['='] = emphasis
	}
	if p.extensions&ExtSuperscript != 0 {
		p.inlineCallback['^'] = superscript
	}
	if p.extensions&Math != 0 {
		p.inlineCallback['$'] = mathInline
	}
	p.inlineCallback['\n'] = lineBreak
	p.inlineCallback['`'] = codespan
	p.inlineCallback['['] = link
	p.inlineCallback['!'] = maybeImage
	p.inlineCallback['\\'] = escape
	p.inlineCallback['&'] = entity
	p.inlineCallback['<'] = leftAngle
	if p.extensions&Autolink != 0 {
		p.inlineCallback['h'] = maybeAutoLink
		p.inlineCallback['m'] = maybeAutoLink
		p.inlineCallback['f'] = maybeAutoLink
		p.inlineCallback['w'] = maybeAutoLink
		p.inlineCallback['H'] = maybeAutoLink
		p.inlineCallback['M'] = maybeAutoLink
		p.inlineCallback['F'] = maybeAutoLink
		p.inlineCallback['W'] = maybeAutoLink
		p.inlineCallback['@'] = maybeAutoLink
	}
	return p
}

// Parse runs the full C8 driver sequence over input and returns the root
// Document node, the total node count, and a non-nil *ParseError only for
// a depth overflow (spec.md §9's REDESIGN FLAG: recoverable rather than
// fatal). MalformedConstruct situations are recovered silently inline and
// never surface as an error (spec.md §7). Of these, only an unterminated
// fenced code block is traced to a logger attached via WithLogger; the
// other malformed constructs are not traced.
func (p *Markdown) Parse(input []byte) (*Node, int, error) {
	clean := preprocess(input)
	p.depthExceeded = false
	p.footnoteOrdinal = 0
	p.nesting = 0

	p.doc = NewNode(Document)
	p.doc.ID = p.nextID
	p.nextID++
	p.tip = p.doc

	header := p.addChild(DocHeader, 0)

	rest := clean
	var docMeta []metaEntry
	if p.extensions&Metadata != 0 && looksLikeMetadata(clean) {
		entries, consumed := parseMetadataBlock(clean)
		docMeta = entries
		rest = clean[consumed:]
	}
	p.meta = mergeMetadataQueues(docMeta, p.metaQ)
	for _, m := range p.meta {
		node := p.addChild(Meta, 0)
		node.MetaKey = m.key
		node.Literal = m.value
		p.finalize(node)
	}
	p.finalize(header)

	footnotesEnabled := p.extensions&Footnotes != 0
	staging, refs, notes := collectReferences(rest, footnotesEnabled)
	p.refs = refs
	p.footnotes = notes

	p.block(staging)
	for p.tip != nil && p.tip != p.doc {
		p.finalize(p.tip)
	}

	p.doc.Walk(func(node *Node, entering bool) WalkStatus {
		if entering && (node.Type == Paragraph || node.Type == TableCell || node.Type == DefinitionTitle || node.Type == DefinitionData || node.Type == Header) {
			p.inline(node, node.content)
			node.content = nil
		}
		return GoToNext
	})

	if footnotesEnabled {
		used := usedFootnotesInOrder(p.footnotes)
		if len(used) > 0 {
			block := p.addChild(FootnotesBlock, 0)
			for _, n := range used {
				item := p.addChild(FootnoteDef, 0)
				item.FootnoteNum = n.ordinal
				item.content = n.contents
				p.inline(item, item.content)
				item.content = nil
				p.finalize(item)
			}
			p.finalize(block)
		}
	}

	footer := p.addChild(DocFooter, 0)
	p.finalize(footer)

	count := p.doc.CountNodes()

	var err error
	if p.depthExceeded {
		err = &ParseError{Kind: ErrDepthExceeded}
		if p.logger != nil {
			p.logger.Debug("parse completed with depth exceeded", "maxDepth", p.maxNesting)
		}
	}

	p.refs = nil
	p.footnotes = nil
	p.meta = nil

	return p.doc, count, err
}

// usedFootnotesInOrder returns the footnote definitions that were
// referenced during inline parsing, sorted by assigned ordinal.
func usedFootnotesInOrder(notes []*footnoteEntry) []*footnoteEntry {
	used := make([]*footnoteEntry, 0, len(notes))
	for _, n := range notes {
		if n.isUsed {
			used = append(used, n)
		}
	}
	for i := 1; i < len(used); i++ {
		for j := i; j > 0 && used[j-1].ordinal > used[j].ordinal; j-- {
			used[j-1], used[j] = used[j], used[j-1]
		}
	}
	return used
}

// Parse is the package-level one-shot entry point: it constructs a
// Markdown with opts and parses input.
func Parse(input []byte, opts ...Option) (*Node, int, error) {
	p := New(opts...)
	return p.Parse(input)
}

//
// Miscellaneous helper functions
//

func ispunct(c byte) bool {
	for _, r := range []byte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~") {
		if c == r {
			return true
		}
	}
	return false
}

func isspace(c byte) bool {
	return ishorizontalspace(c) || isverticalspace(c)
}

func ishorizontalspace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isverticalspace(c byte) bool {
	return c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isletter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isalnum(c byte) bool {
	return (c >= '0' && c <= '9') || isletter(c)
}
