package coremark_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coremark/coremark"
)

// findFirst returns the first node of type t in doc's subtree, or nil.
func findFirst(doc *coremark.Node, t coremark.NodeType) *coremark.Node {
	var found *coremark.Node
	doc.Walk(func(n *coremark.Node, entering bool) coremark.WalkStatus {
		if entering && n.Type == t && found == nil {
			found = n
			return coremark.Terminate
		}
		return coremark.GoToNext
	})
	return found
}

func collectAll(doc *coremark.Node, t coremark.NodeType) []*coremark.Node {
	var found []*coremark.Node
	doc.Walk(func(n *coremark.Node, entering bool) coremark.WalkStatus {
		if entering && n.Type == t {
			found = append(found, n)
		}
		return coremark.GoToNext
	})
	return found
}

func TestParse_ATXHeader(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("## Title\n"))
	require.NoError(t, err)
	h := findFirst(doc, coremark.Header)
	require.NotNil(t, h)
	assert.Equal(t, 1, h.Level)
}

func TestParse_SetextHeader(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("Title\n=====\n"))
	require.NoError(t, err)
	h := findFirst(doc, coremark.Header)
	require.NotNil(t, h)
	assert.Equal(t, 0, h.Level)
}

func TestParse_ParagraphAndEmphasis(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("hello *world* and **strong** text\n"))
	require.NoError(t, err)
	require.NotNil(t, findFirst(doc, coremark.Paragraph))
	assert.NotNil(t, findFirst(doc, coremark.Emphasis))
	assert.NotNil(t, findFirst(doc, coremark.DoubleEmphasis))
}

func TestParse_TripleEmphasis(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("***bold italic***\n"))
	require.NoError(t, err)
	assert.NotNil(t, findFirst(doc, coremark.TripleEmphasis))
}

func TestParse_StrikethroughAndHighlight(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("~~gone~~ and ==marked==\n"),
		coremark.WithExtensions(coremark.ExtStrikethrough|coremark.ExtHighlight))
	require.NoError(t, err)
	assert.NotNil(t, findFirst(doc, coremark.Strikethrough))
	assert.NotNil(t, findFirst(doc, coremark.Highlight))
}

func TestParse_Codespan(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("here is `some code` inline\n"))
	require.NoError(t, err)
	cs := findFirst(doc, coremark.Codespan)
	require.NotNil(t, cs)
	assert.Equal(t, "some code", string(cs.Literal))
}

func TestParse_HardLineBreak(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("line one  \nline two\n"))
	require.NoError(t, err)
	assert.NotNil(t, findFirst(doc, coremark.Linebreak))
}

func TestParse_InlineLink(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("see [example](http://example.com \"Example\")\n"))
	require.NoError(t, err)
	link := findFirst(doc, coremark.Link)
	require.NotNil(t, link)
	assert.Equal(t, "http://example.com", string(link.LinkDest))
	assert.Equal(t, "Example", string(link.LinkTitle))
}

func TestParse_ReferenceStyleLink(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("see [foo][ref] here\n\n[ref]: /url \"Title\"\n"))
	require.NoError(t, err)
	link := findFirst(doc, coremark.Link)
	require.NotNil(t, link)
	assert.Equal(t, "/url", string(link.LinkDest))
}

func TestParse_ShortcutReferenceLink(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("see [foo] here\n\n[foo]: /bar\n"))
	require.NoError(t, err)
	link := findFirst(doc, coremark.Link)
	require.NotNil(t, link)
	assert.Equal(t, "/bar", string(link.LinkDest))
}

func TestParse_Image(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("![alt text](/img.png)\n"))
	require.NoError(t, err)
	img := findFirst(doc, coremark.ImageNode)
	require.NotNil(t, img)
	assert.Equal(t, "/img.png", string(img.LinkDest))
	assert.Equal(t, "alt text", string(img.ImageAlt))
}

func TestParse_ImageWithAttrs(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("![alt](/img.png){width=100 height=50}\n"),
		coremark.WithExtensions(coremark.ImageExtensions))
	require.NoError(t, err)
	img := findFirst(doc, coremark.ImageNode)
	require.NotNil(t, img)
	assert.True(t, img.HasWidth)
	assert.Equal(t, "100", img.ImageWidth)
	assert.True(t, img.HasHeight)
	assert.Equal(t, "50", img.ImageHeight)
}

func TestParse_Autolink(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("visit <http://example.com> now\n"),
		coremark.WithExtensions(coremark.Autolink))
	require.NoError(t, err)
	auto := findFirst(doc, coremark.LinkAuto)
	require.NotNil(t, auto)
	assert.Equal(t, coremark.AutolinkNormal, auto.AutolinkKind)
}

func TestParse_BareAutolink(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("visit http://example.com/page.\n"),
		coremark.WithExtensions(coremark.Autolink))
	require.NoError(t, err)
	auto := findFirst(doc, coremark.LinkAuto)
	require.NotNil(t, auto)
	assert.Equal(t, "http://example.com/page", string(auto.AutolinkDest))
}

func TestParse_BareEmailAutolink(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("contact jane.doe@example.com today\n"),
		coremark.WithExtensions(coremark.Autolink))
	require.NoError(t, err)
	auto := findFirst(doc, coremark.LinkAuto)
	require.NotNil(t, auto)
	assert.Equal(t, coremark.AutolinkEmail, auto.AutolinkKind)
	assert.Equal(t, "jane.doe@example.com", string(auto.AutolinkDest))
}

func TestParse_Entity(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("a &amp; b\n"))
	require.NoError(t, err)
	e := findFirst(doc, coremark.Entity)
	require.NotNil(t, e)
	assert.Equal(t, "&amp;", string(e.Literal))
}

func TestParse_Escape(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("a \\* b\n"))
	require.NoError(t, err)
	p := findFirst(doc, coremark.Paragraph)
	require.NotNil(t, p)
	assert.Nil(t, findFirst(doc, coremark.Emphasis))
}

func TestParse_Superscript(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("x^2^ plus y\n"), coremark.WithExtensions(coremark.ExtSuperscript))
	require.NoError(t, err)
	sup := findFirst(doc, coremark.Superscript)
	require.NotNil(t, sup)
	assert.Equal(t, "2", string(sup.Literal))
}

func TestParse_MathInlineAndDisplay(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("inline $x^2$ and display $$y = mc^2$$ done\n"),
		coremark.WithExtensions(coremark.Math))
	require.NoError(t, err)
	assert.NotNil(t, findFirst(doc, coremark.MathInline))
	assert.NotNil(t, findFirst(doc, coremark.MathBlock))
}

func TestParse_FencedCodeBlockWithLangNormalization(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("```js\nvar x = 1;\n```\n"), coremark.WithExtensions(coremark.FencedCode))
	require.NoError(t, err)
	code := findFirst(doc, coremark.BlockCode)
	require.NotNil(t, code)
	assert.Equal(t, "JavaScript", code.Lang)
	assert.Equal(t, "var x = 1;\n", string(code.CodeText))
}

func TestParse_UnterminatedFenceRecovered(t *testing.T) {
	doc, count, err := coremark.Parse([]byte("```go\nfunc f() {}\n"), coremark.WithExtensions(coremark.FencedCode))
	require.NoError(t, err)
	assert.Greater(t, count, 0)
	code := findFirst(doc, coremark.BlockCode)
	require.NotNil(t, code)
	assert.Contains(t, string(code.CodeText), "func f() {}")
}

func TestParse_IndentedCodeBlock(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("    indented code\n"))
	require.NoError(t, err)
	code := findFirst(doc, coremark.BlockCode)
	require.NotNil(t, code)
	assert.Equal(t, "indented code\n", string(code.CodeText))
}

func TestParse_Table(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	doc, _, err := coremark.Parse([]byte(src), coremark.WithExtensions(coremark.Tables))
	require.NoError(t, err)
	table := findFirst(doc, coremark.Table)
	require.NotNil(t, table)
	assert.Equal(t, 2, table.Columns)
	require.NotNil(t, findFirst(doc, coremark.TableHead))
	require.NotNil(t, findFirst(doc, coremark.TableBody))
	cells := collectAll(doc, coremark.TableCell)
	require.Len(t, cells, 4)
	assert.True(t, cells[0].IsHeader)
	assert.False(t, cells[2].IsHeader)
}

func TestParse_DefinitionList(t *testing.T) {
	src := "Term\n: Definition one\n: Definition two\n"
	doc, _, err := coremark.Parse([]byte(src), coremark.WithExtensions(coremark.DefinitionLists))
	require.NoError(t, err)
	def := findFirst(doc, coremark.Definition)
	require.NotNil(t, def)
	title := findFirst(doc, coremark.DefinitionTitle)
	require.NotNil(t, title)
	data := collectAll(doc, coremark.DefinitionData)
	assert.Len(t, data, 2)
}

func TestParse_BlockQuote(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("> quoted text\n> more\n"))
	require.NoError(t, err)
	assert.NotNil(t, findFirst(doc, coremark.BlockQuote))
}

func TestParse_UnorderedAndOrderedLists(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("- one\n- two\n\n1. first\n2. second\n"))
	require.NoError(t, err)
	lists := collectAll(doc, coremark.List)
	require.Len(t, lists, 2)
	assert.Equal(t, coremark.ListType(0), lists[0].ListFlags&coremark.ListTypeOrdered)
	assert.NotEqual(t, coremark.ListType(0), lists[1].ListFlags&coremark.ListTypeOrdered)
}

func TestParse_HorizontalRule(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("above\n\n---\n\nbelow\n"))
	require.NoError(t, err)
	assert.NotNil(t, findFirst(doc, coremark.HorizontalRule))
}

func TestParse_HTMLBlock(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("<div>\nraw html\n</div>\n"))
	require.NoError(t, err)
	block := findFirst(doc, coremark.HTMLBlock)
	require.NotNil(t, block)
	assert.Contains(t, string(block.Literal), "raw html")
}

func TestParse_Footnotes(t *testing.T) {
	src := "text with a note[^1] in it.\n\n[^1]: the footnote body\n"
	doc, _, err := coremark.Parse([]byte(src), coremark.WithExtensions(coremark.Footnotes))
	require.NoError(t, err)
	ref := findFirst(doc, coremark.FootnoteRef)
	require.NotNil(t, ref)
	assert.Equal(t, 1, ref.FootnoteNum)
	block := findFirst(doc, coremark.FootnotesBlock)
	require.NotNil(t, block)
	def := findFirst(doc, coremark.FootnoteDef)
	require.NotNil(t, def)
	assert.Equal(t, 1, def.FootnoteNum)
}

func TestParse_RepeatedFootnoteReferenceBecomesLiteralText(t *testing.T) {
	src := "one[^x] and two[^x] again.\n\n[^x]: body\n"
	doc, _, err := coremark.Parse([]byte(src), coremark.WithExtensions(coremark.Footnotes))
	require.NoError(t, err)
	refs := collectAll(doc, coremark.FootnoteRef)
	assert.Len(t, refs, 1)
	texts := collectAll(doc, coremark.NormalText)
	found := false
	for _, n := range texts {
		if string(n.Literal) == "[^x]" {
			found = true
		}
	}
	assert.True(t, found, "second [^x] reference should be emitted as literal text")
}

func TestParse_Metadata(t *testing.T) {
	src := "Title: My Doc\nAuthor: Jane\n\nbody text\n"
	doc, _, err := coremark.Parse([]byte(src), coremark.WithExtensions(coremark.Metadata))
	require.NoError(t, err)
	metas := collectAll(doc, coremark.Meta)
	require.Len(t, metas, 2)
	assert.Equal(t, "title", string(metas[0].MetaKey))
	assert.Equal(t, "My Doc", string(metas[0].Literal))
}

func TestParse_MetadataWithDefaultsAndOverrides(t *testing.T) {
	src := "Author: doc-author\n\nbody\n"
	doc, _, err := coremark.Parse([]byte(src),
		coremark.WithExtensions(coremark.Metadata),
		coremark.WithMetadata(map[string]string{"license": "MIT"}),
		coremark.WithMetadataOverrides(map[string]string{"author": "override-author"}),
	)
	require.NoError(t, err)
	metas := collectAll(doc, coremark.Meta)
	byKey := map[string]string{}
	for _, m := range metas {
		byKey[string(m.MetaKey)] = string(m.Literal)
	}
	assert.Equal(t, "override-author", byKey["author"])
	assert.Equal(t, "MIT", byKey["license"])
}

func TestParse_MetadataInlineReference(t *testing.T) {
	src := "Title: My Doc\n\nWelcome to [%title].\n"
	doc, _, err := coremark.Parse([]byte(src), coremark.WithExtensions(coremark.Metadata))
	require.NoError(t, err)
	texts := collectAll(doc, coremark.NormalText)
	found := false
	for _, n := range texts {
		if string(n.Literal) == "My Doc" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParse_DepthExceededIsRecoverable(t *testing.T) {
	deep := ""
	for i := 0; i < 200; i++ {
		deep += "> "
	}
	deep += "too deep\n"

	doc, count, err := coremark.Parse([]byte(deep), coremark.WithMaxDepth(8))
	require.Error(t, err)
	var perr *coremark.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, coremark.ErrDepthExceeded, perr.Kind)
	assert.NotNil(t, doc)
	assert.Greater(t, count, 0)
}

func TestParse_NoDepthLimitWhenZero(t *testing.T) {
	_, _, err := coremark.Parse([]byte("> a\n> > b\n"), coremark.WithMaxDepth(0))
	assert.NoError(t, err)
}

func TestParse_TreeShapeForSimpleDocument(t *testing.T) {
	doc, _, err := coremark.Parse([]byte("# Title\n\nBody text.\n"))
	require.NoError(t, err)

	opts := cmpopts.IgnoreFields(coremark.Node{}, "Parent", "ID")
	header := findFirst(doc, coremark.Header)
	para := findFirst(doc, coremark.Paragraph)
	require.NotNil(t, header)
	require.NotNil(t, para)

	allOpts := append([]cmp.Option{opts}, cmpTreeOptions()...)
	if diff := cmp.Diff(header.Next, para, allOpts...); diff != "" {
		// header.Next and para should be the same node; a nonzero diff
		// signals the sibling chain skipped or duplicated a node.
		t.Errorf("unexpected sibling chain (-header.Next +para):\n%s", diff)
	}
}

// cmpTreeOptions stops go-cmp from following Node.Parent, which would
// otherwise walk back into a cycle (spec.md §9.4 / SPEC_FULL.md §9.4).
func cmpTreeOptions() []cmp.Option {
	return []cmp.Option{
		cmpopts.IgnoreFields(coremark.Node{}, "Parent"),
		cmpopts.IgnoreUnexported(coremark.Node{}),
	}
}
