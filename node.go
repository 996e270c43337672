// Blackfriday Markdown Processor
// Available at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.

package coremark

import "fmt"

// NodeType classifies the ≈35 variants an AST node can take. Block-level
// and inline-level variants share one enum because a cursor (Markdown.tip)
// walks both during parsing.
type NodeType int

const (
	Document NodeType = iota
	DocHeader
	DocFooter
	BlockQuote
	List
	Item
	Paragraph
	Header
	HorizontalRule
	BlockCode
	HTMLBlock
	Table
	TableHead
	TableBody
	TableRow
	TableCell
	Definition
	DefinitionTitle
	DefinitionData
	FootnotesBlock
	Meta
	NormalText
	Emphasis
	DoubleEmphasis
	TripleEmphasis
	Strikethrough
	Highlight
	Codespan
	Link
	ImageNode
	LinkAuto
	RawHTML
	Entity
	Linebreak
	FootnoteRef
	FootnoteDef
	Superscript
	MathBlock
	MathInline
)

var nodeTypeNames = []string{
	Document:        "Document",
	DocHeader:       "DocHeader",
	DocFooter:       "DocFooter",
	BlockQuote:      "BlockQuote",
	List:            "List",
	Item:            "Item",
	Paragraph:       "Paragraph",
	Header:          "Header",
	HorizontalRule:  "HorizontalRule",
	BlockCode:       "BlockCode",
	HTMLBlock:       "HTMLBlock",
	Table:           "Table",
	TableHead:       "TableHead",
	TableBody:       "TableBody",
	TableRow:        "TableRow",
	TableCell:       "TableCell",
	Definition:      "Definition",
	DefinitionTitle: "DefinitionTitle",
	DefinitionData:  "DefinitionData",
	FootnotesBlock:  "FootnotesBlock",
	Meta:            "Meta",
	NormalText:      "NormalText",
	Emphasis:        "Emphasis",
	DoubleEmphasis:  "DoubleEmphasis",
	TripleEmphasis:  "TripleEmphasis",
	Strikethrough:   "Strikethrough",
	Highlight:       "Highlight",
	Codespan:        "Codespan",
	Link:            "Link",
	ImageNode:       "Image",
	LinkAuto:        "LinkAuto",
	RawHTML:         "RawHTML",
	Entity:          "Entity",
	Linebreak:       "Linebreak",
	FootnoteRef:     "FootnoteRef",
	FootnoteDef:     "FootnoteDef",
	Superscript:     "Superscript",
	MathBlock:       "MathBlock",
	MathInline:      "MathInline",
}

func (t NodeType) String() string {
	if int(t) < 0 || int(t) >= len(nodeTypeNames) || nodeTypeNames[t] == "" {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// AutolinkType distinguishes the three autolink forms LINK_AUTO can carry.
type AutolinkType int

const (
	AutolinkNone AutolinkType = iota
	AutolinkNormal
	AutolinkEmail
)

// Node is a single AST node. It holds every variant's payload directly
// (§3 of the spec describes these as a tagged union's fields; a single Go
// struct with the union flattened is the idiomatic rendition of the same
// ownership rules: a node exclusively owns its children and any buffers
// below, and nodes are never shared between trees).
type Node struct {
	ID   int
	Type NodeType

	Parent                         *Node
	FirstChild, LastChild          *Node
	Prev, Next                     *Node

	open bool // still accepting children during the block pass

	// content holds block-stage text awaiting the inline pass (Paragraph,
	// Header, TableCell). It is nil once p.inline has consumed it.
	content []byte

	// Literal is the final text payload for NormalText, Codespan, Entity,
	// RawHTML, HTMLBlock, MathBlock and MathInline nodes.
	Literal []byte

	// Header
	Level int

	// BlockCode
	CodeText []byte
	Lang     string

	// List / Item
	ListFlags  ListType
	ListStart  string // ≤9 bytes, ordered-list start number
	Tight      bool
	BulletChar byte
	Delimiter  byte
	Ordinal    int

	// Table / TableCell
	Columns  int
	Col      int
	IsHeader bool
	Align    CellAlignFlags

	// Link / Image
	LinkDest    []byte
	LinkTitle   []byte
	ImageAlt    []byte
	ImageWidth  string
	ImageHeight string
	HasWidth    bool
	HasHeight   bool

	// LinkAuto
	AutolinkDest []byte
	AutolinkKind AutolinkType

	// FootnoteRef / FootnoteDef
	FootnoteNum int

	// Meta
	MetaKey []byte
}

// NewNode allocates a detached node. Callers must link it into a tree via
// AppendChild/InsertAfter or Markdown.addChild; an unlinked node is not
// part of any document and is never visited by Walk.
func NewNode(t NodeType) *Node {
	return &Node{Type: t, open: true}
}

// IsContainer reports whether n can hold children. Leaf variants (plain
// text and the atomic inline constructs) never do.
func (n *Node) IsContainer() bool {
	switch n.Type {
	case NormalText, Codespan, Entity, RawHTML, HorizontalRule, Linebreak,
		LinkAuto, FootnoteRef, HTMLBlock, ImageNode, MathInline, MathBlock:
		return false
	default:
		return true
	}
}

// Unlink detaches n from its parent and siblings. n's own children are
// left attached to n.
func (n *Node) Unlink() {
	if n.Prev != nil {
		n.Prev.Next = n.Next
	} else if n.Parent != nil {
		n.Parent.FirstChild = n.Next
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	} else if n.Parent != nil {
		n.Parent.LastChild = n.Prev
	}
	n.Parent = nil
	n.Next = nil
	n.Prev = nil
}

// AppendChild links child as n's last child, invariant 1 of spec.md §3:
// every non-root node has exactly one parent, which lists it exactly once.
func (n *Node) AppendChild(child *Node) {
	child.Unlink()
	child.Parent = n
	if n.LastChild != nil {
		n.LastChild.Next = child
		child.Prev = n.LastChild
		n.LastChild = child
	} else {
		n.FirstChild = child
		n.LastChild = child
	}
}

// InsertBefore links sibling immediately before n.
func (n *Node) InsertBefore(sibling *Node) {
	sibling.Unlink()
	sibling.Prev = n.Prev
	sibling.Next = n
	if n.Prev != nil {
		n.Prev.Next = sibling
	} else if n.Parent != nil {
		n.Parent.FirstChild = sibling
	}
	n.Prev = sibling
	sibling.Parent = n.Parent
}

// canContain mirrors the teacher's unexported method of the same purpose:
// it governs which open block a new child gets attached to, closing
// unmatched blocks along the way (Markdown.finalize).
func (n *Node) canContain(t NodeType) bool {
	switch n.Type {
	case List:
		return t == Item
	case Document, BlockQuote, Item, Definition:
		return t != Item
	case Table:
		return t == TableHead || t == TableBody
	case TableHead, TableBody:
		return t == TableRow
	case TableRow:
		return t == TableCell
	case DocHeader:
		return t == Meta
	case FootnotesBlock:
		return t == FootnoteDef
	default:
		if isInlineContainer(n.Type) {
			return isInlineNode(t)
		}
		return false
	}
}

// isInlineContainer reports whether t is a node the inline pass (C7) can
// append children into: either a block-stage text holder (Paragraph,
// Header, TableCell, DefinitionTitle, DefinitionData, FootnoteDef) or an
// inline node that itself nests further inline content (Link, the emphasis
// family, Superscript). ImageNode is not one: its alt text is kept as raw
// bytes in ImageAlt.
func isInlineContainer(t NodeType) bool {
	switch t {
	case Paragraph, Header, TableCell, DefinitionTitle, DefinitionData,
		FootnoteDef, Emphasis, DoubleEmphasis, TripleEmphasis, Strikethrough,
		Highlight, Link, Superscript:
		return true
	default:
		return false
	}
}

// isInlineNode reports whether t is one of the node types the inline pass
// produces as a child of an inline container.
func isInlineNode(t NodeType) bool {
	switch t {
	case NormalText, Codespan, Entity, RawHTML, Linebreak, LinkAuto,
		FootnoteRef, Emphasis, DoubleEmphasis, TripleEmphasis, Strikethrough,
		Highlight, Link, ImageNode, Superscript, MathInline, MathBlock:
		return true
	default:
		return false
	}
}

// WalkStatus instructs Walk how to continue after visiting a node.
type WalkStatus int

const (
	GoToNext WalkStatus = iota
	SkipChildren
	Terminate
)

// NodeVisitor is called once per leaf (entering == true only) and twice per
// container (entering == true then false), per the renderer contract in
// spec.md §6.
type NodeVisitor func(n *Node, entering bool) WalkStatus

// Walk performs a depth-first, pre/post-order traversal starting at n.
func (n *Node) Walk(visitor NodeVisitor) {
	n.walk(visitor)
}

func (n *Node) walk(visitor NodeVisitor) WalkStatus {
	if !n.IsContainer() {
		if visitor(n, true) == Terminate {
			return Terminate
		}
		return GoToNext
	}

	status := visitor(n, true)
	if status == Terminate {
		return Terminate
	}
	if status != SkipChildren {
		for child := n.FirstChild; child != nil; child = child.Next {
			if child.walk(visitor) == Terminate {
				return Terminate
			}
		}
	}
	if visitor(n, false) == Terminate {
		return Terminate
	}
	return GoToNext
}

// Free recursively releases n and every descendant (C9). It severs every
// pointer so a stray reference elsewhere cannot resurrect part of the tree
// and so the garbage collector can reclaim the buffers immediately rather
// than waiting for the whole tree to become unreachable.
func (n *Node) Free() {
	child := n.FirstChild
	for child != nil {
		next := child.Next
		child.Free()
		child = next
	}
	n.FirstChild = nil
	n.LastChild = nil
	n.Parent = nil
	n.Prev = nil
	n.Next = nil
	n.content = nil
	n.Literal = nil
	n.CodeText = nil
	n.LinkDest = nil
	n.LinkTitle = nil
	n.ImageAlt = nil
	n.AutolinkDest = nil
	n.MetaKey = nil
}

// CountNodes returns the number of nodes in the subtree rooted at n,
// including n itself — the node_count contract of doc_parse.
func (n *Node) CountNodes() int {
	count := 0
	n.Walk(func(node *Node, entering bool) WalkStatus {
		if entering {
			count++
		}
		return GoToNext
	})
	return count
}
