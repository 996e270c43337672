package coremark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_AppendChildAndUnlink(t *testing.T) {
	root := NewNode(Document)
	a := NewNode(Paragraph)
	b := NewNode(Paragraph)

	root.AppendChild(a)
	root.AppendChild(b)

	require.Equal(t, a, root.FirstChild)
	require.Equal(t, b, root.LastChild)
	assert.Equal(t, root, a.Parent)
	assert.Equal(t, b, a.Next)
	assert.Equal(t, a, b.Prev)

	a.Unlink()
	assert.Nil(t, a.Parent)
	assert.Equal(t, b, root.FirstChild)
	assert.Equal(t, b, root.LastChild)
}

func TestNode_InsertBefore(t *testing.T) {
	root := NewNode(Document)
	b := NewNode(Paragraph)
	root.AppendChild(b)

	a := NewNode(Paragraph)
	b.InsertBefore(a)

	assert.Equal(t, a, root.FirstChild)
	assert.Equal(t, b, root.LastChild)
	assert.Equal(t, b, a.Next)
}

func TestNode_CanContain(t *testing.T) {
	list := NewNode(List)
	assert.True(t, list.canContain(Item))
	assert.False(t, list.canContain(Paragraph))

	doc := NewNode(Document)
	assert.True(t, doc.canContain(Paragraph))
	assert.False(t, doc.canContain(Item))

	table := NewNode(Table)
	assert.True(t, table.canContain(TableHead))
	assert.False(t, table.canContain(TableRow))

	row := NewNode(TableRow)
	assert.True(t, row.canContain(TableCell))

	para := NewNode(Paragraph)
	assert.True(t, para.canContain(NormalText))
	assert.True(t, para.canContain(Emphasis))
	assert.False(t, para.canContain(Paragraph))

	emph := NewNode(Emphasis)
	assert.True(t, emph.canContain(Codespan))
	assert.False(t, emph.canContain(TableCell))
}

func TestNode_Walk_PrePostOrderForContainers(t *testing.T) {
	root := NewNode(Document)
	child := NewNode(Paragraph)
	leaf := NewNode(NormalText)
	child.AppendChild(leaf)
	root.AppendChild(child)

	var events []string
	root.Walk(func(n *Node, entering bool) WalkStatus {
		dir := "leave"
		if entering {
			dir = "enter"
		}
		events = append(events, dir+":"+n.Type.String())
		return GoToNext
	})

	assert.Equal(t, []string{
		"enter:Document",
		"enter:Paragraph",
		"enter:NormalText",
		"leave:Paragraph",
		"leave:Document",
	}, events)
}

func TestNode_Walk_SkipChildren(t *testing.T) {
	root := NewNode(Document)
	child := NewNode(Paragraph)
	leaf := NewNode(NormalText)
	child.AppendChild(leaf)
	root.AppendChild(child)

	visitedLeaf := false
	root.Walk(func(n *Node, entering bool) WalkStatus {
		if n.Type == Paragraph && entering {
			return SkipChildren
		}
		if n.Type == NormalText {
			visitedLeaf = true
		}
		return GoToNext
	})

	assert.False(t, visitedLeaf)
}

func TestNode_CountNodes(t *testing.T) {
	root := NewNode(Document)
	root.AppendChild(NewNode(Paragraph))
	child := NewNode(Paragraph)
	child.AppendChild(NewNode(NormalText))
	root.AppendChild(child)

	assert.Equal(t, 4, root.CountNodes())
}

func TestNode_Free_ClearsSubtree(t *testing.T) {
	root := NewNode(Document)
	child := NewNode(Paragraph)
	child.Literal = []byte("hello")
	root.AppendChild(child)

	root.Free()
	assert.Nil(t, root.FirstChild)
	assert.Nil(t, root.LastChild)
}

func TestNodeType_String_UnknownValue(t *testing.T) {
	assert.Contains(t, NodeType(9999).String(), "NodeType(")
	assert.Equal(t, "Paragraph", Paragraph.String())
}
