package mediaoverlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func narrationFixture() *Node {
	return &Node{
		Role: []string{"chapter"},
		Children: []*Node{
			{Text: "ch1.xhtml#p1", Audio: "audio/ch1.mp3#t=0,1.5"},
			{Text: "ch1.xhtml#p2", Audio: "audio/ch1.mp3#t=1.5,4"},
			{
				Role: []string{"aside"},
				Children: []*Node{
					{Text: "ch1.xhtml#p3", Audio: "audio/ch1.mp3#t=npt:4,00:00:04.25"},
				},
			},
		},
	}
}

func TestParseFragment(t *testing.T) {
	path, begin, end, ok := ParseFragment("audio/a.mp3#t=12.5,15")
	require.True(t, ok)
	assert.Equal(t, "audio/a.mp3", path)
	assert.Equal(t, "12.5", begin)
	assert.Equal(t, "15", end)

	_, begin, end, ok = ParseFragment("a.mp3#t=3")
	require.True(t, ok)
	assert.Equal(t, "3", begin)
	assert.Empty(t, end)

	path, _, _, ok = ParseFragment("a.mp3")
	assert.False(t, ok)
	assert.Equal(t, "a.mp3", path)
}

func TestAnnotate(t *testing.T) {
	root := narrationFixture()
	Annotate(root, "overlays/ch1.json")

	require.True(t, root.Initialized)
	require.NotNil(t, root.Duration)
	assert.Equal(t, 4.25, *root.Duration)
	assert.Equal(t, 0.0, *root.TotalElapsedTime)

	first := root.Children[0]
	assert.Equal(t, "p1", first.TextID)
	assert.Equal(t, "overlays/ch1.json", first.SmilPathInZip)
	assert.Equal(t, 0.0, *first.AudioClipBegin)
	assert.Equal(t, 1.5, *first.AudioClipEnd)
	assert.Equal(t, 1.5, *first.Duration)

	second := root.Children[1]
	assert.Equal(t, 1.5, *second.TotalElapsedTime)
	assert.Equal(t, 2.5, *second.Duration)

	group := root.Children[2]
	assert.Equal(t, 4.0, *group.TotalElapsedTime)
	assert.Equal(t, 0.25, *group.Duration)
	assert.Nil(t, group.AudioClipBegin)

	leaf := group.Children[0]
	assert.Equal(t, 4.0, *leaf.AudioClipBegin)
	assert.Equal(t, 4.25, *leaf.AudioClipEnd)
}

func TestAnnotate_InitializedTreeUntouched(t *testing.T) {
	root := narrationFixture()
	Annotate(root, "a.json")
	Annotate(root, "b.json")
	assert.Equal(t, "a.json", root.Children[0].SmilPathInZip)
}

func TestAnnotate_OpenEndedClipHasNoDuration(t *testing.T) {
	root := &Node{Children: []*Node{{Audio: "a.mp3#t=2"}, {Video: "v.mp4#t=1,3"}}}
	Annotate(root, "x.json")

	open := root.Children[0]
	require.NotNil(t, open.AudioClipBegin)
	assert.Nil(t, open.AudioClipEnd)
	assert.Nil(t, open.Duration)

	video := root.Children[1]
	assert.Equal(t, 0.0, *video.TotalElapsedTime)
	assert.Equal(t, 2.0, *video.Duration)
	assert.Equal(t, 2.0, *root.Duration)
}

func TestWalk_SkipsChildren(t *testing.T) {
	root := narrationFixture()
	var texts []string
	Walk(root, func(n *Node) bool {
		if n.HasRole("aside") {
			return false
		}
		if n.Text != "" {
			texts = append(texts, n.Text)
		}
		return true
	})
	assert.Equal(t, []string{"ch1.xhtml#p1", "ch1.xhtml#p2"}, texts)
}

func TestNode_GroupAndLeafAreNotExclusive(t *testing.T) {
	n := &Node{Text: "a.xhtml#x", Children: []*Node{{Audio: "a.mp3"}}}
	assert.True(t, n.IsGroup())
	assert.True(t, n.IsLeaf())
}
