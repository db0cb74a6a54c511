// Package mediaoverlay models synchronized narration: trees of text, audio and
// video references aligned by SMIL clock values.
package mediaoverlay

import "github.com/starford/folio/internal/jsonutil"

// Node is one element of a narration tree. A node with Children is a
// sequence or parallel group; a node with Text, Audio or Video is a leaf
// reference. The serialized schema allows both on the same node.
type Node struct {
	Text     string              `json:"text,omitempty"`  // percent-decoded
	Audio    string              `json:"audio,omitempty"` // percent-decoded
	Video    string              `json:"video,omitempty"` // percent-decoded
	Role     jsonutil.StringList `json:"role,omitempty"`
	Children []*Node             `json:"narration,omitempty"`

	// Filled by Annotate.

	SmilPathInZip string `json:"-"`
	Initialized   bool   `json:"-"`

	ParID   string `json:"-"`
	SeqID   string `json:"-"`
	TextID  string `json:"-"`
	AudioID string `json:"-"`
	VideoID string `json:"-"`
	ImgID   string `json:"-"`

	AudioClipBegin *float64 `json:"-"`
	AudioClipEnd   *float64 `json:"-"`
	VideoClipBegin *float64 `json:"-"`
	VideoClipEnd   *float64 `json:"-"`

	Duration         *float64 `json:"-"`
	TotalElapsedTime *float64 `json:"-"`
}

// IsGroup reports whether n has child nodes.
func (n *Node) IsGroup() bool { return len(n.Children) > 0 }

// IsLeaf reports whether n references a text, audio or video resource.
func (n *Node) IsLeaf() bool { return n.Text != "" || n.Audio != "" || n.Video != "" }

// HasRole reports whether role is one of n's role tokens.
func (n *Node) HasRole(role string) bool {
	for _, r := range n.Role {
		if r == role {
			return true
		}
	}
	return false
}
