package mediaoverlay

import "strings"

// Walk visits n and its descendants in document order. Returning false from
// fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// ParseFragment splits a media reference such as "audio/ch1.mp3#t=12.5,15"
// into its path and temporal bounds. ok is false when ref has no "#t="
// fragment; end is empty for an open-ended clip.
func ParseFragment(ref string) (path, begin, end string, ok bool) {
	i := strings.Index(ref, "#t=")
	if i < 0 {
		return ref, "", "", false
	}
	frag := strings.TrimPrefix(ref[i+len("#t="):], "npt:")
	begin, end, _ = strings.Cut(frag, ",")
	return ref[:i], begin, end, true
}

// Annotate fills the runtime fields of a freshly decoded tree: the SMIL path,
// text element ids, clip bounds, durations and the elapsed time at each
// node. Trees already initialized are left alone.
func (p ClockParser) Annotate(root *Node, smilPath string) {
	if root == nil || root.Initialized {
		return
	}
	p.annotate(root, smilPath, 0)
}

// Annotate runs ClockParser.Annotate with the default logger.
func Annotate(root *Node, smilPath string) {
	ClockParser{}.Annotate(root, smilPath)
}

// annotate returns the elapsed time once n and its subtree are accounted for.
func (p ClockParser) annotate(n *Node, smilPath string, elapsed float64) float64 {
	n.SmilPathInZip = smilPath
	n.TotalElapsedTime = float64Ptr(elapsed)
	n.Initialized = true

	if n.Text != "" {
		if _, id, found := strings.Cut(n.Text, "#"); found {
			n.TextID = id
		}
	}

	var leaf *float64
	if n.Audio != "" {
		n.AudioClipBegin, n.AudioClipEnd = p.clip(n.Audio)
		leaf = span(n.AudioClipBegin, n.AudioClipEnd)
	}
	if n.Video != "" {
		n.VideoClipBegin, n.VideoClipEnd = p.clip(n.Video)
		if leaf == nil {
			leaf = span(n.VideoClipBegin, n.VideoClipEnd)
		}
	}

	start := elapsed
	if leaf != nil {
		elapsed += *leaf
	}
	for _, c := range n.Children {
		elapsed = p.annotate(c, smilPath, elapsed)
	}

	switch {
	case leaf != nil:
		n.Duration = leaf
	case elapsed > start:
		n.Duration = float64Ptr(elapsed - start)
	}
	return elapsed
}

func (p ClockParser) clip(ref string) (begin, end *float64) {
	_, b, e, ok := ParseFragment(ref)
	if !ok {
		return nil, nil
	}
	if b != "" {
		begin = float64Ptr(p.Parse(b))
	}
	if e != "" {
		end = float64Ptr(p.Parse(e))
	}
	return begin, end
}

func span(begin, end *float64) *float64 {
	if begin == nil || end == nil || *end < *begin {
		return nil
	}
	return float64Ptr(*end - *begin)
}

func float64Ptr(v float64) *float64 { return &v }
