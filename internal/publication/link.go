package publication

import "github.com/starford/folio/internal/jsonutil"

// Well-known link relations.
const (
	RelCover    = "cover"
	RelContents = "contents"
	RelSelf     = "self"
)

// Link is a relation-tagged reference to a resource of the publication.
type Link struct {
	Href      string                 `json:"href"`
	TypeLink  string                 `json:"type,omitempty"`
	Rel       jsonutil.StringOrArray `json:"rel,omitempty"`
	Templated *bool                  `json:"templated,omitempty"`

	Title    string      `json:"title,omitempty"`
	Height   int         `json:"height,omitempty"`
	Width    int         `json:"width,omitempty"`
	Duration float64     `json:"duration,omitempty"`
	Bitrate  float64     `json:"bitrate,omitempty"`
	Language []string    `json:"language,omitempty"`
	Props    *Properties `json:"properties,omitempty"`
	Children []*Link     `json:"children,omitempty"`
}

// Properties holds the link properties this library reads.
type Properties struct {
	Contains     []string `json:"contains,omitempty"`
	MediaOverlay string   `json:"mediaOverlay,omitempty"`
	Page         string   `json:"page,omitempty"`
}

// HasRel reports whether rel is one of the link's relations.
func (l *Link) HasRel(rel string) bool {
	for _, r := range l.Rel {
		if r == rel {
			return true
		}
	}
	return false
}

// AddRel adds rel unless the link already carries it.
func (l *Link) AddRel(rel string) {
	if !l.HasRel(rel) {
		l.Rel = append(l.Rel, rel)
	}
}

// AddRels adds each relation in order, skipping duplicates.
func (l *Link) AddRels(rels []string) {
	for _, r := range rels {
		l.AddRel(r)
	}
}

// MediaOverlay returns the href of the narration document for this link.
func (l *Link) MediaOverlay() string {
	if l.Props == nil {
		return ""
	}
	return l.Props.MediaOverlay
}
