// Package publication models a publication manifest: ordered link
// collections, metadata, and the runtime resources attached to it for the
// length of a reading session.
//
// A Publication is not safe for concurrent mutation. Each reading session
// owns its own instance.
package publication

import (
	"log/slog"

	"github.com/starford/folio/internal/jsonutil"
	"github.com/starford/folio/internal/license"
)

// Publication is the root of a manifest. Collections are nil when the
// manifest omits them.
type Publication struct {
	Context   jsonutil.StringOrArray `json:"@context,omitempty"`
	Metadata  *Metadata              `json:"metadata,omitempty"`
	Links     []*Link                `json:"links,omitempty"`
	Spine     []*Link                `json:"readingOrder,omitempty"`
	Resources []*Link                `json:"resources,omitempty"`
	TOC       []*Link                `json:"toc,omitempty"`
	PageList  []*Link                `json:"page-list,omitempty"`
	Landmarks []*Link                `json:"landmarks,omitempty"`
	LOI       []*Link                `json:"loi,omitempty"`
	LOA       []*Link                `json:"loa,omitempty"`
	LOV       []*Link                `json:"lov,omitempty"`
	LOT       []*Link                `json:"lot,omitempty"`

	// LCP is the license of a protected publication.
	LCP *license.License `json:"-"`

	// Logger receives the publication's diagnostics. Nil means slog.Default().
	Logger *slog.Logger `json:"-"`

	internal []attachment
}

// Collection returns the link collection stored under its manifest key
// ("readingOrder", "toc", "page-list", ...).
func (p *Publication) Collection(key string) ([]*Link, bool) {
	switch key {
	case "links":
		return p.Links, true
	case "readingOrder":
		return p.Spine, true
	case "resources":
		return p.Resources, true
	case "toc":
		return p.TOC, true
	case "page-list":
		return p.PageList, true
	case "landmarks":
		return p.Landmarks, true
	case "loi":
		return p.LOI, true
	case "loa":
		return p.LOA, true
	case "lov":
		return p.LOV, true
	case "lot":
		return p.LOT, true
	}
	return nil, false
}

// CollectionKeys lists the manifest keys accepted by Collection.
func CollectionKeys() []string {
	return []string{"links", "readingOrder", "resources", "toc", "page-list", "landmarks", "loi", "loa", "lov", "lot"}
}

// FindByRelation returns the first link carrying rel, searching resources,
// then the reading order, then links.
func (p *Publication) FindByRelation(rel string) (*Link, bool) {
	for _, coll := range [][]*Link{p.Resources, p.Spine, p.Links} {
		for _, l := range coll {
			if l != nil && l.HasRel(rel) {
				return l, true
			}
		}
	}
	return nil, false
}

// Cover returns the cover link.
func (p *Publication) Cover() (*Link, bool) {
	return p.FindByRelation(RelCover)
}

// NavigationDocument returns the table of contents document link.
func (p *Publication) NavigationDocument() (*Link, bool) {
	return p.FindByRelation(RelContents)
}

// AddLink appends a link to Links. templated is left unset when nil.
func (p *Publication) AddLink(mediaType string, rels []string, href string, templated *bool) {
	l := &Link{
		Href:     href,
		TypeLink: mediaType,
	}
	l.AddRels(rels)
	if templated != nil {
		v := *templated
		l.Templated = &v
	}
	p.Links = append(p.Links, l)
}

// OnDeserialized is called by the decoder once the manifest is populated.
// Missing metadata or links are reported but not rejected, since some
// manifest variants leave them out.
func (p *Publication) OnDeserialized() {
	if p.Metadata == nil {
		p.log().Warn("publication metadata is not set")
	}
	if p.Links == nil {
		p.log().Warn("publication links are not set")
	}
}

func (p *Publication) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
