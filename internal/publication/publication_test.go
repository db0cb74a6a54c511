package publication

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(href string, rels ...string) *Link {
	l := &Link{Href: href}
	l.AddRels(rels)
	return l
}

func TestFindByRelation_ResourcesWin(t *testing.T) {
	p := &Publication{
		Links:     []*Link{link("links-cover.jpg", RelCover)},
		Spine:     []*Link{link("spine-cover.xhtml", RelCover)},
		Resources: []*Link{link("style.css"), link("res-cover.jpg", RelCover)},
	}

	got, ok := p.Cover()
	require.True(t, ok)
	assert.Equal(t, "res-cover.jpg", got.Href)
}

func TestFindByRelation_FallsBackInOrder(t *testing.T) {
	p := &Publication{
		Links: []*Link{link("nav-from-links.xhtml", RelContents)},
		Spine: []*Link{link("ch1.xhtml"), link("nav.xhtml", RelContents)},
	}
	got, ok := p.NavigationDocument()
	require.True(t, ok)
	assert.Equal(t, "nav.xhtml", got.Href)

	p.Spine = nil
	got, ok = p.NavigationDocument()
	require.True(t, ok)
	assert.Equal(t, "nav-from-links.xhtml", got.Href)
}

func TestFindByRelation_Absent(t *testing.T) {
	p := &Publication{Links: []*Link{link("manifest.json", RelSelf)}}
	got, ok := p.FindByRelation(RelCover)
	assert.False(t, ok)
	assert.Nil(t, got)

	_, ok = (&Publication{}).FindByRelation(RelCover)
	assert.False(t, ok)
}

func TestAddLink(t *testing.T) {
	p := &Publication{}
	p.AddLink("application/webpub+json", []string{RelSelf, RelSelf, "alternate"}, "https://example.com/manifest.json", nil)

	require.Len(t, p.Links, 1)
	l := p.Links[0]
	assert.Equal(t, "https://example.com/manifest.json", l.Href)
	assert.Equal(t, "application/webpub+json", l.TypeLink)
	assert.Equal(t, []string{RelSelf, "alternate"}, []string(l.Rel))
	assert.Nil(t, l.Templated)

	no := false
	p.AddLink("text/html", nil, "search{?q}", &no)
	require.Len(t, p.Links, 2)
	require.NotNil(t, p.Links[1].Templated)
	assert.False(t, *p.Links[1].Templated)

	no = true
	assert.False(t, *p.Links[1].Templated, "templated must not alias the caller's bool")
}

func TestCollection(t *testing.T) {
	p := &Publication{LOA: []*Link{link("a.mp3")}, PageList: []*Link{link("p1.xhtml")}}

	loa, ok := p.Collection("loa")
	require.True(t, ok)
	assert.Len(t, loa, 1)

	pages, ok := p.Collection("page-list")
	require.True(t, ok)
	assert.Equal(t, "p1.xhtml", pages[0].Href)

	_, ok = p.Collection("images")
	assert.False(t, ok)

	for _, k := range CollectionKeys() {
		_, ok := p.Collection(k)
		assert.True(t, ok, k)
	}
}

func TestOnDeserialized_WarnsOnMissingParts(t *testing.T) {
	var buf bytes.Buffer
	p := &Publication{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	p.OnDeserialized()
	assert.Contains(t, buf.String(), "publication metadata is not set")
	assert.Contains(t, buf.String(), "publication links are not set")

	buf.Reset()
	p.Metadata = &Metadata{}
	p.Links = []*Link{}
	p.OnDeserialized()
	assert.Empty(t, buf.String())
}

func TestContributors_Forms(t *testing.T) {
	var m Metadata
	err := json.Unmarshal([]byte(`{
		"title": {"fr": "Vingt mille lieues", "en": "Twenty Thousand Leagues"},
		"author": "Jules Verne",
		"narrator": [{"name": "Reader One"}, "Reader Two"]
	}`), &m)
	require.NoError(t, err)

	assert.Equal(t, "Twenty Thousand Leagues", m.Title.String())
	assert.Equal(t, []string{"Jules Verne"}, m.Author.Names())
	assert.Equal(t, []string{"Reader One", "Reader Two"}, m.Narrator.Names())
}
