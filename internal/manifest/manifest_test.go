package manifest

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/mediaoverlay"
	"github.com/starford/folio/internal/publication"
)

const sampleManifest = `{
  "@context": ["https://readium.org/webpub-manifest/context.jsonld", "https://example.com/ext.jsonld"],
  "metadata": {
    "@type": "http://schema.org/Book",
    "identifier": "urn:isbn:9780000000001",
    "title": "Moby-Dick",
    "author": "Herman Melville",
    "language": "en"
  },
  "links": [
    {"rel": "self", "href": "https://example.com/moby/manifest.json", "type": "application/webpub+json"}
  ],
  "readingOrder": [
    {"href": "c001.xhtml", "type": "application/xhtml+xml", "properties": {"mediaOverlay": "overlays/c001.json"}},
    {"href": "c002.xhtml", "type": "application/xhtml+xml"}
  ],
  "resources": [
    {"rel": ["cover", "alternate"], "href": "images/cover.jpg", "type": "image/jpeg", "height": 800, "width": 600},
    {"rel": "contents", "href": "toc.xhtml", "type": "application/xhtml+xml"}
  ],
  "toc": [
    {"href": "c001.xhtml", "title": "Loomings", "children": [{"href": "c001.xhtml#p2", "title": "Part"}]}
  ],
  "page-list": [{"href": "c001.xhtml#page1"}],
  "landmarks": [{"href": "c001.xhtml", "rel": "bodymatter"}],
  "loi": [{"href": "c002.xhtml#fig1"}],
  "loa": [{"href": "audio/c001.mp3", "type": "audio/mpeg"}],
  "lov": [{"href": "video/intro.mp4"}],
  "lot": [{"href": "c002.xhtml#table1"}],
  "x-unknown": true
}`

const sampleOverlay = `{
  "role": "chapter",
  "narration": [
    {"text": "c001.xhtml#p1", "audio": "audio/c001.mp3#t=0,2.5"},
    {"role": ["aside", "note"], "narration": [
      {"text": "c001.xhtml#p2", "audio": "audio/c001.mp3#t=2.5,00:00:04"}
    ]}
  ]
}`

func writePackage(t *testing.T, files map[string]string) archive.Archive {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	arc, err := archive.OpenDir(root)
	require.NoError(t, err)
	return arc
}

func TestDecode_BindsEveryCollection(t *testing.T) {
	p, err := Decode([]byte(sampleManifest), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://readium.org/webpub-manifest/context.jsonld", "https://example.com/ext.jsonld"}, []string(p.Context))
	require.NotNil(t, p.Metadata)
	assert.Equal(t, "Moby-Dick", p.Metadata.Title.String())
	assert.Equal(t, []string{"Herman Melville"}, p.Metadata.Author.Names())

	for _, key := range publication.CollectionKeys() {
		coll, ok := p.Collection(key)
		require.True(t, ok)
		assert.NotEmpty(t, coll, key)
	}

	assert.Equal(t, "overlays/c001.json", p.Spine[0].MediaOverlay())
	assert.Equal(t, "Part", p.TOC[0].Children[0].Title)

	cover, ok := p.Cover()
	require.True(t, ok)
	assert.Equal(t, "images/cover.jpg", cover.Href)
	assert.Equal(t, 800, cover.Height)

	nav, ok := p.NavigationDocument()
	require.True(t, ok)
	assert.Equal(t, "toc.xhtml", nav.Href)
}

func TestDecode_WarnsWithoutMetadataOrLinks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p, err := Decode([]byte(`{"readingOrder": [{"href": "a.xhtml"}]}`), logger)
	require.NoError(t, err)
	assert.Len(t, p.Spine, 1)
	assert.Contains(t, buf.String(), "publication metadata is not set")
	assert.Contains(t, buf.String(), "publication links are not set")
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"links": [`), nil)
	require.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	p, err := Decode([]byte(sampleManifest), nil)
	require.NoError(t, err)
	yes := true
	p.AddLink("application/opds+json", []string{"search"}, "https://example.com/search{?q}", &yes)

	out, err := Encode(p)
	require.NoError(t, err)

	again, err := Decode(out, nil)
	require.NoError(t, err)
	assert.Len(t, again.Links, 2)
	require.NotNil(t, again.Links[1].Templated)
	assert.True(t, *again.Links[1].Templated)
	assert.Nil(t, again.Links[0].Templated)
	assert.Equal(t, []string{"cover", "alternate"}, []string(again.Resources[0].Rel))
	assert.Equal(t, p.Context, again.Context)
}

func TestDecodeOverlay_PreservesShape(t *testing.T) {
	root, err := DecodeOverlay([]byte(sampleOverlay))
	require.NoError(t, err)

	assert.Equal(t, []string{"chapter"}, []string(root.Role))
	require.Len(t, root.Children, 2)
	assert.Equal(t, "c001.xhtml#p1", root.Children[0].Text)
	aside := root.Children[1]
	assert.Equal(t, []string{"aside", "note"}, []string(aside.Role))
	require.Len(t, aside.Children, 1)
	assert.False(t, aside.Initialized)
	assert.Nil(t, aside.Children[0].AudioClipBegin)
}

func TestDecodeOverlay_RoleStringSplits(t *testing.T) {
	root, err := DecodeOverlay([]byte(`{"role": "aside  footnote", "text": "a.xhtml#n1"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"aside", "footnote"}, []string(root.Role))

	out, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role": "aside footnote", "text": "a.xhtml#n1"}`, string(out))
}

func TestLoad_AttachesArchiveAndLicense(t *testing.T) {
	arc := writePackage(t, map[string]string{
		Entry:                   sampleManifest,
		"overlays/c001.json":    sampleOverlay,
		"META-INF/license.lcpl": `{"id": "lic-1", "provider": "https://provider.example", "encryption": {"profile": "http://readium.org/lcp/basic-profile"}}`,
	})

	p, err := Load(arc, nil)
	require.NoError(t, err)
	require.NotNil(t, p.LCP)
	assert.Equal(t, "lic-1", p.LCP.ID)

	got, ok := Archive(p)
	require.True(t, ok)
	assert.Same(t, arc, got)

	p.Teardown()
	_, ok = Archive(p)
	assert.False(t, ok)
	_, err = arc.ReadEntry(Entry)
	assert.Error(t, err, "archive must be released by Teardown")
}

func TestLoad_BadLicenseIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	arc := writePackage(t, map[string]string{
		Entry:          sampleManifest,
		"license.lcpl": `{"id": "no-provider"}`,
	})

	p, err := Load(arc, slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, err)
	assert.Nil(t, p.LCP)
	assert.Contains(t, buf.String(), "license skipped")
}

func TestLoad_MissingManifest(t *testing.T) {
	arc := writePackage(t, map[string]string{"other.json": "{}"})
	_, err := Load(arc, nil)
	require.Error(t, err)
}

func TestLoadOverlay_Annotates(t *testing.T) {
	arc := writePackage(t, map[string]string{
		Entry:                sampleManifest,
		"overlays/c001.json": sampleOverlay,
	})
	p, err := Load(arc, nil)
	require.NoError(t, err)
	defer p.Teardown()

	root, err := LoadOverlay(p, p.Spine[0].MediaOverlay(), mediaoverlay.ClockParser{})
	require.NoError(t, err)
	require.True(t, root.Initialized)
	assert.Equal(t, 4.0, *root.Duration)
	leaf := root.Children[1].Children[0]
	assert.Equal(t, "overlays/c001.json", leaf.SmilPathInZip)
	assert.Equal(t, 2.5, *leaf.TotalElapsedTime)
	assert.Equal(t, "p2", leaf.TextID)
}

func TestLoadOverlay_NoArchive(t *testing.T) {
	_, err := LoadOverlay(&publication.Publication{}, "overlays/c001.json", mediaoverlay.ClockParser{})
	require.Error(t, err)
}
