// Package testutil provides shared test helpers for building libraries and
// publication packages.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/starford/folio/internal/library"
)

// TestLibrary creates a temporary library directory with a library.Provider.
func TestLibrary(t *testing.T) (string, *library.FS) {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, lib
}

// TestDBPath returns a temporary SQLite file path that is removed after the test.
func TestDBPath(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() {
		os.Remove(f.Name())
		os.Remove(f.Name() + "-wal")
		os.Remove(f.Name() + "-shm")
	})
	return f.Name()
}

// Manifest returns a minimal manifest with a cover, a navigation document
// and one narrated reading-order item.
func Manifest(title, author string) string {
	return fmt.Sprintf(`{
  "@context": "https://readium.org/webpub-manifest/context.jsonld",
  "metadata": {"identifier": "urn:test:%[1]s", "title": %[1]q, "author": %[2]q, "language": "en"},
  "links": [{"rel": "self", "href": "manifest.json", "type": "application/webpub+json"}],
  "readingOrder": [
    {"href": "c1.xhtml", "type": "application/xhtml+xml", "properties": {"mediaOverlay": "overlays/c1.json"}}
  ],
  "resources": [
    {"rel": "cover", "href": "cover.jpg", "type": "image/jpeg"},
    {"rel": "contents", "href": "toc.xhtml", "type": "application/xhtml+xml"}
  ]
}`, title, author)
}

// Overlay is the narration document referenced by Manifest.
const Overlay = `{"role": "chapter", "narration": [
  {"text": "c1.xhtml#s1", "audio": "audio/c1.mp3#t=0,1.5"},
  {"text": "c1.xhtml#s2", "audio": "audio/c1.mp3#t=1.5,3"}
]}`

// WritePackage writes a zip package named name under dir. files maps entry
// paths to content.
func WritePackage(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	// Write beside the target and rename so watchers never see a partial zip.
	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	f, err := os.Create(tmp)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for entry, content := range files {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteBook writes a package with Manifest, Overlay and a cover image.
func WriteBook(t *testing.T, dir, name, title, author string) string {
	t.Helper()
	return WritePackage(t, dir, name, map[string]string{
		"manifest.json":    Manifest(title, author),
		"overlays/c1.json": Overlay,
		"cover.jpg":        "JFIF-cover",
		"c1.xhtml":         "<html/>",
	})
}
