package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
)

func tempLibrary(t *testing.T) *FS {
	t.Helper()
	lib, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return lib
}

func TestImportAndList(t *testing.T) {
	lib := tempLibrary(t)
	if _, err := lib.Import("a.webpub", strings.NewReader("aaa")); err != nil {
		t.Fatalf("Import: %v", err)
	}
	rel, err := lib.Import("shelf/b.audiobook", strings.NewReader("bbb"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if rel != "shelf/b.audiobook" {
		t.Errorf("rel = %q", rel)
	}
	_ = os.WriteFile(filepath.Join(lib.Root(), "readme.txt"), []byte("not a package"), 0o644)

	items, err := lib.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Checksum == "" || it.Size != 3 {
			t.Errorf("incomplete package info: %+v", it)
		}
	}
}

func TestImport_RejectsExisting(t *testing.T) {
	lib := tempLibrary(t)
	_, _ = lib.Import("dup.webpub", strings.NewReader("one"))
	_, err := lib.Import("dup.webpub", strings.NewReader("two"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestImport_RejectsNonPackage(t *testing.T) {
	lib := tempLibrary(t)
	if _, err := lib.Import("notes.txt", strings.NewReader("x")); err == nil {
		t.Error("expected error importing non-package file")
	}
}

func TestImport_NoLeftoverTempFiles(t *testing.T) {
	lib := tempLibrary(t)
	if _, err := lib.Import("atomic.webpub", strings.NewReader("content")); err != nil {
		t.Fatalf("Import: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(lib.root, ".folio-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestRemove(t *testing.T) {
	lib := tempLibrary(t)
	_, _ = lib.Import("del.webpub", strings.NewReader("bye"))
	if err := lib.Remove("del.webpub"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := lib.Remove("del.webpub"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Remove err = %v, want ErrNotFound", err)
	}
	if err := lib.Remove(""); err == nil {
		t.Error("removing the root must fail")
	}
}

func TestOpen_Missing(t *testing.T) {
	lib := tempLibrary(t)
	if _, err := lib.Open("ghost.webpub"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	lib := tempLibrary(t)
	for _, p := range []string{"../../etc/passwd.zip", "../outside.webpub", "/etc/shadow.zip"} {
		if _, err := lib.Open(p); err == nil {
			t.Errorf("expected error opening %q", p)
		}
		if _, err := lib.Import(p, strings.NewReader("x")); err == nil {
			t.Errorf("expected error importing to %q", p)
		}
	}
}

func TestIsPackage(t *testing.T) {
	for name, want := range map[string]bool{
		"book.webpub":    true,
		"BOOK.AUDIOBOOK": true,
		"comic.divina":   true,
		"a.lcpdf":        true,
		"notes.md":       false,
		"webpub":         false,
	} {
		if got := IsPackage(name); got != want {
			t.Errorf("IsPackage(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "folio-test-*")
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestStat(t *testing.T) {
	lib := tempLibrary(t)
	_, _ = lib.Import("one.webpub", strings.NewReader("12345"))

	pkg, err := lib.Stat("one.webpub")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if pkg.Path != "one.webpub" || pkg.Size != 5 || pkg.Checksum == "" {
		t.Errorf("pkg = %+v", pkg)
	}
	if _, err := lib.Stat("two.webpub"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
