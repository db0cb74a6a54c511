package archive

import (
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/starford/folio/internal/apperr"
)

// Zip is a zip-packaged publication (.webpub, .audiobook, .lcpa, ...).
type Zip struct {
	name    string
	rc      *zip.ReadCloser
	entries map[string]*zip.File
}

// OpenZip opens the zip file at name and indexes its entries.
func OpenZip(name string) (*Zip, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("archive: open zip %s: %w", name, err)
	}
	entries := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries[f.Name] = f
	}
	return &Zip{name: name, rc: rc, entries: entries}, nil
}

func (z *Zip) Name() string { return z.name }

func (z *Zip) Entries() []string {
	out := make([]string, 0, len(z.entries))
	for name := range z.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (z *Zip) HasEntry(p string) bool {
	_, ok := z.entries[p]
	return ok
}

func (z *Zip) ReadEntry(p string) ([]byte, error) {
	if z.rc == nil {
		return nil, apperr.ErrReleased
	}
	f, ok := z.entries[p]
	if !ok {
		return nil, fmt.Errorf("archive: %s: %w", p, apperr.ErrNotFound)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: open entry %s: %w", p, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("archive: read entry %s: %w", p, err)
	}
	return data, nil
}

// Close releases the underlying file. Later calls return nil.
func (z *Zip) Close() error {
	if z.rc == nil {
		return nil
	}
	err := z.rc.Close()
	z.rc = nil
	z.entries = nil
	if err != nil {
		return fmt.Errorf("archive: close %s: %w", z.name, err)
	}
	return nil
}
