// Package manifest decodes Readium Web Publication manifests and narration
// documents into the publication model, and loads them from packages.
package manifest

import (
	"errors"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/license"
	"github.com/starford/folio/internal/mediaoverlay"
	"github.com/starford/folio/internal/publication"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is the manifest path inside a package.
const Entry = "manifest.json"

// LicenseEntries are the places a package may carry its LCP license.
var LicenseEntries = []string{"license.lcpl", "META-INF/license.lcpl"}

// Decode populates a publication from manifest JSON and runs its
// post-decode hook once. logger becomes the publication's logger.
func Decode(data []byte, logger *slog.Logger) (*publication.Publication, error) {
	p := &publication.Publication{Logger: logger}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	p.OnDeserialized()
	return p, nil
}

// Encode serializes the publication back to manifest JSON.
func Encode(p *publication.Publication) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return data, nil
}

// DecodeOverlay decodes a narration document. The document root is itself
// a node, usually carrying only a role and the narration list.
func DecodeOverlay(data []byte) (*mediaoverlay.Node, error) {
	var n mediaoverlay.Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("manifest: decode narration: %w", err)
	}
	return &n, nil
}

// Load reads the manifest of an open package and attaches the package to
// the publication, which keeps it until Teardown. A license found in the
// package is parsed into the publication's LCP field; an unreadable license
// is logged and skipped.
func Load(arc archive.Archive, logger *slog.Logger) (*publication.Publication, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := arc.ReadEntry(Entry)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", Entry, err)
	}
	p, err := Decode(data, logger.With(slog.String("package", arc.Name())))
	if err != nil {
		return nil, err
	}
	p.Attach(publication.KeyArchive, arc)

	p.LCP = loadLicense(arc, logger)
	return p, nil
}

func loadLicense(arc archive.Archive, logger *slog.Logger) *license.License {
	for _, entry := range LicenseEntries {
		raw, err := arc.ReadEntry(entry)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err == nil {
			var lic *license.License
			if lic, err = license.Parse(raw); err == nil {
				return lic
			}
		}
		logger.Warn("manifest: license skipped", slog.String("entry", entry), slog.String("error", err.Error()))
		return nil
	}
	return nil
}

// Archive returns the package attached by Load.
func Archive(p *publication.Publication) (archive.Archive, bool) {
	v, ok := p.Lookup(publication.KeyArchive)
	if !ok {
		return nil, false
	}
	arc, ok := v.(archive.Archive)
	return arc, ok
}

// LoadOverlay reads, decodes and annotates the narration document at href
// inside the publication's package.
func LoadOverlay(p *publication.Publication, href string, clock mediaoverlay.ClockParser) (*mediaoverlay.Node, error) {
	arc, ok := Archive(p)
	if !ok {
		return nil, fmt.Errorf("manifest: narration %s: no package attached", href)
	}
	entry := archive.CleanEntry(href)
	data, err := arc.ReadEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("manifest: read narration: %w", err)
	}
	root, err := DecodeOverlay(data)
	if err != nil {
		return nil, err
	}
	clock.Annotate(root, entry)
	return root, nil
}
