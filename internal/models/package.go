// Package models defines the library-level types shared by the catalog,
// the library storage and the shelf service.
package models

import "time"

// Package describes a publication package file in the library.
type Package struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is the catalog summary of a publication.
type Entry struct {
	Path         string    `json:"path"`
	Identifier   string    `json:"identifier,omitempty"`
	Title        string    `json:"title,omitempty"`
	Authors      []string  `json:"authors,omitempty"`
	Language     []string  `json:"language,omitempty"`
	CoverHref    string    `json:"cover_href,omitempty"`
	NavHref      string    `json:"nav_href,omitempty"`
	ReadingOrder int       `json:"reading_order"`
	HasLicense   bool      `json:"has_license"`
	Checksum     string    `json:"checksum"`
	UpdatedAt    time.Time `json:"updated_at"`
}
