// Package license decodes LCP license documents attached to protected
// publications. Signatures are carried but not verified.
package license

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Relation of the link pointing at the protected publication.
const RelPublication = "publication"

// License is a parsed license document (license.lcpl).
type License struct {
	ID         string     `json:"id"`
	Issued     time.Time  `json:"issued"`
	Updated    *time.Time `json:"updated,omitempty"`
	Provider   string     `json:"provider"`
	Encryption Encryption `json:"encryption"`
	Links      []Link     `json:"links,omitempty"`
	Rights     *Rights    `json:"rights,omitempty"`
	User       *User      `json:"user,omitempty"`
	Signature  *Signature `json:"signature,omitempty"`
}

type Encryption struct {
	Profile    string     `json:"profile"`
	ContentKey ContentKey `json:"content_key"`
	UserKey    UserKey    `json:"user_key"`
}

type ContentKey struct {
	Algorithm      string `json:"algorithm"`
	EncryptedValue string `json:"encrypted_value"`
}

type UserKey struct {
	Algorithm string `json:"algorithm"`
	TextHint  string `json:"text_hint"`
	KeyCheck  string `json:"key_check"`
}

type Link struct {
	Rel       string `json:"rel"`
	Href      string `json:"href"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Length    int64  `json:"length,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

type Rights struct {
	Print *int       `json:"print,omitempty"`
	Copy  *int       `json:"copy,omitempty"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

type Signature struct {
	Algorithm   string `json:"algorithm"`
	Certificate string `json:"certificate"`
	Value       string `json:"value"`
}

// Parse decodes a license document and checks the fields every license
// must carry.
func Parse(data []byte) (*License, error) {
	var l License
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("license: decode: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("license: %w", err)
	}
	return &l, nil
}

// Validate checks the required license fields.
func (l *License) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.ID, validation.Required),
		validation.Field(&l.Provider, validation.Required),
		validation.Field(&l.Encryption),
	)
}

// Validate checks the encryption profile is named.
func (e Encryption) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Profile, validation.Required),
	)
}

// PublicationLink returns the link to the protected publication, if any.
func (l *License) PublicationLink() (Link, bool) {
	for _, link := range l.Links {
		if link.Rel == RelPublication {
			return link, true
		}
	}
	return Link{}, false
}

// Active reports whether t falls inside the rights window. A license
// without start or end bounds is open on that side.
func (l *License) Active(t time.Time) bool {
	if l.Rights == nil {
		return true
	}
	if l.Rights.Start != nil && t.Before(*l.Rights.Start) {
		return false
	}
	if l.Rights.End != nil && t.After(*l.Rights.End) {
		return false
	}
	return true
}
