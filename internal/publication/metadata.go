package publication

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/starford/folio/internal/jsonutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Metadata describes the publication. Only the fields the catalog and the
// reader surface are modelled.
type Metadata struct {
	RDFType            string                    `json:"@type,omitempty"`
	Identifier         string                    `json:"identifier,omitempty"`
	Title              jsonutil.LocalizedString  `json:"title"`
	Subtitle           *jsonutil.LocalizedString `json:"subtitle,omitempty"`
	Author             Contributors              `json:"author,omitempty"`
	Narrator           Contributors              `json:"narrator,omitempty"`
	Publisher          Contributors              `json:"publisher,omitempty"`
	Language           jsonutil.StringOrArray    `json:"language,omitempty"`
	Description        string                    `json:"description,omitempty"`
	Modified           string                    `json:"modified,omitempty"`
	Published          string                    `json:"published,omitempty"`
	Duration           float64                   `json:"duration,omitempty"`
	ReadingProgression string                    `json:"readingProgression,omitempty"`
}

// Contributor is an author, narrator or publisher.
type Contributor struct {
	Name       jsonutil.LocalizedString `json:"name"`
	Identifier string                   `json:"identifier,omitempty"`
	Role       jsonutil.StringOrArray   `json:"role,omitempty"`
}

// Contributors accepts a bare name, a contributor object, or an array mixing
// both.
type Contributors []Contributor

func (c *Contributors) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = nil
		return nil
	}
	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		raw = []jsoniter.RawMessage{b}
	}
	out := make(Contributors, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, Contributor{Name: jsonutil.LocalizedString{Value: name}})
			continue
		}
		var one Contributor
		if err := json.Unmarshal(item, &one); err != nil {
			return fmt.Errorf("publication: contributor: %w", err)
		}
		out = append(out, one)
	}
	*c = out
	return nil
}

// Names returns the display name of each contributor.
func (c Contributors) Names() []string {
	out := make([]string, 0, len(c))
	for _, one := range c {
		out = append(out, one.Name.String())
	}
	return out
}
