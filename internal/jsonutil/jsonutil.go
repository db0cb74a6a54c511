// Package jsonutil holds the JSON converters shared by the manifest types:
// string lists that arrive either as a delimited string or as an array, and
// language maps that collapse to a plain string.
package jsonutil

import (
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StringList is a whitespace-delimited token list, e.g. `"role": "note aside"`.
// An array form is accepted on input; output is always the joined string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = strings.Fields(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("jsonutil: string list: %w", err)
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, strings.Fields(item)...)
	}
	*l = out
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	return json.Marshal(strings.Join(l, " "))
}

// StringOrArray accepts a single string or an array of strings. A single
// value is written back as a plain string.
type StringOrArray []string

func (a *StringOrArray) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = StringOrArray{s}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("jsonutil: string or array: %w", err)
	}
	*a = arr
	return nil
}

func (a StringOrArray) MarshalJSON() ([]byte, error) {
	switch len(a) {
	case 0:
		if a == nil {
			return []byte("null"), nil
		}
		return []byte("[]"), nil
	case 1:
		return json.Marshal(a[0])
	default:
		return json.Marshal([]string(a))
	}
}

// LocalizedString is either a plain string or a BCP-47 language map.
type LocalizedString struct {
	Value        string
	Translations map[string]string
}

func (ls *LocalizedString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*ls = LocalizedString{Value: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("jsonutil: localized string: %w", err)
	}
	*ls = LocalizedString{Translations: m}
	return nil
}

func (ls LocalizedString) MarshalJSON() ([]byte, error) {
	if len(ls.Translations) == 0 {
		return json.Marshal(ls.Value)
	}
	return json.Marshal(ls.Translations)
}

// String returns the plain value, else the "en" or "und" translation, else
// the translation with the lowest language tag.
func (ls LocalizedString) String() string {
	if ls.Value != "" || len(ls.Translations) == 0 {
		return ls.Value
	}
	for _, lang := range []string{"en", "und"} {
		if v, ok := ls.Translations[lang]; ok {
			return v
		}
	}
	keys := make([]string, 0, len(ls.Translations))
	for k := range ls.Translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ls.Translations[keys[0]]
}
