package config

import (
	"errors"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func TestDecode_EmptyKeepsDefaults(t *testing.T) {
	s := &sample{Name: "default", Count: 2}
	if err := Decode([]byte(""), s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Name != "default" || s.Count != 2 {
		t.Errorf("defaults overwritten: %+v", s)
	}
}

func TestDecode_ExpandsEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "shelf")
	s := &sample{}
	if err := Decode([]byte("name: ${CONFIG_TEST_NAME}\ncount: 3\n"), s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Name != "shelf" || s.Count != 3 {
		t.Errorf("got %+v", s)
	}
}

func TestDecode_RunsValidator(t *testing.T) {
	if err := Decode([]byte("count: -1\n"), &sample{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDecode_UnknownField(t *testing.T) {
	if err := Decode([]byte("colour: blue\n"), &sample{}); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadOptional_MissingFile(t *testing.T) {
	s := &sample{Name: "default"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), s); err != nil {
		t.Fatalf("missing file should keep defaults: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("name = %q", s.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &sample{}); err == nil {
		t.Fatal("expected read error")
	}
}
