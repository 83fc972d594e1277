package synth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSoundFontMissing(t *testing.T) {
	_, err := LoadSoundFont(filepath.Join(t.TempDir(), "missing.sf2"))
	if !errors.Is(err, ErrSoundFontNotFound) {
		t.Fatalf("error = %v, want ErrSoundFontNotFound", err)
	}
}

func TestLoadSoundFontMalformed(t *testing.T) {
	tests := map[string][]byte{
		"empty":     {},
		"not riff":  []byte("this is not a SoundFont bank"),
		"truncated": []byte("RIFF\x10\x00\x00\x00sfbk"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bank.sf2")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSoundFont(path)
			if !errors.Is(err, ErrSoundFontInvalid) {
				t.Fatalf("error = %v, want ErrSoundFontInvalid", err)
			}
		})
	}
}

func TestLoadReportsSoundFontErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.sf2"), DefaultSettings())
	if !errors.Is(err, ErrSoundFontNotFound) {
		t.Fatalf("error = %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		ok   bool
	}{
		{"defaults", DefaultSettings(), true},
		{"zero value", Settings{}, true},
		{"48k", Settings{SampleRate: 48000, BlockSize: 128, MaximumPolyphony: 128}, true},
		{"rate too low", Settings{SampleRate: 8000}, false},
		{"block too big", Settings{BlockSize: 4096}, false},
		{"polyphony too small", Settings{MaximumPolyphony: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v", err)
			}
			if err != nil && !errors.Is(err, ErrSynthesizer) {
				t.Errorf("error %v does not wrap ErrSynthesizer", err)
			}
		})
	}
}
