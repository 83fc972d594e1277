// Package synth loads SoundFont banks and builds the meltysynth synthesizer
// that the render loop drives.
package synth

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

var (
	// ErrSoundFontNotFound is returned when the SoundFont path does not exist.
	ErrSoundFontNotFound = errors.New("SoundFont not found")
	// ErrSoundFontInvalid is returned when the file is not a usable SoundFont.
	ErrSoundFontInvalid = errors.New("invalid SoundFont")
)

// ReadSoundFont reads the raw bytes of a SoundFont file.
func ReadSoundFont(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSoundFontNotFound, path)
		}
		return nil, fmt.Errorf("failed to read SoundFont file: %w", err)
	}
	return data, nil
}

// ParseSoundFont parses SoundFont bytes.
func ParseSoundFont(data []byte) (sf *meltysynth.SoundFont, err error) {
	// Truncated banks can make the parser index past its buffers.
	defer func() {
		if r := recover(); r != nil {
			sf, err = nil, fmt.Errorf("%w: %v", ErrSoundFontInvalid, r)
		}
	}()

	sf, err = meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSoundFontInvalid, err)
	}
	return sf, nil
}

// LoadSoundFont reads and parses the SoundFont at path.
func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	data, err := ReadSoundFont(path)
	if err != nil {
		return nil, err
	}
	return ParseSoundFont(data)
}
