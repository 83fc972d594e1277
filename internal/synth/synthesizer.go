package synth

import (
	"errors"
	"fmt"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

// ErrSynthesizer is returned when the synthesizer cannot be created.
var ErrSynthesizer = errors.New("cannot create synthesizer")

// Settings configures the synthesizer. Zero values take the defaults.
type Settings struct {
	SampleRate            int
	BlockSize             int
	MaximumPolyphony      int
	EnableReverbAndChorus bool
}

const (
	DefaultSampleRate       = 44100
	DefaultBlockSize        = 64
	DefaultMaximumPolyphony = 64
)

// DefaultSettings matches the values meltysynth picks for a 44.1 kHz synthesizer.
func DefaultSettings() Settings {
	return Settings{
		SampleRate:            DefaultSampleRate,
		BlockSize:             DefaultBlockSize,
		MaximumPolyphony:      DefaultMaximumPolyphony,
		EnableReverbAndChorus: true,
	}
}

func (s Settings) withDefaults() Settings {
	if s.SampleRate == 0 {
		s.SampleRate = DefaultSampleRate
	}
	if s.BlockSize == 0 {
		s.BlockSize = DefaultBlockSize
	}
	if s.MaximumPolyphony == 0 {
		s.MaximumPolyphony = DefaultMaximumPolyphony
	}
	return s
}

// Validate checks the ranges meltysynth accepts.
func (s Settings) Validate() error {
	s = s.withDefaults()
	switch {
	case s.SampleRate < 16000 || s.SampleRate > 192000:
		return fmt.Errorf("%w: sample rate %d out of range [16000, 192000]", ErrSynthesizer, s.SampleRate)
	case s.BlockSize < 8 || s.BlockSize > 1024:
		return fmt.Errorf("%w: block size %d out of range [8, 1024]", ErrSynthesizer, s.BlockSize)
	case s.MaximumPolyphony < 8 || s.MaximumPolyphony > 256:
		return fmt.Errorf("%w: polyphony %d out of range [8, 256]", ErrSynthesizer, s.MaximumPolyphony)
	}
	return nil
}

// New builds a synthesizer for soundFont.
func New(soundFont *meltysynth.SoundFont, s Settings) (*meltysynth.Synthesizer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.withDefaults()

	settings := meltysynth.NewSynthesizerSettings(int32(s.SampleRate))
	settings.BlockSize = int32(s.BlockSize)
	settings.MaximumPolyphony = int32(s.MaximumPolyphony)
	settings.EnableReverbAndChorus = s.EnableReverbAndChorus

	synthesizer, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesizer, err)
	}
	return synthesizer, nil
}

// Load reads the SoundFont at path and builds a synthesizer for it.
func Load(path string, s Settings) (*meltysynth.Synthesizer, error) {
	soundFont, err := LoadSoundFont(path)
	if err != nil {
		return nil, err
	}
	return New(soundFont, s)
}
