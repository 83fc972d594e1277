// Package audio opens the system default output device and pulls
// interleaved float32 stereo PCM from a Source.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// ErrAudioOutput wraps failures to open or start the output device.
var ErrAudioOutput = errors.New("audio output unavailable")

const (
	DefaultSampleRate   = 44100
	DefaultBlockSize    = 512
	DefaultChannelCount = 2
	bytesPerSample      = 4
)

// Config describes the requested stream.
type Config struct {
	SampleRate   int // Frames per second.
	BlockSize    int // Frames per device buffer request.
	ChannelCount int // Only stereo is produced by the render loop.
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.ChannelCount <= 0 {
		c.ChannelCount = DefaultChannelCount
	}
	return c
}

// BufferDuration is the wall time of one block.
func (c Config) BufferDuration() time.Duration {
	c = c.withDefaults()
	return time.Duration(c.BlockSize) * time.Second / time.Duration(c.SampleRate)
}

// BufferBytes is the size of one block of float32 PCM.
func (c Config) BufferBytes() int {
	c = c.withDefaults()
	return c.BlockSize * c.ChannelCount * bytesPerSample
}

// Source produces interleaved samples; render.Loop implements it.
type Source interface {
	Render(dst []float32)
}

// Output is a started-on-demand audio stream.
type Output interface {
	Setup(src Source)
	Start() error
	Close() error
}

// ErrorHandler receives stream errors. It must only report them.
type ErrorHandler func(error)

// pcmReader adapts a Source to the byte stream audio backends pull from.
// Read is called from a single backend goroutine.
type pcmReader struct {
	src     Source
	samples []float32
}

func (r *pcmReader) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample
	if r.src == nil {
		clear(p)
		return len(p), nil
	}

	if cap(r.samples) < n {
		r.samples = make([]float32, n)
	}
	samples := r.samples[:n]
	r.src.Render(samples)
	encodeFloat32LE(p, samples)
	clear(p[n*bytesPerSample:])
	return len(p), nil
}

// encodeFloat32LE writes samples into p as little-endian IEEE 754 floats.
func encodeFloat32LE(p []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
}
