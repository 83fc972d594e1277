// Package render holds the real-time render loop: it is called from the audio
// thread for every buffer, applies queued note events to the synthesizer and
// writes interleaved stereo samples.
package render

import (
	"fmt"
	"sync/atomic"

	"github.com/leandrodaf/riano/internal/queue"
	"github.com/leandrodaf/riano/sdk/contracts"
)

// PassThroughChannel makes the loop play each event on the channel it arrived on.
const PassThroughChannel = -1

// Stats is a snapshot of loop counters.
type Stats struct {
	Buffers  uint64 // Render calls completed.
	Frames   uint64 // Stereo frames written.
	Events   uint64 // Note events applied to the synthesizer.
	Failures uint64 // Buffers replaced by silence after a synthesizer panic.
}

// Loop owns a synthesizer and feeds it from a queue.
// Render must not be called concurrently; audio backends serialize their pulls.
type Loop struct {
	synth   contracts.Synthesizer
	queue   *queue.Queue
	logger  contracts.Logger
	channel int

	left  []float32
	right []float32

	buffers  atomic.Uint64
	frames   atomic.Uint64
	events   atomic.Uint64
	failures atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithChannel plays every event on channel (0-15), or on its own channel with PassThroughChannel.
func WithChannel(channel int) Option {
	return func(l *Loop) {
		l.channel = channel
	}
}

// WithLogger sets the logger used to report recovered render failures.
func WithLogger(logger contracts.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithScratchFrames preallocates the mono scratch buffers.
func WithScratchFrames(frames int) Option {
	return func(l *Loop) {
		if frames > 0 {
			l.left = make([]float32, frames)
			l.right = make([]float32, frames)
		}
	}
}

// NewLoop takes ownership of synth; callers must not touch it afterwards.
// Events are played on channel 0 unless WithChannel says otherwise.
func NewLoop(synth contracts.Synthesizer, q *queue.Queue, opts ...Option) *Loop {
	l := &Loop{synth: synth, queue: q}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Render fills dst with interleaved stereo samples, len(dst)/2 frames.
// A synthesizer panic leaves dst silent instead of taking the audio thread down.
func (l *Loop) Render(dst []float32) {
	defer func() {
		if r := recover(); r != nil {
			clear(dst)
			n := l.failures.Add(1)
			if l.logger != nil {
				l.logger.Error("synthesizer failed; rendering silence",
					l.logger.Field().Error("error", fmt.Errorf("%v", r)),
					l.logger.Field().Uint64("failures", n))
			}
		}
	}()

	applied := l.queue.Drain(l.apply)
	l.events.Add(uint64(applied))

	frames := len(dst) / 2
	if cap(l.left) < frames {
		l.left = make([]float32, frames)
		l.right = make([]float32, frames)
	}
	left, right := l.left[:frames], l.right[:frames]

	l.synth.Render(left, right)
	Interleave(dst, left, right)

	l.buffers.Add(1)
	l.frames.Add(uint64(frames))
}

func (l *Loop) apply(ev contracts.NoteEvent) {
	channel := int32(ev.Channel)
	if l.channel != PassThroughChannel {
		channel = int32(l.channel)
	}

	switch ev.Kind {
	case contracts.NoteOnKind:
		l.synth.NoteOn(channel, int32(ev.Pitch), int32(ev.Velocity))
	case contracts.NoteOffKind:
		l.synth.NoteOff(channel, int32(ev.Pitch))
	}
}

// Stats returns the loop counters. Safe to call from any goroutine.
func (l *Loop) Stats() Stats {
	return Stats{
		Buffers:  l.buffers.Load(),
		Frames:   l.frames.Load(),
		Events:   l.events.Load(),
		Failures: l.failures.Load(),
	}
}

// Interleave writes dst[2i] = left[i] and dst[2i+1] = right[i] for every frame
// that fits in dst. Samples of dst past the last full frame are zeroed.
func Interleave(dst, left, right []float32) {
	frames := min(len(dst)/2, len(left), len(right))
	for i := 0; i < frames; i++ {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}
	clear(dst[2*frames:])
}
