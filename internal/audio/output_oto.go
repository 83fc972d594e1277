//go:build !headless

package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/leandrodaf/riano/sdk/contracts"
)

const errorPollInterval = 250 * time.Millisecond

// OtoOutput plays through the default device via oto.
type OtoOutput struct {
	ctx     *oto.Context
	player  *oto.Player
	reader  *pcmReader
	cfg     Config
	logger  contracts.Logger
	onError ErrorHandler

	started atomic.Bool
	mutex   sync.Mutex // setup and control only, never taken by Read
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewOutput opens the default output device as a float32 stream and waits until it is ready.
// onError may be nil; stream errors are then only logged.
func NewOutput(cfg Config, logger contracts.Logger, onError ErrorHandler) (Output, error) {
	cfg = cfg.withDefaults()
	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.ChannelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.BufferDuration(),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioOutput, err)
	}
	<-ready

	logger.Info("Audio output opened",
		logger.Field().Int("sampleRate", cfg.SampleRate),
		logger.Field().Int("blockSize", cfg.BlockSize),
		logger.Field().Int("channels", cfg.ChannelCount))

	return &OtoOutput{
		ctx:     ctx,
		reader:  &pcmReader{samples: make([]float32, cfg.BlockSize*cfg.ChannelCount)},
		cfg:     cfg,
		logger:  logger,
		onError: onError,
		done:    make(chan struct{}),
	}, nil
}

// Setup installs src as the sample producer. It must be called before Start.
func (o *OtoOutput) Setup(src Source) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.reader.src = src
	o.player = o.ctx.NewPlayer(o.reader)
	o.player.SetBufferSize(o.cfg.BufferBytes())
}

// Start begins pulling samples and watching the stream for errors.
func (o *OtoOutput) Start() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player == nil {
		return fmt.Errorf("%w: no source installed", ErrAudioOutput)
	}
	if o.started.Load() {
		return nil
	}
	o.player.Play()
	o.started.Store(true)

	o.wg.Add(1)
	go o.watch(o.player)
	return nil
}

// watch reports each distinct player error once. It never restarts the stream.
func (o *OtoOutput) watch(player *oto.Player) {
	defer o.wg.Done()
	ticker := time.NewTicker(errorPollInterval)
	defer ticker.Stop()

	var last error
	for {
		select {
		case <-o.done:
			return
		case <-ticker.C:
			err := player.Err()
			if err == nil || errors.Is(err, last) {
				continue
			}
			last = err
			o.logger.Error("Audio stream error", o.logger.Field().Error("error", err))
			if o.onError != nil {
				o.onError(err)
			}
		}
	}
}

// Close stops playback. Safe to call more than once.
func (o *OtoOutput) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player == nil {
		return nil
	}
	if o.started.Swap(false) {
		close(o.done)
		o.wg.Wait()
	}
	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}
