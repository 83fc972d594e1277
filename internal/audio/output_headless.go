//go:build headless

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// HeadlessOutput pulls from the source in real time and discards the PCM.
type HeadlessOutput struct {
	reader *pcmReader
	cfg    Config
	logger contracts.Logger
	mutex  sync.Mutex
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewOutput returns an output that needs no audio device.
func NewOutput(cfg Config, logger contracts.Logger, onError ErrorHandler) (Output, error) {
	cfg = cfg.withDefaults()
	logger.Info("Headless audio output opened", logger.Field().Int("sampleRate", cfg.SampleRate))
	return &HeadlessOutput{reader: &pcmReader{}, cfg: cfg, logger: logger}, nil
}

func (h *HeadlessOutput) Setup(src Source) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.reader.src = src
}

func (h *HeadlessOutput) Start() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.reader.src == nil {
		return fmt.Errorf("%w: no source installed", ErrAudioOutput)
	}
	if h.done != nil {
		return nil
	}
	h.done = make(chan struct{})
	buf := make([]byte, h.cfg.BufferBytes())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.cfg.BufferDuration())
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				_, _ = h.reader.Read(buf)
			}
		}
	}()
	return nil
}

func (h *HeadlessOutput) Close() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.done != nil {
		close(h.done)
		h.wg.Wait()
		h.done = nil
	}
	return nil
}
