// Monitor prints the note events a MIDI input produces, without any audio.
//
//	go run ./example/monitor [-log-file path] [device-name-substring]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/leandrodaf/riano/internal/logger"
	"github.com/leandrodaf/riano/internal/queue"
	"github.com/leandrodaf/riano/sdk/contracts"
	"github.com/leandrodaf/riano/sdk/midi"
)

func main() {
	logFile := flag.String("log-file", "", "write logs to this file instead of stderr")
	flag.Parse()

	log := logger.NewZapLogger()

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithLogFile(*logFile),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		os.Exit(1)
	}
	defer client.Stop()

	devices, err := client.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:")
	for i, d := range devices {
		fmt.Printf("  %d: %s\n", i, d)
	}

	deviceID := 0
	if flag.NArg() > 0 {
		if deviceID, err = midi.FindDevice(devices, flag.Arg(0)); err != nil {
			log.Error("Failed to find MIDI device", log.Field().Error("error", err))
			return
		}
	}
	if err = client.SelectDevice(deviceID); err != nil {
		log.Error("Failed to select MIDI device", log.Field().Error("error", err))
		return
	}

	events := queue.New(256, contracts.DropOldest)
	if err = client.StartCapture(events); err != nil {
		log.Error("Failed to start MIDI capture", log.Field().Error("error", err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s := events.Stats()
			log.Info("Monitor stopped",
				log.Field().Uint64("events", s.Pushed),
				log.Field().Uint64("dropped", s.Dropped))
			return
		case <-ticker.C:
			events.Drain(func(ev contracts.NoteEvent) {
				log.Info("MIDI Event",
					log.Field().Uint64("Timestamp", ev.Timestamp),
					log.Field().String("Kind", ev.Kind.String()),
					log.Field().Int("Channel", int(ev.Channel)),
					log.Field().Int("Note", int(ev.Pitch)),
					log.Field().Int("Velocity", int(ev.Velocity)),
				)
			})
		}
	}
}
