// Command riano plays a MIDI keyboard through a SoundFont on the default audio device.
//
//	riano [flags] <soundfont.sf2> <midi-device-name>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/riano/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Main(ctx, os.Args[1:], app.DefaultDeps())
	stop()
	os.Exit(code)
}
