// Command riano-chord holds a C major chord on a SoundFont until interrupted.
// It is handy for checking a bank and the audio device without a keyboard.
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
	code := app.MainChord(ctx, os.Args[1:], app.DefaultDeps())
	stop()
	os.Exit(code)
}
