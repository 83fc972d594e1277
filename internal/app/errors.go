package app

import (
	"errors"
	"fmt"
)

// ExitCode is the process status for a failure kind.
type ExitCode int

const (
	ExitOK             ExitCode = 0
	ExitUsage          ExitCode = 1
	ExitSoundFont      ExitCode = 2
	ExitSynthesizer    ExitCode = 3
	ExitMIDI           ExitCode = 4
	ExitDeviceNotFound ExitCode = 5
	ExitAudio          ExitCode = 6
)

// ErrUsage reports missing or invalid command line arguments.
var ErrUsage = errors.New("invalid arguments")

// Error attaches an exit code to a failure.
type Error struct {
	Code ExitCode
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func fail(code ExitCode, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCodeOf maps err to the status the process should exit with.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	// Anything unclassified is reported like a usage failure, status 1.
	return ExitUsage
}
