package midi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leandrodaf/riano/sdk/contracts"
)

// ErrDeviceNotFound is returned by FindDevice when no name matches.
var ErrDeviceNotFound = errors.New("MIDI device not found")

// FindDevice returns the index of the first device whose name contains substr.
// The match is case sensitive.
func FindDevice(devices []contracts.DeviceInfo, substr string) (int, error) {
	if substr == "" {
		return -1, fmt.Errorf("%w: empty device name", ErrDeviceNotFound)
	}
	for i, d := range devices {
		if strings.Contains(d.Name, substr) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrDeviceNotFound, substr)
}
