package midi

import (
	"github.com/leandrodaf/riano/internal/logger"
	"github.com/leandrodaf/riano/internal/midi/midimsg"
	"github.com/leandrodaf/riano/sdk/contracts"
)

// DefaultClientName is the name the client registers with the MIDI subsystem.
const DefaultClientName = "riano"

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if !options.LogLevelSet {
		options.LogLevel = contracts.InfoLevel
	}
	if options.MIDIEventFilter == nil {
		options.MIDIEventFilter = midimsg.DefaultFilter()
	}
	if options.CoreMIDIConfig == nil || options.CoreMIDIConfig.ClientName == "" {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: DefaultClientName}
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}
