package drivers

import (
	"strings"

	"github.com/pkg/errors"
)

const defaultCdevChip = "gpiochip0"

// Config selects and parameterizes the driver behind one port.
type Config struct {
	Driver        string `toml:"driver"`
	Chip          string `toml:"chip"`
	BusNo         uint8  `toml:"bus"`
	DevNo         uint8  `toml:"device"`
	InvertInputs  bool   `toml:"invert_inputs"`
	InvertOutputs bool   `toml:"invert_outputs"`
}

// Names lists the driver names New accepts.
func Names() []string {
	return []string{gpioDriverName, mcpioDriverName, cdevDriverName, periphDriverName, mockDriverName}
}

func New(cfg Config) (IoDriver, error) {
	switch strings.ToLower(cfg.Driver) {
	case gpioDriverName:
		return &GpIO{InvertInputs: cfg.InvertInputs, InvertOutputs: cfg.InvertOutputs}, nil
	case mcpioDriverName:
		return &McpIO{BusNo: cfg.BusNo, DevNo: cfg.DevNo, InvertInputs: cfg.InvertInputs, InvertOutputs: cfg.InvertOutputs}, nil
	case cdevDriverName:
		chip := cfg.Chip
		if chip == "" {
			chip = defaultCdevChip
		}
		return &GpioCdev{Chip: chip, InvertInputs: cfg.InvertInputs, InvertOutputs: cfg.InvertOutputs}, nil
	case periphDriverName:
		return &PeriphIO{InvertInputs: cfg.InvertInputs, InvertOutputs: cfg.InvertOutputs}, nil
	case mockDriverName, "mock":
		return &MockIoDriver{}, nil
	}

	return nil, errors.Errorf("unknown io driver %q (available: %s)", cfg.Driver, strings.Join(Names(), ", "))
}
