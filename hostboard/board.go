// Package hostboard brings up the LED board on a Linux host, with one
// IoDriver per port.
package hostboard

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/drivers"
	"github.com/hubertat/ledkit/encoder"
)

type Board struct {
	layout ledkit.Layout
	ports  map[ledkit.Port]drivers.IoDriver
	logger *log.Logger

	acquired bool
	split    map[ledkit.Port]bool
}

// New returns a board that will split ports onto the given drivers. A nil
// logger logs to stderr at the global level.
func New(layout ledkit.Layout, ports map[ledkit.Port]drivers.IoDriver, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "hostboard",
			Level:  log.GetLevel(),
		})
	}
	return &Board{
		layout: layout,
		ports:  ports,
		logger: logger,
		split:  make(map[ledkit.Port]bool),
	}
}

// AcquirePeripherals claims the board. It succeeds once, and only when every
// port the layout uses has a driver.
func (b *Board) AcquirePeripherals() error {
	if b.acquired {
		return errors.New("peripherals already acquired")
	}
	for _, port := range b.layout.Ports() {
		if b.ports[port] == nil {
			return errors.Errorf("no io driver for port %s", port)
		}
	}
	b.acquired = true
	b.logger.Debug("peripherals acquired", "ports", len(b.ports))
	return nil
}

// ConfigureClocks validates cfg; a host runs at whatever the kernel set up,
// so nothing is reprogrammed.
func (b *Board) ConfigureClocks(cfg ledkit.ClockConfig) (ledkit.Clocks, error) {
	if !b.acquired {
		return ledkit.Clocks{}, errors.New("configure clocks: peripherals not acquired")
	}
	if err := cfg.Validate(); err != nil {
		return ledkit.Clocks{}, err
	}
	b.logger.Info("clock config accepted",
		"hse", cfg.ExternalOscillatorHz,
		"sysclk", cfg.SystemClockHz,
		"pclk", cfg.PeripheralClockHz,
		"usb", cfg.RequireUSBClock)

	return ledkit.Clocks{
		SystemHz:     cfg.SystemClockHz,
		PeripheralHz: cfg.PeripheralClockHz,
		USB:          cfg.RequireUSBClock,
	}, nil
}

func widen(lines []uint8) []uint16 {
	pins := make([]uint16, 0, len(lines))
	for _, l := range lines {
		pins = append(pins, uint16(l))
	}
	return pins
}

// SplitPort sets up the driver of port with the layout's LED lines as
// outputs and its encoder lines as inputs.
func (b *Board) SplitPort(port ledkit.Port) (ledkit.PortPins, error) {
	if !b.acquired {
		return nil, errors.New("split port: peripherals not acquired")
	}
	if b.split[port] {
		return nil, errors.Errorf("port %s already split", port)
	}
	driver := b.ports[port]
	if driver == nil {
		return nil, errors.Errorf("no io driver for port %s", port)
	}

	inputs := widen(b.layout.InputLines(port))
	outputs := widen(b.layout.OutputLines(port))
	if err := driver.Setup(context.Background(), inputs, outputs); err != nil {
		return nil, errors.Wrapf(err, "failed to setup %s driver for port %s", driver, port)
	}
	b.split[port] = true

	b.logger.Debug("port split", "port", port, "driver", driver.String(), "inputs", inputs, "outputs", outputs)
	return portPins{port: port, driver: driver}, nil
}

func (b *Board) DelayProvider(clocks ledkit.Clocks) (ledkit.Delayer, error) {
	return ledkit.SleepDelay{}, nil
}

// QuadratureCounter decodes the channel in software from edge events on
// both phase inputs.
func (b *Board) QuadratureCounter(ch ledkit.EncoderChannel, clocks ledkit.Clocks) (*encoder.Counter, error) {
	a, err := b.input(ch.A)
	if err != nil {
		return nil, errors.Wrapf(err, "encoder %d phase A", ch.Number)
	}
	bIn, err := b.input(ch.B)
	if err != nil {
		return nil, errors.Wrapf(err, "encoder %d phase B", ch.Number)
	}

	levelA, err := a.GetState()
	if err != nil {
		return nil, errors.Wrapf(err, "encoder %d phase A", ch.Number)
	}
	levelB, err := bIn.GetState()
	if err != nil {
		return nil, errors.Wrapf(err, "encoder %d phase B", ch.Number)
	}

	counter := encoder.NewCounter(levelA, levelB)
	if err := a.WatchEdges(func(level bool) { counter.Edge(encoder.PhaseA, level) }); err != nil {
		return nil, errors.Wrapf(err, "encoder %d phase A on %s", ch.Number, ch.A)
	}
	if err := bIn.WatchEdges(func(level bool) { counter.Edge(encoder.PhaseB, level) }); err != nil {
		return nil, errors.Wrapf(err, "encoder %d phase B on %s", ch.Number, ch.B)
	}

	b.logger.Info("encoder configured", "channel", ch.Number, "timer", ch.Timer, "a", ch.A, "b", ch.B)
	return counter, nil
}

func (b *Board) input(ref ledkit.PinRef) (drivers.DigitalInput, error) {
	if !b.split[ref.Port] {
		return nil, errors.Errorf("port %s not split", ref.Port)
	}
	return b.ports[ref.Port].GetInput(uint16(ref.Line))
}

// Close releases every driver; errors are joined into one.
func (b *Board) Close() (err error) {
	for port, driver := range b.ports {
		if driver == nil {
			continue
		}
		if closeErr := driver.Close(); closeErr != nil {
			if err == nil {
				err = errors.Wrapf(closeErr, "close port %s", port)
			} else {
				err = errors.Wrapf(err, "close port %s: %v", port, closeErr)
			}
		}
	}
	return
}

type portPins struct {
	port   ledkit.Port
	driver drivers.IoDriver
}

func (p portPins) Output(line uint8) (ledkit.PinHandle, error) {
	out, err := p.driver.GetOutput(uint16(line))
	if err != nil {
		return nil, errors.Wrapf(err, "port %s", p.port)
	}
	return out, nil
}
