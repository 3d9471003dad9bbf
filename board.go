package ledkit

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hubertat/ledkit/encoder"
)

const usbClockHz = 48_000_000

// Port names a GPIO bank, "A" through "K" on the reference board.
type Port string

// PinRef addresses one physical pin as port plus line, printed like "PB0".
type PinRef struct {
	Port Port
	Line uint8
}

func (p PinRef) String() string {
	return fmt.Sprintf("P%s%d", p.Port, p.Line)
}

type ClockConfig struct {
	ExternalOscillatorHz uint32
	SystemClockHz        uint32
	PeripheralClockHz    uint32
	RequireUSBClock      bool
}

// Validate checks the config can be produced by a PLL and APB prescaler.
func (c ClockConfig) Validate() error {
	if c.ExternalOscillatorHz == 0 || c.SystemClockHz == 0 || c.PeripheralClockHz == 0 {
		return errors.Errorf("clock config has a zero frequency: %+v", c)
	}
	if c.PeripheralClockHz > c.SystemClockHz {
		return errors.Errorf("peripheral clock %d Hz exceeds system clock %d Hz", c.PeripheralClockHz, c.SystemClockHz)
	}
	if c.SystemClockHz%c.PeripheralClockHz != 0 {
		return errors.Errorf("peripheral clock %d Hz is not a prescaled system clock", c.PeripheralClockHz)
	}
	switch c.SystemClockHz / c.PeripheralClockHz {
	case 1, 2, 4, 8, 16:
	default:
		return errors.Errorf("no prescaler divides %d Hz down to %d Hz", c.SystemClockHz, c.PeripheralClockHz)
	}
	if c.RequireUSBClock && c.SystemClockHz%usbClockHz != 0 {
		return errors.Errorf("usb clock required but system clock %d Hz is not a multiple of 48 MHz", c.SystemClockHz)
	}
	return nil
}

// Clocks reports the frequencies a board actually runs at.
type Clocks struct {
	SystemHz     uint32
	PeripheralHz uint32
	USB          bool
}

// PortPins hands out the pins of one split port.
type PortPins interface {
	Output(line uint8) (PinHandle, error)
}

// Board is the one-time bring-up surface of a concrete board. BringUp calls
// it in a fixed order and never again afterwards.
type Board interface {
	AcquirePeripherals() error
	ConfigureClocks(cfg ClockConfig) (Clocks, error)
	SplitPort(port Port) (PortPins, error)
	DelayProvider(clocks Clocks) (Delayer, error)
	QuadratureCounter(channel EncoderChannel, clocks Clocks) (*encoder.Counter, error)
}
