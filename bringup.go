package ledkit

import (
	"github.com/pkg/errors"

	"github.com/hubertat/ledkit/encoder"
)

// System is what bring-up leaves behind for the runtime loop.
type System struct {
	Leds     *Registry
	Delay    Delayer
	Clocks   Clocks
	Encoders map[int]*encoder.Counter
}

// BringUp configures board once, in order: peripherals, clocks, ports,
// encoders, LED outputs, delay provider. Every LED handle is moved into leds,
// which must have no populated slot yet.
func BringUp(board Board, layout Layout, leds *Registry) (*System, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := layout.Clocks.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid clock config")
	}

	if err := board.AcquirePeripherals(); err != nil {
		return nil, errors.Wrap(err, "failed to acquire peripherals")
	}

	clocks, err := board.ConfigureClocks(layout.Clocks)
	if err != nil {
		return nil, errors.Wrap(err, "failed to configure clocks")
	}

	ports := make(map[Port]PortPins)
	for _, port := range layout.Ports() {
		pins, err := board.SplitPort(port)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to split port %s", port)
		}
		ports[port] = pins
	}

	sys := &System{
		Leds:     leds,
		Clocks:   clocks,
		Encoders: make(map[int]*encoder.Counter),
	}

	for _, ch := range layout.Encoders {
		if !ch.Enabled {
			continue
		}
		counter, err := board.QuadratureCounter(ch, clocks)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to configure encoder %d (%s)", ch.Number, ch.Timer)
		}
		sys.Encoders[ch.Number] = counter
	}

	handles := make(map[LedId]PinHandle, len(layout.Leds))
	for _, lp := range layout.Leds {
		pin, err := ports[lp.Pin.Port].Output(lp.Pin.Line)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to configure %s output %s", lp.Led, lp.Pin)
		}
		if lp.Invert {
			pin = invertedPin{pin}
		}
		handles[lp.Led] = pin
	}

	sys.Delay, err = board.DelayProvider(clocks)
	if err != nil {
		return nil, errors.Wrap(err, "failed to configure delay provider")
	}

	for _, id := range AllLeds() {
		if err := leds.Initialize(id, handles[id]); err != nil {
			return nil, err
		}
	}
	if err := leds.Check(); err != nil {
		return nil, err
	}

	return sys, nil
}

// invertedPin drives an active-low LED so that High still lights it.
type invertedPin struct {
	PinHandle
}

func (p invertedPin) Set(state bool) error {
	return p.PinHandle.Set(!state)
}

func (p invertedPin) GetState() (bool, error) {
	state, err := p.PinHandle.GetState()
	return !state, err
}
