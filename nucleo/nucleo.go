//go:build tinygo

// Package nucleo brings up the LED board on an STM32F4 Nucleo-144 class
// microcontroller under TinyGo.
package nucleo

import (
	"machine"

	"github.com/pkg/errors"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/encoder"
)

const linesPerPort = 16

type Board struct {
	acquired bool
	split    map[ledkit.Port]bool
}

func New() *Board {
	return &Board{split: make(map[ledkit.Port]bool)}
}

// pin maps PB7 to machine.PB7: ports are consecutive banks of 16 lines.
func pin(ref ledkit.PinRef) (machine.Pin, error) {
	if len(ref.Port) != 1 || ref.Port[0] < 'A' || ref.Port[0] > 'K' {
		return machine.NoPin, errors.Errorf("no port %s on this chip", ref.Port)
	}
	if ref.Line >= linesPerPort {
		return machine.NoPin, errors.Errorf("no line %d on port %s", ref.Line, ref.Port)
	}
	return machine.Pin(int(ref.Port[0]-'A')*linesPerPort + int(ref.Line)), nil
}

func (b *Board) AcquirePeripherals() error {
	if b.acquired {
		return errors.New("peripherals already taken")
	}
	b.acquired = true
	return nil
}

// ConfigureClocks checks cfg and reports the clock the runtime set up;
// TinyGo programs the PLL before main runs.
func (b *Board) ConfigureClocks(cfg ledkit.ClockConfig) (ledkit.Clocks, error) {
	if err := cfg.Validate(); err != nil {
		return ledkit.Clocks{}, err
	}
	cpu := machine.CPUFrequency()
	return ledkit.Clocks{
		SystemHz:     cpu,
		PeripheralHz: cpu / (cfg.SystemClockHz / cfg.PeripheralClockHz),
		USB:          cfg.RequireUSBClock,
	}, nil
}

func (b *Board) SplitPort(port ledkit.Port) (ledkit.PortPins, error) {
	if !b.acquired {
		return nil, errors.New("split port: peripherals not acquired")
	}
	if b.split[port] {
		return nil, errors.Errorf("port %s already split", port)
	}
	b.split[port] = true
	return portPins{port: port}, nil
}

func (b *Board) DelayProvider(clocks ledkit.Clocks) (ledkit.Delayer, error) {
	return ledkit.SleepDelay{}, nil
}

// QuadratureCounter decodes the channel from pin-change interrupts on both
// phases. The hardware timer named by the channel is left alone.
func (b *Board) QuadratureCounter(ch ledkit.EncoderChannel, clocks ledkit.Clocks) (*encoder.Counter, error) {
	a, err := pin(ch.A)
	if err != nil {
		return nil, err
	}
	bPin, err := pin(ch.B)
	if err != nil {
		return nil, err
	}

	a.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	bPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	counter := encoder.NewCounter(a.Get(), bPin.Get())
	err = a.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
		counter.Edge(encoder.PhaseA, p.Get())
	})
	if err != nil {
		return nil, errors.Wrapf(err, "encoder %d interrupt on %s", ch.Number, ch.A)
	}
	err = bPin.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
		counter.Edge(encoder.PhaseB, p.Get())
	})
	if err != nil {
		return nil, errors.Wrapf(err, "encoder %d interrupt on %s", ch.Number, ch.B)
	}

	return counter, nil
}

type portPins struct {
	port ledkit.Port
}

func (p portPins) Output(line uint8) (ledkit.PinHandle, error) {
	mp, err := pin(ledkit.PinRef{Port: p.port, Line: line})
	if err != nil {
		return nil, err
	}
	mp.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return output{mp}, nil
}

// output is a push-pull pin.
type output struct {
	pin machine.Pin
}

func (o output) Set(state bool) error {
	o.pin.Set(state)
	return nil
}

func (o output) GetState() (bool, error) {
	return o.pin.Get(), nil
}
