package drivers

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const periphDriverName = "periph"

// PeriphIO resolves pins through the periph.io registry as "GPIO<n>", which
// covers the Raspberry Pi, BeagleBone and Allwinner hosts periph supports.
type PeriphIO struct {
	InvertInputs  bool
	InvertOutputs bool

	inputs  []*PeriphInput
	outputs []*PeriphOutput
	isReady bool
}

type PeriphInput struct {
	id     uint16
	pin    gpio.PinIO
	invert bool
}

type PeriphOutput struct {
	id     uint16
	pin    gpio.PinIO
	invert bool
}

func periphPin(id uint16) (gpio.PinIO, error) {
	name := fmt.Sprintf("GPIO%d", id)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("periph: no pin named %s", name)
	}
	return pin, nil
}

func (pi *PeriphInput) GetState() (bool, error) {
	return (pi.pin.Read() == gpio.High) != pi.invert, nil
}

// WatchEdges waits for edges on a goroutine until the pin is halted.
func (pi *PeriphInput) WatchEdges(listener EdgeListener) error {
	if listener == nil {
		return errors.New("nil edge listener")
	}

	go func() {
		for pi.pin.WaitForEdge(-1) {
			level, _ := pi.GetState()
			listener(level)
		}
	}()
	return nil
}

func (po *PeriphOutput) Set(state bool) error {
	err := po.pin.Out(gpio.Level(state != po.invert))
	return errors.Wrapf(err, "periph set %s", po.pin)
}

func (po *PeriphOutput) GetState() (bool, error) {
	return (po.pin.Read() == gpio.High) != po.invert, nil
}

func (pd *PeriphIO) Setup(ctx context.Context, inputs []uint16, outputs []uint16) error {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize periph host")
	}

	for _, id := range inputs {
		pin, err := periphPin(id)
		if err != nil {
			return err
		}
		if err := pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
			return errors.Wrapf(err, "periph input %s", pin)
		}
		pd.inputs = append(pd.inputs, &PeriphInput{id: id, pin: pin, invert: pd.InvertInputs})
	}

	for _, id := range outputs {
		pin, err := periphPin(id)
		if err != nil {
			return err
		}
		out := &PeriphOutput{id: id, pin: pin, invert: pd.InvertOutputs}
		if err := out.Set(false); err != nil {
			return err
		}
		pd.outputs = append(pd.outputs, out)
	}

	pd.isReady = true
	return nil
}

func (pd *PeriphIO) String() string {
	return periphDriverName
}

func (pd *PeriphIO) IsReady() bool {
	return pd.isReady
}

// Close halts every pin; halted inputs stop reporting edges.
func (pd *PeriphIO) Close() error {
	pd.isReady = false
	for _, out := range pd.outputs {
		out.Set(false)
		out.pin.Halt()
	}
	for _, in := range pd.inputs {
		in.pin.Halt()
	}
	return nil
}

func (pd *PeriphIO) GetInput(id uint16) (DigitalInput, error) {
	for _, in := range pd.inputs {
		if in.id == id {
			return in, nil
		}
	}
	return nil, errors.Errorf("periph input GPIO%d not found", id)
}

func (pd *PeriphIO) GetOutput(id uint16) (DigitalOutput, error) {
	for _, out := range pd.outputs {
		if out.id == id {
			return out, nil
		}
	}
	return nil, errors.Errorf("periph output GPIO%d not found", id)
}

func (pd *PeriphIO) GetAllIo() (inputs []uint16, outputs []uint16) {
	for _, in := range pd.inputs {
		inputs = append(inputs, in.id)
	}
	for _, out := range pd.outputs {
		outputs = append(outputs, out.id)
	}
	return
}
