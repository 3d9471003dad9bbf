package drivers

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

const cdevDriverName = "gpiocdev"

const cdevConsumer = "ledkit"

// GpioCdev drives lines of a Linux GPIO character device (/dev/gpiochipN).
// Inputs are requested with edge detection so encoders can be decoded from
// kernel events.
type GpioCdev struct {
	Chip          string
	InvertInputs  bool
	InvertOutputs bool

	inputs  []*CdevInput
	outputs []*CdevOutput
	isReady bool
}

type CdevOutput struct {
	pin    uint16
	invert bool
	line   *gpiocdev.Line
}

type CdevInput struct {
	pin    uint16
	invert bool
	line   *gpiocdev.Line

	lock      sync.Mutex
	listeners []EdgeListener
}

func lineValue(state, invert bool) int {
	if state != invert {
		return 1
	}
	return 0
}

func (co *CdevOutput) Set(state bool) error {
	err := co.line.SetValue(lineValue(state, co.invert))
	return errors.Wrapf(err, "gpiocdev set line %d", co.pin)
}

func (co *CdevOutput) GetState() (bool, error) {
	v, err := co.line.Value()
	if err != nil {
		return false, errors.Wrapf(err, "gpiocdev read line %d", co.pin)
	}
	return (v == 1) != co.invert, nil
}

func (ci *CdevInput) GetState() (bool, error) {
	v, err := ci.line.Value()
	if err != nil {
		return false, errors.Wrapf(err, "gpiocdev read line %d", ci.pin)
	}
	return (v == 1) != ci.invert, nil
}

func (ci *CdevInput) WatchEdges(listener EdgeListener) error {
	if listener == nil {
		return errors.New("nil edge listener")
	}
	ci.lock.Lock()
	defer ci.lock.Unlock()

	ci.listeners = append(ci.listeners, listener)
	return nil
}

func (ci *CdevInput) handleEvent(evt gpiocdev.LineEvent) {
	level := (evt.Type == gpiocdev.LineEventRisingEdge) != ci.invert

	ci.lock.Lock()
	listeners := ci.listeners
	ci.lock.Unlock()

	for _, listener := range listeners {
		listener(level)
	}
}

func (gc *GpioCdev) Setup(ctx context.Context, inputs []uint16, outputs []uint16) error {
	for _, inPin := range inputs {
		in := &CdevInput{pin: inPin, invert: gc.InvertInputs}
		line, err := gpiocdev.RequestLine(gc.Chip, int(inPin),
			gpiocdev.WithConsumer(cdevConsumer),
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(in.handleEvent),
		)
		if err != nil {
			gc.Close()
			return errors.Wrapf(err, "failed to request input line %s:%d", gc.Chip, inPin)
		}
		in.line = line
		gc.inputs = append(gc.inputs, in)
	}

	for _, outPin := range outputs {
		line, err := gpiocdev.RequestLine(gc.Chip, int(outPin),
			gpiocdev.WithConsumer(cdevConsumer),
			gpiocdev.AsOutput(lineValue(false, gc.InvertOutputs)),
		)
		if err != nil {
			gc.Close()
			return errors.Wrapf(err, "failed to request output line %s:%d", gc.Chip, outPin)
		}
		gc.outputs = append(gc.outputs, &CdevOutput{pin: outPin, invert: gc.InvertOutputs, line: line})
	}

	gc.isReady = true
	return nil
}

func (gc *GpioCdev) String() string {
	return cdevDriverName
}

func (gc *GpioCdev) IsReady() bool {
	return gc.isReady
}

// Close drives outputs off, reverts them to inputs and releases every line.
func (gc *GpioCdev) Close() error {
	gc.isReady = false

	var err error
	for _, out := range gc.outputs {
		out.Set(false)
		out.line.Reconfigure(gpiocdev.AsInput)
		if closeErr := out.line.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "close output line %d", out.pin)
		}
	}
	for _, in := range gc.inputs {
		if closeErr := in.line.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "close input line %d", in.pin)
		}
	}
	gc.inputs, gc.outputs = nil, nil

	return err
}

func (gc *GpioCdev) GetInput(id uint16) (DigitalInput, error) {
	for _, in := range gc.inputs {
		if in.pin == id {
			return in, nil
		}
	}
	return nil, errors.Errorf("gpiocdev input (%s:%d) not found", gc.Chip, id)
}

func (gc *GpioCdev) GetOutput(id uint16) (DigitalOutput, error) {
	for _, out := range gc.outputs {
		if out.pin == id {
			return out, nil
		}
	}
	return nil, errors.Errorf("gpiocdev output (%s:%d) not found", gc.Chip, id)
}

func (gc *GpioCdev) GetAllIo() (inputs []uint16, outputs []uint16) {
	for _, in := range gc.inputs {
		inputs = append(inputs, in.pin)
	}
	for _, out := range gc.outputs {
		outputs = append(outputs, out.pin)
	}
	return
}
