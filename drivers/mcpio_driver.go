package drivers

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/racerxdl/go-mcp23017"
)

const mcpioDriverName = "mcpio"

// MCP23017 lines: GPA0..7 are 0..7, GPB0..7 are 8..15
const mcpPinCount = 16

// McpIO drives the 16 lines of an MCP23017 I2C expander. All pins share one
// device, so bus access is serialized with busLock.
type McpIO struct {
	device  *mcp23017.Device
	busLock sync.Mutex

	inputs  []*McpInput
	outputs []*McpOutput
	isReady bool

	BusNo         uint8
	DevNo         uint8
	InvertInputs  bool
	InvertOutputs bool
}

type McpInput struct {
	pin    uint8
	invert bool
	mcp    *McpIO
}

type McpOutput struct {
	pin    uint8
	invert bool
	mcp    *McpIO
}

func (mcp *McpIO) read(pin uint8, invert bool) (bool, error) {
	mcp.busLock.Lock()
	defer mcp.busLock.Unlock()

	level, err := mcp.device.DigitalRead(pin)
	if err != nil {
		return false, errors.Wrapf(err, "mcp23017 read pin %d", pin)
	}
	return bool(level) != invert, nil
}

func (min *McpInput) GetState() (bool, error) {
	return min.mcp.read(min.pin, min.invert)
}

func (min *McpInput) WatchEdges(listener EdgeListener) error {
	return errors.New("WatchEdges not implemented")
}

func (mout *McpOutput) GetState() (bool, error) {
	return mout.mcp.read(mout.pin, mout.invert)
}

func (mout *McpOutput) Set(state bool) error {
	mout.mcp.busLock.Lock()
	defer mout.mcp.busLock.Unlock()

	err := mout.mcp.device.DigitalWrite(mout.pin, mcp23017.PinLevel(state != mout.invert))
	return errors.Wrapf(err, "mcp23017 write pin %d", mout.pin)
}

func (mcp *McpIO) String() string {
	return mcpioDriverName
}

func (mcp *McpIO) IsReady() bool {
	return mcp.isReady
}

func (mcp *McpIO) Setup(ctx context.Context, inputs []uint16, outputs []uint16) (err error) {
	for _, pin := range append(append([]uint16{}, inputs...), outputs...) {
		if pin >= mcpPinCount {
			return errors.Errorf("pin %d out of range (mcpio has %d pins)", pin, mcpPinCount)
		}
	}

	mcp.device, err = mcp23017.Open(mcp.BusNo, mcp.DevNo)
	if err != nil {
		return errors.Wrapf(err, "failed to open mcp23017 (bus %d, device %d)", mcp.BusNo, mcp.DevNo)
	}

	for _, inputPin := range inputs {
		pin := uint8(inputPin)
		if err = mcp.device.PinMode(pin, mcp23017.INPUT); err != nil {
			return errors.Wrapf(err, "input pin %d mode", pin)
		}
		if err = mcp.device.SetPullUp(pin, true); err != nil {
			return errors.Wrapf(err, "input pin %d pull-up", pin)
		}
		mcp.inputs = append(mcp.inputs, &McpInput{pin: pin, invert: mcp.InvertInputs, mcp: mcp})
	}

	for _, outputPin := range outputs {
		pin := uint8(outputPin)
		if err = mcp.device.PinMode(pin, mcp23017.OUTPUT); err != nil {
			return errors.Wrapf(err, "output pin %d mode", pin)
		}
		mcp.outputs = append(mcp.outputs, &McpOutput{pin: pin, invert: mcp.InvertOutputs, mcp: mcp})
	}

	mcp.isReady = true
	return nil
}

func (mcp *McpIO) GetInput(id uint16) (DigitalInput, error) {
	for _, in := range mcp.inputs {
		if uint16(in.pin) == id {
			return in, nil
		}
	}
	return nil, errors.Errorf("McpIO input (id: %d) not found", id)
}

func (mcp *McpIO) GetOutput(id uint16) (DigitalOutput, error) {
	for _, out := range mcp.outputs {
		if uint16(out.pin) == id {
			return out, nil
		}
	}
	return nil, errors.Errorf("McpIO output (id: %d) not found", id)
}

func (mcp *McpIO) Close() error {
	if mcp.device == nil {
		return nil
	}
	mcp.isReady = false
	for _, output := range mcp.outputs {
		output.Set(false)
	}
	return mcp.device.Close()
}

func (mcp *McpIO) GetAllIo() (inputs []uint16, outputs []uint16) {
	for _, input := range mcp.inputs {
		inputs = append(inputs, uint16(input.pin))
	}
	for _, output := range mcp.outputs {
		outputs = append(outputs, uint16(output.pin))
	}
	return
}
