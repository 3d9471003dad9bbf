package drivers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
)

const mockDriverName = "mock_driver"

// MockOutput keeps its state in memory. With a monitor attached every change
// is printed, which is how the mock command shows the LEDs.
type MockOutput struct {
	lock    sync.Mutex
	state   bool
	pin     uint16
	label   string
	writeTo io.Writer
	writes  int
}

func (mo *MockOutput) GetState() (bool, error) {
	mo.lock.Lock()
	defer mo.lock.Unlock()

	return mo.state, nil
}

func (mo *MockOutput) Set(state bool) error {
	mo.lock.Lock()
	defer mo.lock.Unlock()

	if mo.writeTo != nil && state != mo.state {
		fmt.Fprintf(mo.writeTo, "[%spin %d] state changed to %v\n", mo.label, mo.pin, state)
	}
	mo.state = state
	mo.writes++
	return nil
}

// Writes counts every Set call, changed or not.
func (mo *MockOutput) Writes() int {
	mo.lock.Lock()
	defer mo.lock.Unlock()

	return mo.writes
}

type MockInput struct {
	lock      sync.Mutex
	State     bool
	pin       uint16
	listeners []EdgeListener
}

func (mi *MockInput) GetState() (bool, error) {
	mi.lock.Lock()
	defer mi.lock.Unlock()

	return mi.State, nil
}

func (mi *MockInput) WatchEdges(listener EdgeListener) error {
	if listener == nil {
		return errors.New("nil edge listener")
	}
	mi.lock.Lock()
	defer mi.lock.Unlock()

	mi.listeners = append(mi.listeners, listener)
	return nil
}

// Trigger moves the input to level and notifies listeners if it changed.
func (mi *MockInput) Trigger(level bool) {
	mi.lock.Lock()
	if mi.State == level {
		mi.lock.Unlock()
		return
	}
	mi.State = level
	listeners := mi.listeners
	mi.lock.Unlock()

	for _, listener := range listeners {
		listener(level)
	}
}

type MockIoDriver struct {
	// Label prefixes monitor lines, e.g. "PF " for a port.
	Label string

	inputs  []*MockInput
	outputs []*MockOutput
	ready   bool
}

func (md *MockIoDriver) Setup(ctx context.Context, inputs []uint16, outputs []uint16) error {
	if md.ready {
		return errors.New("mock driver already set up")
	}
	for _, inPin := range inputs {
		md.inputs = append(md.inputs, &MockInput{pin: inPin})
	}
	for _, outPin := range outputs {
		md.outputs = append(md.outputs, &MockOutput{pin: outPin, label: md.Label})
	}
	md.ready = true
	return nil
}

func (md *MockIoDriver) Close() error {
	md.ready = false
	return nil
}

func (md *MockIoDriver) String() string {
	return mockDriverName
}

func (md *MockIoDriver) IsReady() bool {
	return md.ready
}

func (md *MockIoDriver) GetInput(pin uint16) (DigitalInput, error) {
	for _, input := range md.inputs {
		if pin == input.pin {
			return input, nil
		}
	}
	return nil, fmt.Errorf("mock input %d not found", pin)
}

func (md *MockIoDriver) GetOutput(pin uint16) (DigitalOutput, error) {
	for _, output := range md.outputs {
		if pin == output.pin {
			return output, nil
		}
	}
	return nil, fmt.Errorf("mock output %d not found", pin)
}

func (md *MockIoDriver) GetAllIo() (inputs []uint16, outputs []uint16) {
	for _, input := range md.inputs {
		inputs = append(inputs, input.pin)
	}
	for _, output := range md.outputs {
		outputs = append(outputs, output.pin)
	}
	return
}

func (md *MockIoDriver) MonitorStateChanges(writer io.Writer) {
	for _, out := range md.outputs {
		out.lock.Lock()
		out.writeTo = writer
		out.lock.Unlock()
	}
}
