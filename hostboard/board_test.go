package hostboard

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/drivers"
)

// instantDelay lets the sequencer run without sleeping.
type instantDelay struct {
	total uint32
}

func (d *instantDelay) DelayMs(ms uint32) {
	d.total += ms
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func bringUpMock(t testing.TB, layout ledkit.Layout) (*ledkit.System, map[ledkit.Port]drivers.IoDriver) {
	t.Helper()

	ports := MockPorts(layout)
	board := New(layout, ports, quietLogger())
	sys, err := ledkit.BringUp(board, layout, ledkit.NewRegistry())
	if err != nil {
		t.Fatalf("BringUp returned err: %v", err)
	}
	return sys, ports
}

func mockOutput(t testing.TB, ports map[ledkit.Port]drivers.IoDriver, ref ledkit.PinRef) bool {
	t.Helper()

	out, err := ports[ref.Port].GetOutput(uint16(ref.Line))
	if err != nil {
		t.Fatalf("no output %s: %v", ref, err)
	}
	state, _ := out.GetState()
	return state
}

func TestMockBringUpRunsPatterns(t *testing.T) {
	layout := ledkit.DefaultLayout()
	sys, ports := bringUpMock(t, layout)

	delay := &instantDelay{}
	seq, err := ledkit.NewSequencer(sys.Leds, delay)
	if err != nil {
		t.Fatalf("NewSequencer returned err: %v", err)
	}

	for frame := 0; frame < 4; frame++ {
		seq.Step()

		want := ledkit.PatternA
		if frame%2 == 1 {
			want = ledkit.PatternB
		}
		for _, lp := range layout.Leds {
			state, _ := want.Lookup(lp.Led)
			if got := mockOutput(t, ports, lp.Pin); got != state.Bool() {
				t.Errorf("frame %d: %s on %s got %v want %v", frame, lp.Led, lp.Pin, got, state.Bool())
			}
		}
	}

	if delay.total != 4000 {
		t.Errorf("got %d ms of delay want 4000", delay.total)
	}
}

func TestMockEncoders(t *testing.T) {
	layout := ledkit.DefaultLayout()
	sys, ports := bringUpMock(t, layout)

	if len(sys.Encoders) != 3 {
		t.Fatalf("got %d encoders want 3", len(sys.Encoders))
	}

	// encoder 3 sits on PD12/PD13: one clockwise cycle
	inA, _ := ports["D"].GetInput(12)
	inB, _ := ports["D"].GetInput(13)
	a, b := inA.(*drivers.MockInput), inB.(*drivers.MockInput)
	a.Trigger(true)
	b.Trigger(true)
	a.Trigger(false)
	b.Trigger(false)

	if got := sys.Encoders[3].Count(); got != 4 {
		t.Errorf("encoder 3 count %d want 4", got)
	}
	if got := sys.Encoders[2].Count(); got != 0 {
		t.Errorf("encoder 2 count %d want 0", got)
	}

	// port B carries no encoder input: channel 1 is disabled
	if inputs, _ := ports["B"].GetAllIo(); len(inputs) != 0 {
		t.Errorf("port B has inputs %v", inputs)
	}
}

func TestBoardOrderChecks(t *testing.T) {
	layout := ledkit.DefaultLayout()
	board := New(layout, MockPorts(layout), quietLogger())

	if _, err := board.SplitPort("F"); err == nil {
		t.Error("SplitPort before AcquirePeripherals returned nil error")
	}
	if _, err := board.ConfigureClocks(layout.Clocks); err == nil {
		t.Error("ConfigureClocks before AcquirePeripherals returned nil error")
	}
	if err := board.AcquirePeripherals(); err != nil {
		t.Fatalf("AcquirePeripherals returned err: %v", err)
	}
	if err := board.AcquirePeripherals(); err == nil {
		t.Error("second AcquirePeripherals returned nil error")
	}
	if _, err := board.SplitPort("F"); err != nil {
		t.Fatalf("SplitPort returned err: %v", err)
	}
	if _, err := board.SplitPort("F"); err == nil {
		t.Error("second SplitPort of the same port returned nil error")
	}
	if err := board.Close(); err != nil {
		t.Errorf("Close returned err: %v", err)
	}
}

func TestMissingPortDriver(t *testing.T) {
	layout := ledkit.DefaultLayout()
	ports := MockPorts(layout)
	delete(ports, "F")

	board := New(layout, ports, quietLogger())
	if _, err := ledkit.BringUp(board, layout, ledkit.NewRegistry()); err == nil {
		t.Error("BringUp succeeded without a driver for port F")
	}
}

// deafDriver is a mock whose inputs cannot report edges.
type deafDriver struct {
	drivers.MockIoDriver
}

type deafInput struct {
	drivers.DigitalInput
}

func (deafInput) WatchEdges(listener drivers.EdgeListener) error {
	return errors.New("WatchEdges not implemented")
}

func (d *deafDriver) GetInput(pin uint16) (drivers.DigitalInput, error) {
	in, err := d.MockIoDriver.GetInput(pin)
	if err != nil {
		return nil, err
	}
	return deafInput{in}, nil
}

func TestEncoderNeedsEdges(t *testing.T) {
	layout := ledkit.DefaultLayout()
	ports := MockPorts(layout)
	ports["D"] = &deafDriver{}

	board := New(layout, ports, quietLogger())
	if _, err := ledkit.BringUp(board, layout, ledkit.NewRegistry()); err == nil {
		t.Error("BringUp succeeded with encoder 3 on a driver without edge events")
	}
}

func TestMonitorMockPorts(t *testing.T) {
	layout := ledkit.DefaultLayout()
	sys, ports := bringUpMock(t, layout)

	buf := &bytes.Buffer{}
	MonitorMockPorts(ports, buf)
	sys.Leds.SetState(ledkit.LedWhite1, ledkit.High)

	if !strings.Contains(buf.String(), "[PF pin 10] state changed to true") {
		t.Errorf("unexpected monitor output %q", buf.String())
	}
}

func TestNewPorts(t *testing.T) {
	ports, err := NewPorts(map[ledkit.Port]drivers.Config{
		"B": {Driver: "mock"},
		"F": {Driver: "mcpio", BusNo: 1, DevNo: 0x20},
	})
	if err != nil {
		t.Fatalf("NewPorts returned err: %v", err)
	}
	if ports["B"].String() != "mock_driver" || ports["F"].String() != "mcpio" {
		t.Errorf("unexpected drivers: %s, %s", ports["B"], ports["F"])
	}

	if _, err := NewPorts(map[ledkit.Port]drivers.Config{"A": {Driver: "nope"}}); err == nil {
		t.Error("NewPorts with unknown driver returned nil error")
	}
}
