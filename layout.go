package ledkit

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

const maxEncoderChannels = 4

// LedPin wires an LED to a physical pin. Invert is set for LEDs that light
// when the pin is driven low.
type LedPin struct {
	Led    LedId
	Pin    PinRef
	Invert bool
}

// EncoderChannel is a timer plus the two phase pins of one rotary encoder.
// Disabled channels stay in the layout but get no counter.
type EncoderChannel struct {
	Number  int
	Timer   string
	A       PinRef
	B       PinRef
	Enabled bool
}

type Layout struct {
	Clocks   ClockConfig
	Leds     []LedPin
	Encoders []EncoderChannel
}

// DefaultLayout is the reference board: three user LEDs on port B, the
// coloured LEDs on port F, encoders on TIM2..TIM5 with TIM2 left unused.
func DefaultLayout() Layout {
	return Layout{
		Clocks: ClockConfig{
			ExternalOscillatorHz: 8_000_000,
			SystemClockHz:        48_000_000,
			PeripheralClockHz:    24_000_000,
			RequireUSBClock:      true,
		},
		Leds: []LedPin{
			{Led: LedUser1, Pin: PinRef{"B", 0}},
			{Led: LedUser2, Pin: PinRef{"B", 7}},
			{Led: LedUser3, Pin: PinRef{"B", 14}},

			{Led: LedGreen1, Pin: PinRef{"F", 6}},
			{Led: LedGreen2, Pin: PinRef{"F", 0}},

			{Led: LedRed1, Pin: PinRef{"F", 7}},
			{Led: LedRed2, Pin: PinRef{"F", 1}},

			{Led: LedOrange1, Pin: PinRef{"F", 8}},
			{Led: LedOrange2, Pin: PinRef{"F", 2}},

			{Led: LedBlue1, Pin: PinRef{"F", 9}},
			{Led: LedBlue2, Pin: PinRef{"F", 3}},

			{Led: LedWhite1, Pin: PinRef{"F", 10}},
			{Led: LedWhite2, Pin: PinRef{"F", 4}},
			{Led: LedWhite3, Pin: PinRef{"F", 5}},
		},
		Encoders: []EncoderChannel{
			{Number: 1, Timer: "TIM2", A: PinRef{"A", 15}, B: PinRef{"B", 3}, Enabled: false},
			{Number: 2, Timer: "TIM3", A: PinRef{"A", 6}, B: PinRef{"C", 7}, Enabled: true},
			{Number: 3, Timer: "TIM4", A: PinRef{"D", 12}, B: PinRef{"D", 13}, Enabled: true},
			{Number: 4, Timer: "TIM5", A: PinRef{"A", 0}, B: PinRef{"A", 1}, Enabled: true},
		},
	}
}

// Validate checks that every LED is wired exactly once and that no pin is
// claimed twice.
func (l Layout) Validate() error {
	var wired [ledCount]bool
	owner := make(map[PinRef]string)

	claim := func(pin PinRef, by string) error {
		if pin.Port == "" {
			return errors.Errorf("%s has no port", by)
		}
		if prev, taken := owner[pin]; taken {
			return errors.Errorf("pin %s claimed by both %s and %s", pin, prev, by)
		}
		owner[pin] = by
		return nil
	}

	for _, lp := range l.Leds {
		if !lp.Led.Valid() {
			return errors.Errorf("layout: invalid led id %d", uint8(lp.Led))
		}
		if wired[lp.Led] {
			return errors.Errorf("layout: led %s wired twice", lp.Led)
		}
		wired[lp.Led] = true
		if err := claim(lp.Pin, "led "+lp.Led.String()); err != nil {
			return errors.Wrap(err, "layout")
		}
	}
	for id, ok := range wired {
		if !ok {
			return errors.Errorf("layout: led %s not wired", LedId(id))
		}
	}

	numbers := make(map[int]bool)
	for _, ch := range l.Encoders {
		if ch.Number < 1 || ch.Number > maxEncoderChannels {
			return errors.Errorf("layout: encoder channel %d out of range 1..%d", ch.Number, maxEncoderChannels)
		}
		if numbers[ch.Number] {
			return errors.Errorf("layout: encoder channel %d listed twice", ch.Number)
		}
		numbers[ch.Number] = true
		if !ch.Enabled {
			continue
		}
		name := "encoder " + strconv.Itoa(ch.Number)
		if err := claim(ch.A, name+" phase A"); err != nil {
			return errors.Wrap(err, "layout")
		}
		if err := claim(ch.B, name+" phase B"); err != nil {
			return errors.Wrap(err, "layout")
		}
	}

	return nil
}

// Ports lists every port the enabled parts of the layout use, sorted.
func (l Layout) Ports() []Port {
	seen := make(map[Port]bool)
	for _, lp := range l.Leds {
		seen[lp.Pin.Port] = true
	}
	for _, ch := range l.Encoders {
		if ch.Enabled {
			seen[ch.A.Port] = true
			seen[ch.B.Port] = true
		}
	}

	ports := make([]Port, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}

// OutputLines returns the LED lines on port.
func (l Layout) OutputLines(port Port) (lines []uint8) {
	for _, lp := range l.Leds {
		if lp.Pin.Port == port {
			lines = append(lines, lp.Pin.Line)
		}
	}
	return
}

// InputLines returns the enabled encoder phase lines on port.
func (l Layout) InputLines(port Port) (lines []uint8) {
	for _, ch := range l.Encoders {
		if !ch.Enabled {
			continue
		}
		for _, pin := range []PinRef{ch.A, ch.B} {
			if pin.Port == port {
				lines = append(lines, pin.Line)
			}
		}
	}
	return
}
