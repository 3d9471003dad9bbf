package ledkit

import "strconv"

// PinState is the logical level written to an LED output. High means the LED is
// asserted; the electrical polarity is fixed by the wiring (see LedPin.Invert).
type PinState uint8

const (
	Low PinState = iota
	High
)

func StateOf(on bool) PinState {
	if on {
		return High
	}
	return Low
}

func (s PinState) Bool() bool {
	return s == High
}

func (s PinState) Complement() PinState {
	if s == High {
		return Low
	}
	return High
}

func (s PinState) Valid() bool {
	return s == Low || s == High
}

func (s PinState) String() string {
	switch s {
	case Low:
		return "Low"
	case High:
		return "High"
	}
	return "PinState(" + strconv.Itoa(int(s)) + ")"
}
