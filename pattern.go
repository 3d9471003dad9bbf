package ledkit

import (
	"strings"

	"github.com/pkg/errors"
)

type Assignment struct {
	Led   LedId
	State PinState
}

// Pattern is one frame of the sequencer: assignments applied together.
type Pattern []Assignment

var PatternA = Pattern{
	{LedUser1, Low},
	{LedUser2, High},
	{LedUser3, Low},

	{LedGreen1, High},
	{LedGreen2, Low},

	{LedRed1, High},
	{LedRed2, Low},

	{LedOrange1, High},
	{LedOrange2, Low},

	{LedBlue1, High},
	{LedBlue2, Low},

	{LedWhite1, High},
	{LedWhite2, Low},
	{LedWhite3, High},
}

var PatternB = PatternA.Complement()

// Apply writes every assignment through leds. It returns once all writes are done.
func (p Pattern) Apply(leds Actuator) {
	for _, a := range p {
		leds.SetState(a.Led, a.State)
	}
}

func (p Pattern) Complement() Pattern {
	out := make(Pattern, len(p))
	for i, a := range p {
		out[i] = Assignment{Led: a.Led, State: a.State.Complement()}
	}
	return out
}

func (p Pattern) Lookup(id LedId) (PinState, bool) {
	for _, a := range p {
		if a.Led == id {
			return a.State, true
		}
	}
	return Low, false
}

// Equal compares the state of every LED, ignoring assignment order.
func (p Pattern) Equal(other Pattern) bool {
	if len(p) != len(other) {
		return false
	}
	for _, a := range p {
		state, ok := other.Lookup(a.Led)
		if !ok || state != a.State {
			return false
		}
	}
	return true
}

// Validate requires exactly one valid assignment for every LedId.
func (p Pattern) Validate() error {
	var seen [ledCount]bool
	for _, a := range p {
		if !a.Led.Valid() {
			return errors.Errorf("pattern: invalid led id %d", uint8(a.Led))
		}
		if !a.State.Valid() {
			return errors.Errorf("pattern: invalid state %s for %s", a.State, a.Led)
		}
		if seen[a.Led] {
			return errors.Errorf("pattern: %s assigned twice", a.Led)
		}
		seen[a.Led] = true
	}
	for id, ok := range seen {
		if !ok {
			return errors.Errorf("pattern: %s not assigned", LedId(id))
		}
	}
	return nil
}

func (p Pattern) String() string {
	parts := make([]string, 0, len(p))
	for _, a := range p {
		parts = append(parts, a.Led.String()+":"+a.State.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
