package ledkit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// PinHandle is an output-capable pin owned by exactly one registry slot.
// Every drivers.DigitalOutput satisfies it.
type PinHandle interface {
	Set(state bool) error
	GetState() (bool, error)
}

// UninitializedSlotError is the panic value raised when a slot is used before
// Initialize populated it.
type UninitializedSlotError struct {
	Led LedId
}

func (e *UninitializedSlotError) Error() string {
	return fmt.Sprintf("led %s used before its pin was initialized", e.Led)
}

// InvalidLedError is the panic value raised for an id outside the LedId set.
type InvalidLedError struct {
	Led LedId
}

func (e *InvalidLedError) Error() string {
	return fmt.Sprintf("invalid led id %d", uint8(e.Led))
}

type slot struct {
	section CriticalSection
	pin     PinHandle
}

// Registry holds the pin handle of every LED. Each slot is guarded by a
// CriticalSection; by default every slot has its own.
type Registry struct {
	slots [ledCount]slot
}

type RegistryOption func(*Registry)

// WithCriticalSection makes every slot share cs, giving a single exclusion
// domain for the whole registry. A nil cs keeps the per-slot sections.
func WithCriticalSection(cs CriticalSection) RegistryOption {
	return func(r *Registry) {
		if cs == nil {
			return
		}
		for i := range r.slots {
			r.slots[i].section = cs
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for i := range r.slots {
		r.slots[i].section = newSection()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) slot(id LedId) *slot {
	if !id.Valid() {
		panic(&InvalidLedError{Led: id})
	}
	return &r.slots[id]
}

// Initialize moves pin into the slot for id. A slot is populated once.
func (r *Registry) Initialize(id LedId, pin PinHandle) (err error) {
	if !id.Valid() {
		return errors.Errorf("initialize: invalid led id %d", uint8(id))
	}
	if pin == nil {
		return errors.Errorf("initialize %s: nil pin handle", id)
	}

	s := r.slot(id)
	s.section.Do(func() {
		if s.pin != nil {
			err = errors.Errorf("initialize %s: slot already populated", id)
			return
		}
		s.pin = pin
	})
	return
}

// SetState writes state to the pin of id. Using an empty slot or failing the
// hardware write panics: both mean the program itself is broken.
func (r *Registry) SetState(id LedId, state PinState) {
	s := r.slot(id)
	s.section.Do(func() {
		if s.pin == nil {
			panic(&UninitializedSlotError{Led: id})
		}
		if err := s.pin.Set(state.Bool()); err != nil {
			panic(errors.Wrapf(err, "set led %s to %s", id, state))
		}
	})
}

// State reads the current level of id back from its pin.
func (r *Registry) State(id LedId) (state PinState) {
	s := r.slot(id)
	s.section.Do(func() {
		if s.pin == nil {
			panic(&UninitializedSlotError{Led: id})
		}
		on, err := s.pin.GetState()
		if err != nil {
			panic(errors.Wrapf(err, "read led %s", id))
		}
		state = StateOf(on)
	})
	return
}

func (r *Registry) Populated(id LedId) (ok bool) {
	s := r.slot(id)
	s.section.Do(func() {
		ok = s.pin != nil
	})
	return
}

// Snapshot reads every LED, in declaration order.
func (r *Registry) Snapshot() Pattern {
	frame := make(Pattern, 0, ledCount)
	for _, id := range AllLeds() {
		frame = append(frame, Assignment{Led: id, State: r.State(id)})
	}
	return frame
}

// Check verifies that every LedId has a populated slot.
func (r *Registry) Check() error {
	var missing []string
	for _, id := range AllLeds() {
		if !r.Populated(id) {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("led registry incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
