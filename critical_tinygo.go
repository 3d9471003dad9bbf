//go:build tinygo

package ledkit

import "runtime/interrupt"

// InterruptSection masks interrupts for the duration of Do. It is global by
// nature, so every slot sharing it behaves like one exclusion domain.
type InterruptSection struct{}

func (InterruptSection) Do(f func()) {
	state := interrupt.Disable()
	defer interrupt.Restore(state)
	f()
}

func newSection() CriticalSection {
	return InterruptSection{}
}
