package ledkit

import "time"

// Delayer blocks the caller for at least ms milliseconds.
type Delayer interface {
	DelayMs(ms uint32)
}

// SleepDelay blocks on the runtime timer.
type SleepDelay struct{}

func (SleepDelay) DelayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
