package ledkit

import "sync"

// CriticalSection serializes access to shared pin state. Do runs f with the
// section held and releases it on every exit path, panics included.
type CriticalSection interface {
	Do(f func())
}

// MutexSection is a CriticalSection for hosted builds, where interrupt handlers
// are goroutines and a mutex is enough to exclude them.
type MutexSection struct {
	mu sync.Mutex
}

func (m *MutexSection) Do(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f()
}
