package ledkit

// Actuator sets a named LED to a state.
type Actuator interface {
	SetState(id LedId, state PinState)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Initialize and SetLedState.
func Default() *Registry {
	return defaultRegistry
}

func Initialize(id LedId, pin PinHandle) error {
	return defaultRegistry.Initialize(id, pin)
}

// SetLedState is the entry point for main loop and interrupt code alike.
func SetLedState(id LedId, state PinState) {
	defaultRegistry.SetState(id, state)
}
