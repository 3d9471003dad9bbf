package drivers

import (
	"context"
)

// IoDriver owns the pins of one GPIO bank. Setup configures the listed pins
// once; afterwards GetInput and GetOutput hand out the configured pins.
type IoDriver interface {
	Setup(ctx context.Context, inputs []uint16, outputs []uint16) error
	Close() error
	String() string
	IsReady() bool
	GetInput(pin uint16) (DigitalInput, error)
	GetOutput(pin uint16) (DigitalOutput, error)
	GetAllIo() (inputs []uint16, outputs []uint16)
}

type DigitalInput interface {
	GetState() (bool, error)
	WatchEdges(listener EdgeListener) error
}

type DigitalOutput interface {
	GetState() (bool, error)
	Set(bool) error
}

// EdgeListener is called with the new level after every edge on an input.
// It may run on a driver goroutine or in interrupt context.
type EdgeListener func(level bool)
