package ledkit

import "github.com/pkg/errors"

const DefaultDwellMs uint32 = 1000

// FrameHook observes a frame after all of its writes and before the dwell.
type FrameHook func(index int, frame Pattern)

// Sequencer cycles the LEDs through its frames, dwelling on each one.
type Sequencer struct {
	leds    Actuator
	delay   Delayer
	frames  []Pattern
	dwellMs uint32
	hook    FrameHook

	next int
}

type SequencerOption func(*Sequencer)

func WithFrames(frames ...Pattern) SequencerOption {
	return func(s *Sequencer) {
		s.frames = frames
	}
}

func WithDwell(ms uint32) SequencerOption {
	return func(s *Sequencer) {
		s.dwellMs = ms
	}
}

func WithFrameHook(hook FrameHook) SequencerOption {
	return func(s *Sequencer) {
		s.hook = hook
	}
}

// NewSequencer builds a sequencer running PatternA and PatternB with a
// DefaultDwellMs dwell unless options say otherwise.
func NewSequencer(leds Actuator, delay Delayer, opts ...SequencerOption) (*Sequencer, error) {
	if leds == nil {
		return nil, errors.New("sequencer: nil actuator")
	}
	if delay == nil {
		return nil, errors.New("sequencer: nil delay provider")
	}

	s := &Sequencer{
		leds:    leds,
		delay:   delay,
		frames:  []Pattern{PatternA, PatternB},
		dwellMs: DefaultDwellMs,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.frames) == 0 {
		return nil, errors.New("sequencer: no frames")
	}
	for i, frame := range s.frames {
		if err := frame.Validate(); err != nil {
			return nil, errors.Wrapf(err, "sequencer frame %d", i)
		}
	}
	if s.dwellMs == 0 {
		return nil, errors.New("sequencer: dwell must be positive")
	}

	return s, nil
}

func (s *Sequencer) Frames() []Pattern {
	return s.frames
}

func (s *Sequencer) DwellMs() uint32 {
	return s.dwellMs
}

// Step applies the next frame, then blocks for the dwell.
func (s *Sequencer) Step() {
	index := s.next
	frame := s.frames[index]

	frame.Apply(s.leds)
	if s.hook != nil {
		s.hook(index, frame)
	}
	s.delay.DelayMs(s.dwellMs)

	s.next = (index + 1) % len(s.frames)
}

// Run steps forever. It never returns; a fatal actuator condition panics
// out of it and takes the process down.
func (s *Sequencer) Run() {
	for {
		s.Step()
	}
}
