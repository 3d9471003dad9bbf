package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/hostboard"
)

var (
	Version string
	Build   string
)

// mock runs the reference board on in-memory ports and prints every pin
// change, for trying the sequencer on any machine.
func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "ledkit mock"})
	logger.Info("started", "version", Version)

	layout := ledkit.DefaultLayout()
	ports := hostboard.MockPorts(layout)
	board := hostboard.New(layout, ports, logger.WithPrefix("board"))
	defer board.Close()

	sys, err := ledkit.BringUp(board, layout, ledkit.Default())
	if err != nil {
		logger.Fatal("bring-up failed", "err", err)
	}

	hostboard.MonitorMockPorts(ports, os.Stdout)

	seq, err := ledkit.NewSequencer(ledkit.Default(), sys.Delay, ledkit.WithFrameHook(func(index int, frame ledkit.Pattern) {
		logger.Info("frame", "index", index, "leds", frame)
	}))
	if err != nil {
		logger.Fatal("failed to create sequencer", "err", err)
	}
	seq.Run()
}
