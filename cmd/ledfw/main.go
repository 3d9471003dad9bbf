//go:build tinygo

package main

import (
	"github.com/hubertat/ledkit"
	"github.com/hubertat/ledkit/nucleo"
)

func main() {
	board := nucleo.New()

	sys, err := ledkit.BringUp(board, ledkit.DefaultLayout(), ledkit.Default())
	if err != nil {
		println("bring-up failed:", err.Error())
		panic(err)
	}

	seq, err := ledkit.NewSequencer(ledkit.Default(), sys.Delay)
	if err != nil {
		panic(err)
	}
	seq.Run()
}
