// Package app wires the calculator system together on top of a HAL.
package app

import (
	"errors"

	"calcpad/calcos/calc"
	"calcpad/calcos/kernel"
	"calcpad/calcos/services/logger"
	"calcpad/calcos/services/termkbd"
	"calcpad/calcos/tasks/calculator"
	"calcpad/hal"
	"calcpad/internal/buildinfo"
)

// ErrPanic is returned by Step once any task has panicked.
var ErrPanic = errors.New("task panicked")

type Config struct {
	// LogEvaluations logs every evaluation and clear.
	LogEvaluations bool
}

// System is a running calculator: kernel, services and the calculator task.
type System struct {
	k      *kernel.Kernel
	engine *calc.Shared
}

// New starts the system on h.
func New(h hal.HAL, cfg Config) *System {
	k := kernel.New()
	s := &System{k: k, engine: &calc.Shared{}}
	installPanicHandler(k, h)

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	calcEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	if l := h.Logger(); l != nil {
		l.WriteLineString("calcpad " + buildinfo.Short() + ": ready")
	}

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))
	k.AddTask(termkbd.New(h.Input(), calcEP.Restrict(kernel.RightSend)))
	k.AddTask(calculator.New(
		h.Display(),
		h.Status(),
		calcEP.Restrict(kernel.RightRecv),
		logEP.Restrict(kernel.RightSend),
		s.engine,
		calculator.Config{LogEvaluations: cfg.LogEvaluations},
	))

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				for seq := range ch {
					k.TickTo(seq)
				}
			}()
		}
	}

	return s
}

// Step is called once per host frame.
func (s *System) Step() error {
	if s.k.InPanicMode() {
		return ErrPanic
	}
	return nil
}

// Display returns the current calculator display.
func (s *System) Display() calc.Display {
	return s.engine.Display()
}
