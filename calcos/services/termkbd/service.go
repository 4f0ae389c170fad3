// Package termkbd turns HAL key events into VT100 input bytes.
package termkbd

import (
	"calcpad/calcos/kernel"
	"calcpad/calcos/proto"
	"calcpad/hal"
)

const (
	// Ticks are 1ms on host.
	defaultRepeatDelay = 350
	defaultRepeatRate  = 60
)

// Service reads the keyboard and sends MsgTermInput chunks to one consumer.
// Held navigation and editing keys auto-repeat while the HAL reports no
// release.
type Service struct {
	in     hal.Input
	outCap kernel.Capability

	repeatDelay uint64
	repeatRate  uint64

	events  <-chan hal.KeyEvent
	pending []byte

	heldCode hal.KeyCode
	heldData []byte

	nextRepeatTick uint64
}

// Option adjusts a Service.
type Option func(*Service)

// WithRepeat sets the auto-repeat delay and rate in ticks. A zero delay
// disables repeat.
func WithRepeat(delay, rate uint64) Option {
	return func(s *Service) {
		s.repeatDelay = delay
		s.repeatRate = rate
	}
}

// New returns a service that writes input bytes to out.
func New(in hal.Input, out kernel.Capability, opts ...Option) *Service {
	s := &Service{
		in:          in,
		outCap:      out,
		repeatDelay: defaultRepeatDelay,
		repeatRate:  defaultRepeatRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.repeatRate == 0 {
		s.repeatRate = 1
	}
	return s
}

func (s *Service) Run(ctx *kernel.Context) {
	if ctx == nil || s.in == nil {
		return
	}
	kbd := s.in.Keyboard()
	if kbd == nil {
		return
	}
	s.events = kbd.Events()
	if s.events == nil {
		return
	}

	done := make(chan struct{})
	defer close(done)

	tickCh := make(chan uint64, 16)
	go func() {
		last := ctx.NowTick()
		for {
			select {
			case <-done:
				return
			default:
			}
			last = ctx.WaitTick(last)
			select {
			case tickCh <- last:
			default:
			}
		}
	}()

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			s.handleKeyEvent(ctx, ev)
		case tick := <-tickCh:
			s.handleRepeat(tick)
			s.flush(ctx)
		}
	}
}

func (s *Service) handleKeyEvent(ctx *kernel.Context, ev hal.KeyEvent) {
	if !ev.Press {
		if s.heldData != nil && ev.Code == s.heldCode {
			s.heldData = nil
			s.nextRepeatTick = 0
		}
		return
	}

	data := vt100FromKey(ev)
	if len(data) == 0 {
		return
	}
	s.pending = append(s.pending, data...)
	s.flush(ctx)

	if s.repeatDelay == 0 || !repeatableKey(ev.Code) {
		return
	}
	s.heldCode = ev.Code
	s.heldData = append(s.heldData[:0], data...)
	s.nextRepeatTick = ctx.NowTick() + s.repeatDelay
}

func (s *Service) handleRepeat(tick uint64) {
	if s.heldData == nil || tick < s.nextRepeatTick {
		return
	}
	s.pending = append(s.pending, s.heldData...)
	s.nextRepeatTick = tick + s.repeatRate
}

// flush sends pending bytes in message-sized chunks. On a full queue the
// remainder waits for the next tick.
func (s *Service) flush(ctx *kernel.Context) {
	if !s.outCap.Valid() {
		s.pending = nil
		return
	}
	for len(s.pending) > 0 {
		chunk := s.pending
		if len(chunk) > kernel.MaxMessageBytes {
			chunk = chunk[:kernel.MaxMessageBytes]
		}

		switch ctx.SendToCapResult(s.outCap, uint16(proto.MsgTermInput), chunk, kernel.Capability{}) {
		case kernel.SendOK:
			s.pending = s.pending[len(chunk):]
		case kernel.SendErrQueueFull:
			return
		default:
			s.pending = nil
			return
		}
	}
	s.pending = nil
}

func repeatableKey(code hal.KeyCode) bool {
	switch code {
	case hal.KeyUp, hal.KeyDown, hal.KeyLeft, hal.KeyRight,
		hal.KeyBackspace, hal.KeyDelete:
		return true
	default:
		return false
	}
}

func vt100FromKey(ev hal.KeyEvent) []byte {
	if ev.Rune != 0 {
		return []byte(string(ev.Rune))
	}

	switch ev.Code {
	case hal.KeyEnter:
		return []byte{'\n'}
	case hal.KeyEscape:
		return []byte{0x1b}
	case hal.KeyBackspace:
		return []byte{0x7f}
	case hal.KeyTab:
		return []byte{'\t'}
	case hal.KeyUp:
		return []byte("\x1b[A")
	case hal.KeyDown:
		return []byte("\x1b[B")
	case hal.KeyRight:
		return []byte("\x1b[C")
	case hal.KeyLeft:
		return []byte("\x1b[D")
	case hal.KeyDelete:
		return []byte("\x1b[3~")
	case hal.KeyHome:
		return []byte("\x1b[H")
	case hal.KeyEnd:
		return []byte("\x1b[F")
	default:
		return nil
	}
}
