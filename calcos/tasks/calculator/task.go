// Package calculator is the calculator task: it turns terminal input into engine
// commands and draws the engine display on the framebuffer.
package calculator

import (
	"calcpad/calcos/calc"
	logclient "calcpad/calcos/client/logger"
	"calcpad/calcos/kernel"
	"calcpad/calcos/proto"
	"calcpad/hal"

	"tinygo.org/x/tinyfont"
)

const (
	// highlightTicks is how long the last pressed key stays lit in the legend.
	highlightTicks = 150
	// logRetryTicks bounds how long a log line waits for the logger's mailbox.
	logRetryTicks = 20
)

// Config controls optional task behavior.
type Config struct {
	// LogEvaluations sends a log line for every Equals and Clear.
	LogEvaluations bool
}

type Task struct {
	disp   hal.Display
	status hal.Status
	ep     kernel.Capability
	logCap kernel.Capability
	engine *calc.Shared
	cfg    Config

	fb hal.Framebuffer

	font       tinyfont.Fonter
	fontWidth  int16
	fontHeight int16

	nowTick uint64
	inbuf   []byte

	lastKey     string
	lastKeyTick uint64
	message     string
}

// New returns a calculator task that receives MsgTermInput on ep and drives
// shared. status may be nil and logCap may be the zero capability.
func New(disp hal.Display, status hal.Status, ep, logCap kernel.Capability, shared *calc.Shared, cfg Config) *Task {
	return &Task{disp: disp, status: status, ep: ep, logCap: logCap, engine: shared, cfg: cfg}
}

func (t *Task) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(t.ep)
	if !ok {
		return
	}
	if t.engine == nil {
		t.engine = &calc.Shared{}
	}
	if t.disp != nil {
		t.fb = t.disp.Framebuffer()
	}
	if !t.initFont() {
		return
	}
	t.render()

	done := make(chan struct{})
	defer close(done)

	tickCh := make(chan uint64, 8)
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
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if proto.Kind(msg.Kind) != proto.MsgTermInput {
				continue
			}
			t.handleInput(ctx, msg.Payload())
			t.render()

		case now := <-tickCh:
			if t.expireHighlight(now) {
				t.render()
			}
		}
	}
}

// expireHighlight advances the task clock and reports whether the legend
// highlight went out.
func (t *Task) expireHighlight(now uint64) bool {
	t.nowTick = now
	if t.lastKey == "" || now-t.lastKeyTick < highlightTicks {
		return false
	}
	t.lastKey = ""
	return true
}

func (t *Task) handleInput(ctx *kernel.Context, b []byte) {
	t.nowTick = ctx.NowTick()
	t.inbuf = append(t.inbuf, b...)
	buf := t.inbuf
	for len(buf) > 0 {
		n, k, ok := nextKey(buf)
		if !ok {
			break
		}
		buf = buf[n:]
		t.handleKey(ctx, k)
	}
	t.inbuf = append(t.inbuf[:0], buf...)
}

func (t *Task) handleKey(ctx *kernel.Context, k key) {
	cmd, ok := commandForKey(k)
	if !ok {
		if k.kind == keyRune {
			t.message = "unknown key " + string(k.r)
		}
		return
	}

	d, err := t.engine.Apply(cmd)
	if err != nil {
		t.message = err.Error()
		return
	}
	t.message = ""
	t.lastKey = cmd.Label()
	t.lastKeyTick = t.nowTick

	if !t.cfg.LogEvaluations {
		return
	}
	switch cmd.Kind {
	case calc.CmdEquals:
		t.log(ctx, evaluationLine(d))
	case calc.CmdClear:
		t.log(ctx, "calc: clear")
	}
}

func (t *Task) log(ctx *kernel.Context, line string) {
	if !t.logCap.Valid() {
		return
	}
	_ = logclient.LogRetry(ctx, t.logCap, line, logRetryTicks)
}

// evaluationLine formats an Equals outcome for the log.
func evaluationLine(d calc.Display) string {
	if d.Failed {
		if expr := d.Expression(); expr != "" {
			return "calc: " + expr + ": " + d.Result
		}
		return "calc: " + d.Result
	}
	return "calc: " + d.Line()
}
