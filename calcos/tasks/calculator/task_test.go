package calculator

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"calcpad/calcos/calc"
	"calcpad/calcos/kernel"
	"calcpad/calcos/proto"
)

const testTimeout = 1 * time.Second

var noCap kernel.Capability

type inputTask struct {
	to     kernel.Capability
	chunks <-chan string
}

func (t *inputTask) Run(ctx *kernel.Context) {
	for s := range t.chunks {
		ctx.SendToCapRetry(t.to, uint16(proto.MsgTermInput), []byte(s), kernel.Capability{}, 1000)
	}
}

type recvTask struct {
	cap kernel.Capability
	out chan<- string
}

func (t *recvTask) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(t.cap)
	if !ok {
		return
	}
	for msg := range ch {
		t.out <- string(msg.Payload())
	}
}

type harness struct {
	k      *kernel.Kernel
	input  chan<- string
	logs   <-chan string
	shared *calc.Shared
	status *testStatus
	fb     *testFramebuffer
}

func startTask(t *testing.T, cfg Config) *harness {
	t.Helper()
	k := kernel.New()
	calcEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	h := &harness{k: k, shared: &calc.Shared{}, status: &testStatus{}, fb: newTestFramebuffer(320, 320)}
	input := make(chan string, 16)
	logs := make(chan string, 16)
	h.input, h.logs = input, logs

	k.AddTask(New(testDisplay{fb: h.fb}, h.status, calcEP.Restrict(kernel.RightRecv), logEP.Restrict(kernel.RightSend), h.shared, cfg))
	k.AddTask(&recvTask{cap: logEP.Restrict(kernel.RightRecv), out: logs})
	k.AddTask(&inputTask{to: calcEP.Restrict(kernel.RightSend), chunks: input})
	return h
}

func (h *harness) nextLog(t *testing.T) string {
	t.Helper()
	select {
	case s := <-h.logs:
		return s
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for log line")
		return ""
	}
}

func TestTaskEvaluatesTypedInput(t *testing.T) {
	g := NewWithT(t)
	h := startTask(t, Config{LogEvaluations: true})

	h.input <- "12+8\n"

	g.Eventually(func() string { return h.shared.Display().Line() }, testTimeout, time.Millisecond).
		Should(Equal("12 + 8 = 20"))
	g.Eventually(h.status.last, testTimeout, time.Millisecond).Should(Equal("12 + 8 = 20"))
	g.Expect(h.nextLog(t)).To(Equal("calc: 12 + 8 = 20"))
}

func TestTaskLogsErrorsAndClear(t *testing.T) {
	g := NewWithT(t)
	h := startTask(t, Config{LogEvaluations: true})

	h.input <- "7/0="
	g.Expect(h.nextLog(t)).To(Equal("calc: 7 / 0: divide by zero"))
	g.Expect(h.shared.LastError()).To(MatchError(calc.ErrDivideByZero))

	h.input <- "\x1b"
	g.Expect(h.nextLog(t)).To(Equal("calc: clear"))
	g.Expect(h.shared.Display()).To(Equal(calc.Display{}))

	h.input <- "="
	g.Expect(h.nextLog(t)).To(Equal("calc: malformed operand"))
}

func TestTaskReassemblesSplitSequences(t *testing.T) {
	g := NewWithT(t)
	h := startTask(t, Config{})

	h.input <- "9*9"
	g.Eventually(func() string { return h.shared.Display().Line() }, testTimeout, time.Millisecond).
		Should(Equal("9 * 9"))

	// Delete arrives in two messages.
	h.input <- "\x1b[3"
	h.input <- "~"
	g.Eventually(func() calc.Display { return h.shared.Display() }, testTimeout, time.Millisecond).
		Should(Equal(calc.Display{}))
}

func TestTaskWithoutLoggingSendsNothing(t *testing.T) {
	g := NewWithT(t)
	h := startTask(t, Config{})

	h.input <- "1+1="
	g.Eventually(func() string { return h.shared.Display().Line() }, testTimeout, time.Millisecond).
		Should(Equal("1 + 1 = 2"))
	g.Consistently(h.logs, 50*time.Millisecond).ShouldNot(Receive())
}

func TestExpireHighlight(t *testing.T) {
	task := New(nil, nil, noCap, noCap, nil, Config{})
	task.lastKey = "5"
	task.lastKeyTick = 100

	if task.expireHighlight(100 + highlightTicks - 1) {
		t.Fatal("highlight expired early")
	}
	if !task.expireHighlight(100 + highlightTicks) {
		t.Fatal("highlight did not expire")
	}
	if task.lastKey != "" {
		t.Fatalf("lastKey = %q after expiry", task.lastKey)
	}
	if task.expireHighlight(1000) {
		t.Fatal("expired twice")
	}
}

func TestEvaluationLine(t *testing.T) {
	tests := []struct {
		d    calc.Display
		want string
	}{
		{calc.Display{Left: "3", Operator: "*", Right: "4", Result: "12"}, "calc: 3 * 4 = 12"},
		{calc.Display{Left: "7", Operator: "/", Right: "0", Result: "divide by zero", Failed: true}, "calc: 7 / 0: divide by zero"},
		{calc.Display{Result: "malformed operand", Failed: true}, "calc: malformed operand"},
	}
	for _, tt := range tests {
		if got := evaluationLine(tt.d); got != tt.want {
			t.Fatalf("evaluationLine(%+v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
