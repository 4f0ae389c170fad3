package kernel

import (
	"testing"
	"time"
)

const testTimeout = 1 * time.Second

func TestMessagePayloadClampsLen(t *testing.T) {
	var msg Message
	msg.Len = MaxMessageBytes + 10
	if got := len(msg.Payload()); got != MaxMessageBytes {
		t.Fatalf("expected payload length %d, got %d", MaxMessageBytes, got)
	}
}

func TestNewEndpointExhausted(t *testing.T) {
	k := New()
	for i := 0; i < maxEndpoints; i++ {
		if c := k.NewEndpoint(RightSend); !c.Valid() {
			t.Fatalf("endpoint %d invalid", i)
		}
	}
	if c := k.NewEndpoint(RightSend); c.Valid() {
		t.Fatal("expected invalid capability once endpoints are exhausted")
	}
}

func TestQueueFull(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k, taskID: 1}

	for i := 0; i < mailboxSlots; i++ {
		if res := ctx.SendToCapResult(ep, 1, []byte("x"), Capability{}); res != SendOK {
			t.Fatalf("expected SendOK at slot %d, got %s", i, res)
		}
	}
	if res := ctx.SendToCapResult(ep, 1, []byte("x"), Capability{}); res != SendErrQueueFull {
		t.Fatalf("expected SendErrQueueFull, got %s", res)
	}
}

func TestSendToCapRetryZeroLimitDoesNotBlock(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	if !ep.Valid() {
		t.Fatal("expected valid capability")
	}

	ctx := &Context{k: k, taskID: 1}
	to := ep.Restrict(RightSend)

	for i := 0; i < mailboxSlots; i++ {
		if res := ctx.SendToCapResult(to, 1, []byte("x"), Capability{}); res != SendOK {
			t.Fatalf("expected SendOK filling queue, got %s", res)
		}
	}

	res := ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 0)
	if res != SendErrQueueFull {
		t.Fatalf("expected SendErrQueueFull, got %s", res)
	}
}

func TestSendToCapRetrySucceedsAfterDrain(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	if !ep.Valid() {
		t.Fatal("expected valid capability")
	}

	ctx := &Context{k: k, taskID: 1}
	to := ep.Restrict(RightSend)
	ch, ok := ctx.RecvChan(ep.Restrict(RightRecv))
	if !ok || ch == nil {
		t.Fatal("expected recv channel")
	}

	for i := 0; i < mailboxSlots; i++ {
		if res := ctx.SendToCapResult(to, 1, []byte("x"), Capability{}); res != SendOK {
			t.Fatalf("expected SendOK filling queue, got %s", res)
		}
	}

	resultCh := make(chan SendResult, 1)
	go func() {
		resultCh <- ctx.SendToCapRetry(to, 1, []byte("y"), Capability{}, 5)
	}()

	<-ch
	go func() {
		for i := uint64(1); i <= 10; i++ {
			k.TickTo(i)
			time.Sleep(1 * time.Millisecond)
		}
	}()

	select {
	case res := <-resultCh:
		if res != SendOK {
			t.Fatalf("expected SendOK after drain, got %s", res)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for send retry")
	}
}

func TestWaitTick(t *testing.T) {
	k := New()
	ctx := &Context{k: k, taskID: 1}

	k.TickTo(5)
	k.TickTo(3)
	if got := ctx.NowTick(); got != 5 {
		t.Fatalf("NowTick() = %d, want 5", got)
	}
	if got := ctx.WaitTick(4); got != 5 {
		t.Fatalf("WaitTick(4) = %d, want 5", got)
	}

	done := make(chan uint64, 1)
	go func() { done <- ctx.WaitTick(5) }()

	select {
	case <-done:
		t.Fatal("WaitTick returned before the tick advanced")
	case <-time.After(10 * time.Millisecond):
	}

	k.TickTo(9)
	select {
	case got := <-done:
		if got != 9 {
			t.Fatalf("WaitTick(5) = %d, want 9", got)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for tick")
	}
}

type echoTask struct {
	in  Capability
	out chan<- Message
}

func (t *echoTask) Run(ctx *Context) {
	for {
		msg, ok := ctx.Recv(t.in)
		if !ok {
			return
		}
		t.out <- msg
	}
}

func TestAddTaskRuns(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	out := make(chan Message, 1)

	id0 := k.AddTask(&echoTask{in: ep.Restrict(RightRecv), out: out})
	if id0 != 0 {
		t.Fatalf("first task ID = %d, want 0", id0)
	}

	ctx := &Context{k: k}
	if !ctx.SendTo(ep.Restrict(RightSend), 2, []byte("ping")) {
		t.Fatal("SendTo failed")
	}

	select {
	case msg := <-out:
		if string(msg.Payload()) != "ping" {
			t.Fatalf("payload = %q, want ping", msg.Payload())
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for echo")
	}
}

type panicTask struct{}

func (panicTask) Run(*Context) { panic("boom") }

func TestTaskPanicInvokesHandlerOnce(t *testing.T) {
	k := New()
	got := make(chan PanicInfo, 2)
	k.SetPanicHandler(func(info PanicInfo) { got <- info })

	k.AddTask(&echoTask{in: k.NewEndpoint(RightRecv), out: make(chan Message)})
	k.AddTask(panicTask{})
	k.AddTask(panicTask{})

	select {
	case info := <-got:
		if info.Value != "boom" {
			t.Fatalf("panic value = %v, want boom", info.Value)
		}
		if info.TaskID == 0 {
			t.Fatalf("panic task ID = 0, want a panicking task")
		}
		if len(info.Stack) == 0 {
			t.Fatal("expected a captured stack")
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for panic handler")
	}

	deadline := time.Now().Add(testTimeout)
	for !k.InPanicMode() {
		if time.Now().After(deadline) {
			t.Fatal("kernel never entered panic mode")
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case info := <-got:
		t.Fatalf("handler called twice (second task %d)", info.TaskID)
	case <-time.After(20 * time.Millisecond):
	}
}
