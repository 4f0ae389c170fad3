package kernel

import "runtime/debug"

// PanicInfo contains details about a recovered task panic.
type PanicInfo struct {
	TaskID TaskID
	Value  any
	Stack  []byte
}

// InPanicMode reports whether a task of this kernel has panicked.
func (k *Kernel) InPanicMode() bool {
	return k.panicActive.Load()
}

// SetPanicHandler installs the kernel panic handler.
//
// The handler is invoked at most once (on the first panic). It must not panic.
func (k *Kernel) SetPanicHandler(fn func(PanicInfo)) {
	k.panicHandler.Store(fn)
}

func (k *Kernel) triggerPanic(info PanicInfo) {
	k.panicOnce.Do(func() {
		info.Stack = debug.Stack()
		if v := k.panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
		k.panicActive.Store(true)
	})
}
