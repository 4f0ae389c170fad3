//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
)

type hostStatus struct {
	mu   sync.Mutex
	last string
	sink func(string)
}

func (s *hostStatus) setSink(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = fn
}

// Show forwards line to the sink when it differs from the previous line.
func (s *hostStatus) Show(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line == s.last {
		return
	}
	s.last = line
	if s.sink != nil {
		s.sink(line)
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// liveConsole keeps the status line pinned at the bottom of a terminal while
// log lines scroll above it.
type liveConsole struct {
	w *uilive.Writer
}

func newLiveConsole(out io.Writer) *liveConsole {
	w := uilive.New()
	w.Out = out
	w.RefreshInterval = 50 * time.Millisecond
	w.Start()
	return &liveConsole{w: w}
}

func (c *liveConsole) show(line string) {
	fmt.Fprintf(c.w, "calc> %s\n", line)
}

func (c *liveConsole) bypass() io.Writer { return c.w.Bypass() }

func (c *liveConsole) stop() { c.w.Stop() }
