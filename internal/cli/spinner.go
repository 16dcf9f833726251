package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a message on one terminal line until it is stopped or
// its context ends. Only the animation goroutine writes to w.
type spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// startSpinner starts animating message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	s := &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.clear()
			return
		case <-s.stop:
			s.clear()
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
		}
	}
}

func (s *spinner) clear() {
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// Stop ends the animation and clears the line. Calling it again is a no-op.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
