package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels the command context on SIGINT/SIGTERM and tells
// the user what happens to unfinished work.
type InterruptHandler struct {
	writer      io.Writer
	interrupted bool
	resumable   bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{writer: writer}
}

// HandleInterrupts returns a context canceled on the first interrupt and a
// stop function that releases the signal handler. When resumable is set the
// message explains that stored progress survives.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, resumable bool) (context.Context, func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, stop := h.handle(ctx, sigChan, resumable)
	return ctx, func() {
		signal.Stop(sigChan)
		stop()
	}
}

func (h *InterruptHandler) handle(ctx context.Context, signals <-chan os.Signal, resumable bool) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	h.resumable = resumable

	go func() {
		select {
		case <-signals:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
			h.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n" + FormatWarning("Interrupted!")
	if h.resumable {
		msg += "\n" + FormatInfo("Finished categorizations are saved. Resume with: spendmatch categorize")
	} else {
		msg += "\n" + FormatInfo("Unfinished transactions fall back to the default category.")
	}

	// Best effort, we are shutting down anyway.
	_, _ = fmt.Fprintln(h.writer, msg)
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
