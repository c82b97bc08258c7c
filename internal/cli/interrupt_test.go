package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	handler := NewInterruptHandler(nil)
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.WasInterrupted())
}

func TestInterruptHandler_Signal(t *testing.T) {
	tests := []struct {
		name        string
		expected    string
		notExpected string
		resumable   bool
	}{
		{name: "resumable", resumable: true, expected: "Resume with: spendmatch categorize", notExpected: "fall back"},
		{name: "one shot", resumable: false, expected: "fall back to the default category", notExpected: "Resume with"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &syncBuffer{}
			handler := NewInterruptHandler(output)
			signals := make(chan os.Signal, 2)

			ctx, stop := handler.handle(context.Background(), signals, tt.resumable)
			defer stop()

			select {
			case <-ctx.Done():
				t.Fatal("context canceled before any signal")
			default:
			}

			signals <- os.Interrupt
			signals <- os.Interrupt

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Fatal("context not canceled after interrupt")
			}

			require.Eventually(t, handler.WasInterrupted, time.Second, 5*time.Millisecond)
			out := output.String()
			assert.Equal(t, 1, strings.Count(out, "Interrupted!"))
			assert.Contains(t, out, tt.expected)
			assert.NotContains(t, out, tt.notExpected)
		})
	}
}

func TestInterruptHandler_ParentCancelIsNotAnInterrupt(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output)

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := handler.HandleInterrupts(parent, false)
	defer stop()

	cancel()
	<-ctx.Done()

	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}
