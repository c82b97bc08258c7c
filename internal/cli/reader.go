package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader reads user input from a terminal or pipe without blocking
// past context cancellation.
type LineReader struct {
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewLineReader creates a new reader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

type readResult struct {
	err   error
	value string
}

// wait runs read in the background and returns early on cancellation. The
// read itself keeps going until the underlying reader returns.
func (r *LineReader) wait(ctx context.Context, read func() (string, error)) (string, error) {
	resultCh := make(chan readResult, 1)
	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		value, err := read()
		resultCh <- readResult{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}

// ReadLine reads one line with surrounding whitespace removed. A final
// line without a newline is returned without error.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	line, err := r.wait(ctx, func() (string, error) {
		return r.reader.ReadString('\n')
	})
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadAll reads until EOF and trims the result.
func (r *LineReader) ReadAll(ctx context.Context) (string, error) {
	text, err := r.wait(ctx, func() (string, error) {
		b, readErr := io.ReadAll(r.reader)
		return string(b), readErr
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
