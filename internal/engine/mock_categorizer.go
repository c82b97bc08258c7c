package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
)

// MockCategorizer is a deterministic llm.Categorizer for tests and dry runs.
// It picks a category from keywords in the description and echoes the
// closest note as the comment.
type MockCategorizer struct {
	Keywords map[string]string
	Delay    time.Duration
	requests []llm.Request
	inFlight int
	peak     int
	mu       sync.Mutex
}

// NewMockCategorizer creates a mock with the given keyword to category map.
func NewMockCategorizer(keywords map[string]string) *MockCategorizer {
	return &MockCategorizer{Keywords: keywords}
}

// Categorize implements llm.Categorizer.
func (m *MockCategorizer) Categorize(ctx context.Context, req llm.Request) llm.Result {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return llm.Result{Category: model.FallbackCategory, Comment: "Категоризация прервана", Degraded: true}
		}
	}

	description := strings.ToLower(req.Transaction.Description)
	for keyword, category := range m.Keywords {
		if strings.Contains(description, strings.ToLower(keyword)) {
			return llm.Result{Category: category, Comment: closestNote(req)}
		}
	}
	return llm.Result{Category: model.FallbackCategory, Comment: "Нет подходящего правила", Degraded: true}
}

// Requests returns the requests seen so far.
func (m *MockCategorizer) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// PeakInFlight returns the highest number of concurrent calls observed.
func (m *MockCategorizer) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

func closestNote(req llm.Request) string {
	var best *model.Note
	var bestDist time.Duration
	for i := range req.NearbyNotes {
		n := &req.NearbyNotes[i]
		dist := n.Timestamp.Sub(req.Transaction.Date)
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best, bestDist = n, dist
		}
	}
	if best == nil {
		return ""
	}
	return best.Text
}
