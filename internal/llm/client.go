package llm

import (
	"context"
	"time"

	"github.com/Veraticus/spendmatch/internal/model"
)

// Client is a raw text-completion backend.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Categorizer assigns a category and a comment to a transaction.
// Categorize never fails; degraded results carry the fallback category.
type Categorizer interface {
	Categorize(ctx context.Context, req Request) Result
}

// Request is everything the model sees about one transaction.
type Request struct {
	UserHints   string
	Fallback    string
	Transaction model.Transaction
	NearbyNotes []model.Note
	Categories  []string
}

// Result is the outcome of categorizing one transaction.
type Result struct {
	Category string
	Comment  string
	Degraded bool
}

// Config holds configuration for LLM backends and the classifier.
type Config struct {
	Provider         string
	BaseURL          string
	APIKey           string
	Model            string
	FolderID         string
	FallbackCategory string
	Timeout          time.Duration
	CacheTTL         time.Duration
	RateLimit        int
	Temperature      float64
	MaxTokens        int
}

// DefaultTimeout bounds a single classifier call.
const DefaultTimeout = 60 * time.Second

func (c Config) temperature(def float64) float64 {
	if c.Temperature == 0 {
		return def
	}
	return c.Temperature
}

func (c Config) maxTokens(def int) int {
	if c.MaxTokens == 0 {
		return def
	}
	return c.MaxTokens
}

func (c Config) model(def string) string {
	if c.Model == "" {
		return def
	}
	return c.Model
}

func (c Config) baseURL(def string) string {
	if c.BaseURL == "" {
		return def
	}
	return c.BaseURL
}
