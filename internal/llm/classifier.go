package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spendmatch/internal/model"
)

// Classifier implements Categorizer on top of a raw Client.
type Classifier struct {
	client   Client
	cache    *resultCache
	limiter  *rateLimiter
	logger   *slog.Logger
	fallback string
	timeout  time.Duration
}

// NewClassifier wraps client. Timeout, rate limit, cache TTL and fallback
// category are taken from cfg.
func NewClassifier(client Client, cfg Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	fallback := strings.TrimSpace(cfg.FallbackCategory)
	if fallback == "" {
		fallback = model.FallbackCategory
	}

	return &Classifier{
		client:   client,
		cache:    newResultCache(cfg.CacheTTL),
		limiter:  newRateLimiter(cfg.RateLimit),
		logger:   logger,
		fallback: fallback,
		timeout:  timeout,
	}
}

// Fallback returns the category assigned to degraded results.
func (c *Classifier) Fallback() string {
	return c.fallback
}

// Categorize asks the model for a category. It never fails: transport
// errors, timeouts, malformed answers and unknown categories all resolve to
// the fallback category with a comment saying what went wrong.
func (c *Classifier) Categorize(ctx context.Context, req Request) Result {
	key := cacheKey(req)
	if result, ok := c.cache.get(key); ok {
		c.logger.Debug("cache hit for transaction", "transaction_id", req.Transaction.ID)
		return result
	}

	if err := c.limiter.wait(ctx); err != nil {
		return c.degrade(req, "Категоризация прервана до обращения к LLM", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req.Fallback = c.fallback
	raw, err := c.client.Complete(callCtx, BuildPrompt(req))
	if err != nil {
		return c.degrade(req, describeCallError(err), err)
	}

	answer, err := parseCategorization(raw)
	if err != nil {
		return c.degrade(req, "Ошибка обработки ответа LLM", err)
	}

	category, err := validateCategory(answer.Category, req.Categories)
	if err != nil {
		comment := answer.Comment
		if comment == "" {
			comment = fmt.Sprintf("LLM предложила категорию %q не из списка", answer.Category)
		}
		return c.degrade(req, comment, err)
	}

	result := Result{Category: category, Comment: answer.Comment}
	c.cache.set(key, result)

	c.logger.Debug("transaction categorized",
		"transaction_id", req.Transaction.ID,
		"category", category,
		"notes", len(req.NearbyNotes))

	return result
}

func (c *Classifier) degrade(req Request, comment string, cause error) Result {
	c.logger.Warn("categorization degraded to fallback",
		"transaction_id", req.Transaction.ID,
		"fallback", c.fallback,
		"error", cause)

	return Result{Category: c.fallback, Comment: comment, Degraded: true}
}

func describeCallError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "LLM не ответила вовремя"
	case errors.Is(err, context.Canceled):
		return "Категоризация прервана"
	case errors.Is(err, ErrUnexpectedStatus):
		return fmt.Sprintf("Ошибка API LLM: %v", err)
	default:
		return fmt.Sprintf("Ошибка соединения с LLM: %v", err)
	}
}
