package llm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spendmatch/internal/model"
)

func TestResultCache(t *testing.T) {
	t.Run("get and expire", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		cache := newResultCache(time.Minute)
		cache.now = clock.Now

		cache.set("k", Result{Category: "Транспорт", Comment: "такси"})
		got, ok := cache.get("k")
		assert.True(t, ok)
		assert.Equal(t, "Транспорт", got.Category)

		clock.Advance(2 * time.Minute)
		_, ok = cache.get("k")
		assert.False(t, ok)
		assert.Zero(t, cache.size())
	})

	t.Run("disabled cache stores nothing", func(t *testing.T) {
		cache := newResultCache(0)
		assert.Nil(t, cache)

		cache.set("k", Result{Category: "Дом"})
		_, ok := cache.get("k")
		assert.False(t, ok)
	})
}

func TestCacheKey(t *testing.T) {
	base := Request{
		Transaction: model.Transaction{
			Hash:        "abc",
			Date:        time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			Amount:      decimal.NewFromInt(-100),
			Description: "Кафе",
		},
		Categories: []string{"Продукты", "Разное"},
		UserHints:  "кофе это кафе",
	}

	withNote := base
	withNote.NearbyNotes = []model.Note{{ID: "n1", Text: "латте", Timestamp: base.Transaction.Date}}

	otherHints := base
	otherHints.UserHints = "другое"

	assert.Equal(t, cacheKey(base), cacheKey(base))
	assert.NotEqual(t, cacheKey(base), cacheKey(withNote))
	assert.NotEqual(t, cacheKey(base), cacheKey(otherHints))

	noHash := base
	noHash.Transaction.Hash = ""
	assert.NotEmpty(t, cacheKey(noHash))
}
