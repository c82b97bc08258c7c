package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendmatch/internal/model"
)

func TestSQLiteStorage_Categories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, "  Путешествия ", "билеты и отели")
	require.NoError(t, err)
	assert.Equal(t, "Путешествия", created.Name)
	assert.Equal(t, "билеты и отели", created.Description)
	assert.NotZero(t, created.ID)

	_, err = store.CreateCategory(ctx, "Путешествия", "")
	assert.ErrorIs(t, err, ErrCategoryExists)

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	names := model.CategoryNames(categories)
	assert.Equal(t, model.DefaultCategories[0], names[0])
	assert.Equal(t, "Путешествия", names[len(names)-1])

	require.NoError(t, store.DeleteCategory(ctx, "Путешествия"))
	assert.ErrorIs(t, store.DeleteCategory(ctx, "Путешествия"), ErrCategoryNotFound)
	assert.ErrorIs(t, store.DeleteCategory(ctx, model.FallbackCategory), ErrFallbackCategory)

	_, err = store.CreateCategory(ctx, " ", "")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_Hints(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	hints, err := store.GetHints(ctx)
	require.NoError(t, err)
	assert.Empty(t, hints)

	require.NoError(t, store.SetHints(ctx, "Пятёрочка это продукты"))
	require.NoError(t, store.SetHints(ctx, "Лента тоже продукты"))

	hints, err = store.GetHints(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Лента тоже продукты", hints)
}
