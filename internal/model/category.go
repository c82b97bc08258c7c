package model

import "time"

// FallbackCategory is assigned when a transaction cannot be classified.
const FallbackCategory = "Разное"

// DefaultCategories seeds a fresh database.
var DefaultCategories = []string{
	"Продукты",
	"Кафе и рестораны",
	"Транспорт",
	"Здоровье",
	"Дом",
	"Развлечения",
	"Одежда",
	"Связь",
	FallbackCategory,
}

// Category represents a spending category owned by the user.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	ID          int
}

// CategoryNames returns the names of the given categories in order.
func CategoryNames(categories []Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}
