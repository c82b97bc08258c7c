package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/spendmatch/internal/model"
)

// NoNotesText replaces the notes section when no note is close enough.
const NoNotesText = "Нет заметок рядом с этой датой."

// BuildPrompt renders the categorization prompt for one transaction. An
// empty req.Fallback names model.FallbackCategory as the answer of last resort.
func BuildPrompt(req Request) string {
	txn := req.Transaction

	fallback := strings.TrimSpace(req.Fallback)
	if fallback == "" {
		fallback = model.FallbackCategory
	}

	categories, err := json.Marshal(req.Categories)
	if err != nil {
		categories = []byte("[]")
	}

	currency := txn.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	hints := strings.TrimSpace(req.UserHints)
	if hints == "" {
		hints = "нет"
	}

	var b strings.Builder
	b.WriteString("Роль: финансовый аналитик.\n")
	b.WriteString("Задача: определи категорию траты по описанию банка и заметкам пользователя.\n\n")
	fmt.Fprintf(&b, "Транзакция: %s | %s %s | %s\n",
		txn.Date.Format("2006-01-02"), txn.Amount.String(), currency, txn.Description)
	fmt.Fprintf(&b, "Доступные категории: %s\n", categories)
	b.WriteString("Заметки пользователя рядом с датой траты:\n")
	b.WriteString(FormatNotes(req.NearbyNotes))
	fmt.Fprintf(&b, "\nГлобальные подсказки пользователя: %s\n\n", hints)
	b.WriteString("Правила:\n")
	b.WriteString("- Если заметка подходит по времени и смыслу, возьми информацию из неё.\n")
	b.WriteString("- Если заметки нет, анализируй описание банка.\n")
	fmt.Fprintf(&b, "- Категория должна быть строго из списка, иначе \"%s\".\n\n", fallback)
	b.WriteString("Верни ТОЛЬКО валидный JSON в формате:\n")
	b.WriteString(`{"category": "название категории", "comment": "короткое пояснение или текст заметки"}`)

	return b.String()
}

// FormatNotes renders notes as "- [DD.MM HH:MM] text" lines in time order.
func FormatNotes(notes []model.Note) string {
	if len(notes) == 0 {
		return NoNotesText
	}

	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	lines := make([]string, len(sorted))
	for i, n := range sorted {
		lines[i] = fmt.Sprintf("- [%s] %s", n.Timestamp.Format("02.01 15:04"), n.Text)
	}
	return strings.Join(lines, "\n")
}
