package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon)
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatWarning("degraded"), "degraded")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Итоги"), "Итоги")
	assert.Contains(t, RenderBox("Итоги", "3 транзакции"), "3 транзакции")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Категория", "Сумма"},
		[][]string{
			{"Продукты", "-1200"},
			{"Кафе и рестораны", "-500.5"},
		},
	)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Категория")
	assert.Contains(t, lines[2], "Кафе и рестораны")

	// The amount column starts at the same cell offset on every row.
	offset := func(line, cell string) int {
		idx := strings.Index(line, cell)
		require.GreaterOrEqual(t, idx, 0)
		return lipgloss.Width(line[:idx])
	}
	assert.Equal(t, offset(lines[1], "-1200"), offset(lines[2], "-500.5"))
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 4, "Категоризация")

	p.Update(1, 4)
	p.Update(3, 4)
	assert.Equal(t, 3, p.Current())

	p.Update(4, 4)
	assert.Equal(t, 4, p.Current())
}
