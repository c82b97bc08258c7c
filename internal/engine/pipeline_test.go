package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/reconcile"
	"github.com/Veraticus/spendmatch/internal/report"
	"github.com/Veraticus/spendmatch/internal/statement"
)

// scriptedClient answers with the response whose key occurs in the prompt.
// A "{note}" placeholder is replaced with the first note line of the prompt.
type scriptedClient struct {
	answers map[string]string
	calls   int
	mu      sync.Mutex
}

func (s *scriptedClient) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	for key, answer := range s.answers {
		if strings.Contains(prompt, key) {
			return strings.ReplaceAll(answer, "{note}", firstNoteText(prompt)), nil
		}
	}
	return "", fmt.Errorf("no scripted answer")
}

func firstNoteText(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "- [") {
			if _, text, ok := strings.Cut(line, "] "); ok {
				return text
			}
		}
	}
	return ""
}

func statementWorkbook(t *testing.T, rows [][]any) io.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func newTestPipeline(client llm.Client, notes *memoryNotes) *Pipeline {
	return &Pipeline{
		Parser:       statement.NewXLSXParser(discardLogger).WithLocation(time.UTC),
		Notes:        notes,
		Reconciler:   reconcile.New(notes, reconcile.DefaultWindow, discardLogger),
		Orchestrator: NewOrchestrator(llm.NewClassifier(client, llm.Config{}, discardLogger), Options{Logger: discardLogger}),
		Serializer:   report.NewCSVSerializer(),
		Logger:       discardLogger,
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	rows := [][]any{
		{"Выписка по карте"},
		{"Дата операции", "Описание", "Сумма в рублях"},
		{"10.01.2024 09:00", "Зарплата", "100 000,00"},
		{"15.01.2024 10:30", "COFFEE POINT", "-350,50"},
		{"16.01.2024 18:08", "YANDEX GO", "-420,00"},
		{"20.01.2024 12:00", "Возврат", "500"},
	}

	notes := &memoryNotes{notes: []model.Note{
		{ID: "n1", Text: "латте с Машей", Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}}

	client := &scriptedClient{answers: map[string]string{
		"COFFEE POINT": `{"category": "Кафе и рестораны", "comment": "{note}"}`,
		"YANDEX GO":    `{"category": "Транспорт", "comment": "такси"}`,
	}}

	outcome, err := newTestPipeline(client, notes).Run(context.Background(), statementWorkbook(t, rows), testCategories, "")
	require.NoError(t, err)

	assert.Equal(t, 4, outcome.Parsed)
	assert.Zero(t, outcome.Skipped)
	require.Len(t, outcome.Transactions, 2)
	assert.Equal(t, []model.Match{{TransactionID: outcome.Transactions[0].ID, NoteID: "n1"}}, outcome.Matches)
	assert.Zero(t, outcome.Degraded)

	lines := strings.Split(strings.TrimSuffix(string(outcome.Report), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Дата,Сумма,Валюта,Описание,Категория,Комментарий", lines[0])
	assert.Equal(t, "2024-01-15,-350.5,RUB,COFFEE POINT,Кафе и рестораны,латте с Машей", lines[1])
	assert.Equal(t, "2024-01-16,-420,RUB,YANDEX GO,Транспорт,такси", lines[2])
}

func TestPipeline_NoExpenses(t *testing.T) {
	rows := [][]any{
		{"Дата", "Сумма", "Описание"},
		{"10.01.2024", "1000", "Зарплата"},
	}
	client := &scriptedClient{}

	outcome, err := newTestPipeline(client, &memoryNotes{}).Run(context.Background(), statementWorkbook(t, rows), testCategories, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrEmptyReport)
	assert.Equal(t, 1, outcome.Parsed)
	assert.Zero(t, client.calls)
}

func TestPipeline_FormatErrorEscapes(t *testing.T) {
	rows := [][]any{{"ничего", "полезного"}}

	_, err := newTestPipeline(&scriptedClient{}, &memoryNotes{}).Run(context.Background(), statementWorkbook(t, rows), testCategories, "")
	require.Error(t, err)

	var formatErr *statement.FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestPipeline_AbsorbsDownstreamFailures(t *testing.T) {
	rows := [][]any{
		{"Дата", "Сумма", "Описание"},
		{"15.01.2024 10:30", "-100", "SHOP"},
	}
	notes := &memoryNotes{err: errors.New("database is locked")}

	outcome, err := newTestPipeline(&scriptedClient{}, notes).Run(context.Background(), statementWorkbook(t, rows), testCategories, "")
	require.NoError(t, err)

	assert.Empty(t, outcome.Matches)
	assert.Equal(t, 1, outcome.Degraded)
	require.Len(t, outcome.Transactions, 1)
	assert.Equal(t, model.FallbackCategory, outcome.Transactions[0].Category)
	assert.NotEmpty(t, outcome.Report)
}
