package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/llm"
	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/report"
	"github.com/Veraticus/spendmatch/internal/sheets"
	"github.com/Veraticus/spendmatch/internal/statement"
	"github.com/Veraticus/spendmatch/internal/storage"
)

// openStorage opens the configured database and brings its schema up to date.
func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.settings.Database.Path)
	if err != nil {
		return nil, err
	}
	store.WithLogger(a.logger)

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// categorizer builds the classifier for the configured backend.
func (a *app) categorizer(ctx context.Context) (llm.Categorizer, error) {
	client, err := a.newClient(ctx, a.settings.LLM)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("Could not set up the %q language model backend: %v", a.settings.LLM.Provider, err), err)
	}
	return llm.NewClassifier(client, a.settings.LLM, a.logger), nil
}

// classifierInput loads the category list and user hints the model sees.
func classifierInput(ctx context.Context, store *storage.SQLiteStorage) ([]string, string, error) {
	categories, err := store.GetCategories(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get categories: %w", err)
	}

	hints, err := store.GetHints(ctx)
	if err != nil {
		return nil, "", err
	}

	return model.CategoryNames(categories), hints, nil
}

// openStatement picks a parser by file name and opens the file.
func openStatement(path string) (statement.Parser, *os.File, error) {
	parser, err := statement.DefaultRegistry().ForFile(path)
	if err != nil {
		return nil, nil, common.NewUserError(
			fmt.Sprintf("%s is not a supported statement (use .xlsx, .ofx or .qfx)", path), err)
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied statement path
	if err != nil {
		return nil, nil, common.NewUserError(fmt.Sprintf("Could not open %s", path), err)
	}

	return parser, f, nil
}

// statementError turns a parse failure into something the user can act on.
func statementError(path string, err error) error {
	var formatErr *statement.FormatError
	if errors.As(err, &formatErr) {
		return common.NewUserError(fmt.Sprintf("Could not read %s: %s", path, formatErr.Reason), err)
	}
	return err
}

func (a *app) serializer(english bool) *report.CSVSerializer {
	if english || a.settings.Report.EnglishHeader {
		return report.NewCSVSerializer(report.WithEnglishHeader())
	}
	return report.NewCSVSerializer()
}

// writeReport sends the CSV to path, or to stdout when path is empty.
func (a *app) writeReport(path string, data []byte) error {
	if path == "" {
		_, err := a.out.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf("Report written to %s", path)))
	return nil
}

// pushToSheets uploads the report rows to the configured spreadsheet.
func (a *app) pushToSheets(ctx context.Context, header []string, txns []model.Transaction) error {
	writer, err := sheets.NewWriter(ctx, a.settings.Sheets, a.logger)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("Google Sheets is not set up: %v", err), err)
	}

	id, err := writer.WithHeader(header).Write(ctx, txns)
	if err != nil {
		return fmt.Errorf("failed to write to Google Sheets: %w", err)
	}

	_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(
		fmt.Sprintf("Report uploaded: https://docs.google.com/spreadsheets/d/%s", id)))
	return nil
}

// parseDateFlag parses a --from/--to value. A bare date given as an end
// bound covers the whole day.
func parseDateFlag(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := statement.ParseDate(value, time.Local)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Could not understand the date %q", value), err)
	}

	if endOfDay && t.Equal(startOfDay(t)) {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
