package statement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/spendmatch/internal/model"
)

// maxSerialDate is the spreadsheet serial for 9999-12-31.
const maxSerialDate = 2958465

// XLSXParser reads spreadsheet statement exports whose header position,
// column names, date format and number format vary between exports.
type XLSXParser struct {
	logger   *slog.Logger
	location *time.Location
}

// NewXLSXParser creates a spreadsheet parser. Timestamps without zone
// information are interpreted in time.Local.
func NewXLSXParser(logger *slog.Logger) *XLSXParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXParser{logger: logger, location: time.Local}
}

// WithLocation returns a copy of the parser reading timestamps in loc.
func (p *XLSXParser) WithLocation(loc *time.Location) *XLSXParser {
	cp := *p
	cp.location = loc
	return &cp
}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Accepts reports whether the file looks like a spreadsheet this parser reads.
func (p *XLSXParser) Accepts(filename string) bool {
	return hasExtension(filename, ".xlsx", ".xlsm")
}

// Parse reads the first sheet of the workbook.
func (p *XLSXParser) Parse(ctx context.Context, r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, formatErrorf("not a readable workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return Result{}, formatErrorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetList[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Result{}, fmt.Errorf("failed to read sheet %q: %w", sheetList[0], err)
	}

	return p.parseRows(ctx, rows)
}

func (p *XLSXParser) parseRows(ctx context.Context, rows [][]string) (Result, error) {
	headerIdx, ok := findHeaderRow(rows)
	if !ok {
		return Result{}, formatErrorf("no header row with date and amount in the first %d rows", HeaderScanRows)
	}

	cols, err := resolveColumns(rows[headerIdx])
	if err != nil {
		return Result{}, err
	}

	var result Result
	for i := headerIdx + 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		txn, err := p.parseRow(row, cols)
		if err != nil {
			result.Skipped++
			p.logger.Debug("skipping statement row",
				"row", i+1,
				"error", err)
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	assignIdentity(result.Transactions)
	result.Processed = len(result.Transactions)

	p.logger.Info("parsed statement",
		"format", p.Format(),
		"header_row", headerIdx+1,
		"processed", result.Processed,
		"skipped", result.Skipped)

	return result, nil
}

func (p *XLSXParser) parseRow(row []string, cols columns) (model.Transaction, error) {
	dateCell := cellAt(row, cols.date)
	amountCell := cellAt(row, cols.amount)
	if dateCell == "" || amountCell == "" {
		return model.Transaction{}, fmt.Errorf("missing date or amount")
	}

	date, err := ParseDateValue(cellValue(dateCell), p.location)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := ParseAmount(amountCell)
	if err != nil {
		return model.Transaction{}, err
	}

	description := cellAt(row, cols.description)
	if description == "" {
		description = model.DefaultDescription
	}

	return model.Transaction{
		Date:        date,
		Amount:      amount,
		Description: description,
		Currency:    model.DefaultCurrency,
	}, nil
}

// cellValue turns a raw cell into a native value: spreadsheet serial dates
// become float64, everything else stays text.
func cellValue(raw string) any {
	if strings.ContainsAny(raw, " :") {
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 && f <= maxSerialDate {
		return f
	}
	return raw
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
