package statement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendmatch/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// OFXParser implements OFX/QFX statement parsing.
type OFXParser struct {
	logger *slog.Logger
}

// NewOFXParser creates a new OFX parser.
func NewOFXParser() *OFXParser {
	return &OFXParser{logger: slog.Default()}
}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Accepts reports whether the file is an OFX or QFX export.
func (p *OFXParser) Accepts(filename string) bool {
	return hasExtension(filename, ".ofx", ".qfx")
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *OFXParser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag line
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse parses an OFX/QFX file and returns its bank and credit card
// transactions.
func (p *OFXParser) Parse(ctx context.Context, r io.Reader) (Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return Result{}, formatErrorf("failed to parse OFX file: %v", err)
	}

	var result Result

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			p.collect(&result, stmt.BankTranList.Transactions, currencyOf(stmt.CurDef))
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			p.collect(&result, stmt.BankTranList.Transactions, currencyOf(stmt.CurDef))
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	assignIdentity(result.Transactions)
	result.Processed = len(result.Transactions)

	p.logger.Info("parsed statement",
		"format", p.Format(),
		"processed", result.Processed,
		"skipped", result.Skipped)

	return result, nil
}

func (p *OFXParser) collect(result *Result, txns []ofxgo.Transaction, currency string) {
	for _, ofxTx := range txns {
		if ofxTx.DtPosted.IsZero() {
			result.Skipped++
			continue
		}
		result.Transactions = append(result.Transactions, p.convertTransaction(ofxTx, currency))
	}
}

// convertTransaction converts an OFX transaction to our model. OFX already
// uses negative amounts for debits.
func (p *OFXParser) convertTransaction(ofxTx ofxgo.Transaction, currency string) model.Transaction {
	return model.Transaction{
		ID:          string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Amount:      decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2),
		Description: describe(ofxTx),
		Currency:    currency,
	}
}

// describe prefers PAYEE, then NAME, then MEMO when NAME is generic.
func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}
	if name == "" {
		return model.DefaultDescription
	}
	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

func currencyOf(unit ofxgo.CurrSymbol) string {
	if s := unit.String(); s != "" && s != "XXX" {
		return s
	}
	return model.DefaultCurrency
}
