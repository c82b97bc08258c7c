// Package statement turns bank statement exports into transactions.
//
// Bank exports are unstable: the header row moves, column names change and
// dates come in several representations. A malformed row is skipped and
// counted, while a file with no recognizable structure fails with a
// FormatError.
package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spendmatch/internal/model"
)

var (
	// ErrFormat indicates that no usable statement structure was found.
	ErrFormat = errors.New("unrecognized statement format")
	// ErrUnsupportedFormat indicates that no parser accepts the file.
	ErrUnsupportedFormat = errors.New("unsupported statement file")
)

// FormatError describes why a statement could not be parsed at all.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFormat, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Result holds the transactions extracted from a statement.
type Result struct {
	Transactions []model.Transaction
	Processed    int
	Skipped      int
}

// Parser converts a bank statement export into transactions.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (Result, error)
	Format() string
	Accepts(filename string) bool
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
	order   []string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	r.order = append(r.order, key)
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile returns the first registered parser accepting filename.
func (r *Registry) ForFile(filename string) (Parser, error) {
	for _, key := range r.order {
		if p := r.parsers[key]; p.Accepts(filename) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewXLSXParser(nil))
	r.Register(NewOFXParser())
	return r
}

func hasExtension(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// assignIdentity fills Hash and ID. Identical rows within one statement get
// distinct identities so that they are not collapsed on import.
func assignIdentity(transactions []model.Transaction) {
	seen := make(map[string]int, len(transactions))
	for i := range transactions {
		txn := &transactions[i]
		hash := txn.GenerateHash()
		if n := seen[hash]; n > 0 {
			seen[hash] = n + 1
			hash = fmt.Sprintf("%s-%d", hash, n)
		} else {
			seen[hash] = 1
		}
		txn.Hash = hash
		if txn.ID == "" {
			txn.ID = shortID(hash)
		}
	}
}

func shortID(hash string) string {
	base, suffix, found := strings.Cut(hash, "-")
	if len(base) > 16 {
		base = base[:16]
	}
	if found {
		return base + "-" + suffix
	}
	return base
}
