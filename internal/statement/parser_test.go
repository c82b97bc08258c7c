package statement

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	format string
	exts   []string
}

func (s stubParser) Parse(context.Context, io.Reader) (Result, error) { return Result{}, nil }
func (s stubParser) Format() string                                    { return s.format }
func (s stubParser) Accepts(filename string) bool                      { return hasExtension(filename, s.exts...) }

func TestDefaultRegistry_ForFile(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		filename string
		format   string
	}{
		{filename: "statement.xlsx", format: "xlsx"},
		{filename: "/tmp/Выписка.XLSX", format: "xlsx"},
		{filename: "macro.xlsm", format: "xlsx"},
		{filename: "export.ofx", format: "ofx"},
		{filename: "export.QFX", format: "ofx"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := registry.ForFile(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.format, p.Format())
		})
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	for _, name := range []string{"legacy.xls", "notes.txt", "noext"} {
		_, err := DefaultRegistry().ForFile(name)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat), name)
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(stubParser{format: "CSV", exts: []string{".csv"}})

	assert.NotNil(t, r.Get("csv"))
	assert.Nil(t, r.Get("xlsx"))
	assert.Panics(t, func() { r.Register(stubParser{format: "csv"}) })
}

func TestFormatError(t *testing.T) {
	err := formatErrorf("no header in %d rows", 20)

	assert.EqualError(t, err, "unrecognized statement format: no header in 20 rows")
	assert.ErrorIs(t, err, ErrFormat)
}
