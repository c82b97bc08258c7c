package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "clean negative", input: "-250.00", want: "-250"},
		{name: "comma decimal", input: "-250,50", want: "-250.5"},
		{name: "no-break space thousands", input: "1\u00a0500,75", want: "1500.75"},
		{name: "plain space thousands", input: "-12 345,00", want: "-12345"},
		{name: "narrow space thousands", input: "2\u202f000", want: "2000"},
		{name: "explicit plus", input: "+100", want: "100"},
		{name: "ruble sign", input: "-99,90 \u20bd", want: "-99.9"},
		{name: "unicode minus", input: "\u2212450", want: "-450"},
		{name: "integer", input: "42", want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountFailures(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "1,500,75", "Итого"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAmount(input)
			assert.ErrorIs(t, err, ErrUnparseableAmount)
		})
	}
}
