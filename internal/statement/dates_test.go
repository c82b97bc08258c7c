package statement

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "dotted date", input: "01.01.2024", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "dotted date with time", input: "15.03.2024 18:08", want: time.Date(2024, 3, 15, 18, 8, 0, 0, time.UTC)},
		{name: "dotted date with seconds", input: "15.03.2024 18:08:59", want: time.Date(2024, 3, 15, 18, 8, 59, 0, time.UTC)},
		{name: "single digit day", input: "5.3.2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{name: "iso date", input: "2024-02-29", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "iso date with time", input: "2024-02-29 07:30", want: time.Date(2024, 2, 29, 7, 30, 0, 0, time.UTC)},
		{name: "iso date with seconds", input: "2024-02-29 07:30:15", want: time.Date(2024, 2, 29, 7, 30, 15, 0, time.UTC)},
		{name: "iso timestamp", input: "2024-02-29T07:30:15", want: time.Date(2024, 2, 29, 7, 30, 15, 0, time.UTC)},
		{name: "space separated", input: "20 12 2025", want: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)},
		{name: "space separated with time", input: "20 12 2025 18:08", want: time.Date(2025, 12, 20, 18, 8, 0, 0, time.UTC)},
		{name: "russian month abbreviation", input: "31 дек 2023", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "abbreviation with dot and time", input: "20 дек. 2025, 18:08", want: time.Date(2025, 12, 20, 18, 8, 0, 0, time.UTC)},
		{name: "irregular may form", input: "9 мая 2024", want: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)},
		{name: "irregular september form", input: "1 сент. 2024", want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
		{name: "full month name", input: "14 февраля 2024", want: time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
		{name: "upper case month", input: "03 ЯНВ 2024", want: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{name: "english month", input: "7 Mar 2024 09:15", want: time.Date(2024, 3, 7, 9, 15, 0, 0, time.UTC)},
		{name: "slashes via digit runs", input: "20/12/2025", want: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)},
		{name: "year first digit runs", input: "2025/12/20", want: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)},
		{name: "digit runs with time", input: "20_12_2025 13h45", want: time.Date(2025, 12, 20, 13, 45, 0, 0, time.UTC)},
		{name: "surrounding whitespace", input: "  01.01.2024 ", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateFailures(t *testing.T) {
	inputs := []string{
		"",
		"Итого",
		"Итого за период: 12",
		"31.02.2024",
		"45 13 2024",
		"дек 2024",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input, time.UTC)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparseableDate))
		})
	}
}

func TestParseDateMissingYearUsesCurrentYear(t *testing.T) {
	original := now
	now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = original })

	got, err := ParseDate("12 окт, 10:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC), got)
}

func TestParseDateDefaultsToLocal(t *testing.T) {
	got, err := ParseDate("01.01.2024", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
}

func TestParseDateValue(t *testing.T) {
	t.Run("native time passes through unchanged", func(t *testing.T) {
		native := time.Date(2024, 4, 1, 12, 34, 56, 789, time.FixedZone("MSK", 3*3600))
		got, err := ParseDateValue(native, time.UTC)
		require.NoError(t, err)
		assert.True(t, native.Equal(got))
		assert.Equal(t, native.Location(), got.Location())
	})

	t.Run("serial number", func(t *testing.T) {
		// 45292 is 2024-01-01, .75 is 18:00
		got, err := ParseDateValue(45292.75, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), got)
	})

	t.Run("text", func(t *testing.T) {
		got, err := ParseDateValue("31 дек 2023", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := ParseDateValue(42, time.UTC)
		assert.ErrorIs(t, err, ErrUnparseableDate)
	})
}
