package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period string
		want   DayList
	}{
		{"one week", "11/08/2025 a 17/08/2025", DayList{
			"2025-08-11", "2025-08-12", "2025-08-13", "2025-08-14",
			"2025-08-15", "2025-08-16", "2025-08-17",
		}},
		{"single day", "05/03/2025 a 05/03/2025", DayList{"2025-03-05"}},
		{"crosses month", "30/01/2024 a 02/02/2024", DayList{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}},
		{"leap day", "28/02/2024 a 01/03/2024", DayList{"2024-02-28", "2024-02-29", "2024-03-01"}},
		{"padded", "  01/12/2025 a 02/12/2025 ", DayList{"2025-12-01", "2025-12-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPeriod(tt.period))
		})
	}
}

func TestExpandPeriod_Malformed(t *testing.T) {
	for _, period := range []string{
		"",
		"11/08/2025 - 17/08/2025",
		"11/08/2025 a",
		"aa/bb/cccc a 17/08/2025",
		"11/08/2025 a 32/08/2025",
		"17/08/2025 a 11/08/2025",
		"01/01/2025 a 02/01/2025 a 03/01/2025",
	} {
		t.Run(period, func(t *testing.T) {
			assert.Empty(t, ExpandPeriod(period))

			_, err := ParsePeriod(period)
			require.ErrorIs(t, err, ErrPeriodMalformed)
		})
	}
}

func TestDayList(t *testing.T) {
	days := ExpandPeriod("11/08/2025 a 13/08/2025")

	assert.True(t, days.Contains("2025-08-12"))
	assert.False(t, days.Contains("2025-08-14"))
	assert.Equal(t, "2025-08-11, 2025-08-12, 2025-08-13", days.String())
	assert.Equal(t, days, ParseDayList(days.String()))
	assert.Empty(t, ParseDayList(""))
}
