package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayAndMonthBucket(t *testing.T) {
	at := time.Date(2026, 2, 3, 23, 59, 59, 0, time.Local)
	assert.Equal(t, "2026-02-03", DayBucket(at))
	assert.Equal(t, "2026-02", MonthBucket(at))
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.Local)
	assert.Equal(t, "2026-08-29 10:30:00", FormatTime(at))
	assert.Equal(t, "", FormatTime(time.Time{}))
}

func TestFormatTimePtr(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.Local)
	assert.Equal(t, "2026-08-29 10:30:00", FormatTimePtr(&at))
	assert.Equal(t, "", FormatTimePtr(nil))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29", DayBucket(got))

	_, err = ParseDate("29/08/2026")
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2026-08-29 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29 10:30:00", FormatTime(got))

	_, err = ParseDateTime("2026-08-29")
	assert.Error(t, err)
}

func TestParseDateRoundTrip(t *testing.T) {
	// 日桶标识解析后再格式化保持不变
	for _, s := range []string{"2026-01-01", "2026-12-31", "2024-02-29"} {
		parsed, err := ParseDate(s)
		require.NoError(t, err)
		assert.Equal(t, s, DayBucket(parsed))
	}
}
