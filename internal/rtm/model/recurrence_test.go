package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule_Weekly(t *testing.T) {
	r, err := ParseRule("FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR")
	require.NoError(t, err)
	assert.Equal(t, FreqWeekly, r.Freq)
	require.NotNil(t, r.Interval)
	assert.Equal(t, 2, *r.Interval)
	assert.Equal(t, []string{"MO", "WE", "FR"}, r.ByDay)
	assert.Nil(t, r.ByMonthDay)
	assert.Nil(t, r.Until)
	assert.Nil(t, r.Count)
}

func TestParseRule_MonthlyOrdinal(t *testing.T) {
	r, err := ParseRule("FREQ=MONTHLY;INTERVAL=1;BYDAY=2MO")
	require.NoError(t, err)
	assert.Equal(t, FreqMonthly, r.Freq)
	assert.Equal(t, []string{"2MO"}, r.ByDay)

	r, err = ParseRule("FREQ=MONTHLY;BYDAY=-1FR")
	require.NoError(t, err)
	assert.Equal(t, []string{"-1FR"}, r.ByDay)
}

func TestParseRule_BothByDayPatternsLaterWins(t *testing.T) {
	r, err := ParseRule("FREQ=MONTHLY;BYDAY=MO,TU;BYDAY=3TH")
	require.NoError(t, err)
	assert.Equal(t, []string{"3TH"}, r.ByDay)
}

func TestParseRule_CaseInsensitive(t *testing.T) {
	r, err := ParseRule("freq=weekly;byday=mo,tu")
	require.NoError(t, err)
	assert.Equal(t, FreqWeekly, r.Freq)
	assert.Equal(t, []string{"MO", "TU"}, r.ByDay)
}

func TestParseRule_MonthDayUntilCount(t *testing.T) {
	r, err := ParseRule("FREQ=MONTHLY;BYMONTHDAY=15;UNTIL=20241231T000000Z;COUNT=6")
	require.NoError(t, err)
	require.NotNil(t, r.ByMonthDay)
	assert.Equal(t, 15, *r.ByMonthDay)
	assert.Nil(t, r.ByDay)
	require.NotNil(t, r.Until)
	assert.True(t, r.Until.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, r.Count)
	assert.Equal(t, 6, *r.Count)
}

func TestParseRule_BadUntil(t *testing.T) {
	_, err := ParseRule("FREQ=DAILY;UNTIL=tomorrow")
	var merr *MalformedResponseError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "UNTIL", merr.Key)
}

func TestParseRecurrence_Shapes(t *testing.T) {
	r, err := parseRecurrence(nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = parseRecurrence("")
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = parseRecurrence(map[string]any{"every": "0", "$t": "FREQ=YEARLY"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, FreqYearly, r.Freq)
	assert.False(t, r.Every)
	assert.Equal(t, "FREQ=YEARLY", r.Rule)
}

func TestParseEstimate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Duration
	}{
		{in: ""},
		{in: "soon"},
		{in: "1d 2h", want: durPtr(26 * time.Hour)},
		{in: "2d 3h 15m", want: durPtr(51*time.Hour + 15*time.Minute)},
		{in: "1.5 hours", want: durPtr(90 * time.Minute)},
		{in: "45 MIN", want: durPtr(45 * time.Minute)},
		{in: "0h", want: durPtr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEstimate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEstimate_OutOfRange(t *testing.T) {
	for _, in := range []string{"99999999999d", "9999999999999999999999h"} {
		got, err := ParseEstimate(in)
		var merr *MalformedResponseError
		require.ErrorAs(t, err, &merr, in)
		assert.Equal(t, "estimate", merr.Key)
		assert.Nil(t, got)
	}
}

func durPtr(d time.Duration) *time.Duration { return &d }
