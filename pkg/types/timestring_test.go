package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("9:30")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("abc")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Minutes(t *testing.T) {
	m, err := TimeString("09:30").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = TimeString("00:00").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 0, m)
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("09:30").AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:15"), got)

	// Полночь допустима как верхняя граница
	got, err = TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	// Переход через полночь - ошибка
	_, err = TimeString("23:30").AddMinutes(45)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("22:00").IsAfter("09:15"))
}

func TestTimeString_At(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Sakhalin")
	require.NoError(t, err)

	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	got, err := TimeString("14:45").At(date, loc)
	require.NoError(t, err)

	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 45, got.Minute())
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, date.Day(), got.Day())
}

func TestNewTimeStringFromMinutes(t *testing.T) {
	ts, err := NewTimeStringFromMinutes(570)
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:30"), ts)

	_, err = NewTimeStringFromMinutes(-1)
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromMinutes(1440)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}
