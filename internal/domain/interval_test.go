package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTime(h, m int) time.Time {
	return time.Date(2026, 9, 10, h, m, 0, 0, time.UTC)
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Start: mkTime(10, 0), End: mkTime(11, 0)}

	// Реальное пересечение
	assert.True(t, a.Overlaps(Interval{Start: mkTime(10, 30), End: mkTime(11, 30)}))
	assert.True(t, a.Overlaps(Interval{Start: mkTime(9, 0), End: mkTime(10, 15)}))
	assert.True(t, a.Overlaps(Interval{Start: mkTime(10, 15), End: mkTime(10, 45)}))

	// Граничащие интервалы не пересекаются
	assert.False(t, a.Overlaps(Interval{Start: mkTime(11, 0), End: mkTime(12, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: mkTime(9, 0), End: mkTime(10, 0)}))

	// Непересекающиеся
	assert.False(t, a.Overlaps(Interval{Start: mkTime(12, 0), End: mkTime(13, 0)}))
}

func TestInterval_SubtractAll_NoBusy(t *testing.T) {
	working := Interval{Start: mkTime(9, 0), End: mkTime(22, 0)}

	free := working.SubtractAll(nil)

	require.Len(t, free, 1)
	assert.Equal(t, working, free[0])
}

func TestInterval_SubtractAll_MiddleBusy(t *testing.T) {
	working := Interval{Start: mkTime(9, 0), End: mkTime(22, 0)}
	busy := []Interval{
		{Start: mkTime(12, 0), End: mkTime(13, 0)},
	}

	free := working.SubtractAll(busy)

	require.Len(t, free, 2)
	assert.Equal(t, Interval{Start: mkTime(9, 0), End: mkTime(12, 0)}, free[0])
	assert.Equal(t, Interval{Start: mkTime(13, 0), End: mkTime(22, 0)}, free[1])
}

func TestInterval_SubtractAll_UnsortedAndOverlapping(t *testing.T) {
	working := Interval{Start: mkTime(9, 0), End: mkTime(18, 0)}
	busy := []Interval{
		{Start: mkTime(15, 0), End: mkTime(16, 0)},
		{Start: mkTime(10, 0), End: mkTime(12, 0)},
		{Start: mkTime(11, 0), End: mkTime(13, 0)}, // пересекается с предыдущим
	}

	free := working.SubtractAll(busy)

	require.Len(t, free, 3)
	assert.Equal(t, Interval{Start: mkTime(9, 0), End: mkTime(10, 0)}, free[0])
	assert.Equal(t, Interval{Start: mkTime(13, 0), End: mkTime(15, 0)}, free[1])
	assert.Equal(t, Interval{Start: mkTime(16, 0), End: mkTime(18, 0)}, free[2])
}

func TestInterval_SubtractAll_BusyOutsideWindow(t *testing.T) {
	working := Interval{Start: mkTime(9, 0), End: mkTime(18, 0)}
	busy := []Interval{
		{Start: mkTime(7, 0), End: mkTime(8, 0)},   // до начала
		{Start: mkTime(19, 0), End: mkTime(20, 0)}, // после конца
	}

	free := working.SubtractAll(busy)

	require.Len(t, free, 1)
	assert.Equal(t, working, free[0])
}

func TestInterval_SubtractAll_BusyClampsEdges(t *testing.T) {
	working := Interval{Start: mkTime(9, 0), End: mkTime(18, 0)}
	busy := []Interval{
		{Start: mkTime(8, 0), End: mkTime(10, 0)},  // захватывает начало
		{Start: mkTime(17, 0), End: mkTime(19, 0)}, // захватывает конец
	}

	free := working.SubtractAll(busy)

	require.Len(t, free, 1)
	assert.Equal(t, Interval{Start: mkTime(10, 0), End: mkTime(17, 0)}, free[0])
}

func TestInterval_SubtractAll_FullyBooked(t *testing.T) {
	working := Interval{Start: mkTime(9, 0), End: mkTime(12, 0)}
	busy := []Interval{
		{Start: mkTime(9, 0), End: mkTime(12, 0)},
	}

	free := working.SubtractAll(busy)

	assert.Empty(t, free)
}

func TestRoundUpToStep(t *testing.T) {
	step := 15 * time.Minute

	// Между границами - вверх
	assert.Equal(t, mkTime(14, 15), RoundUpToStep(mkTime(14, 7), step))
	assert.Equal(t, mkTime(14, 30), RoundUpToStep(mkTime(14, 16), step))

	// На границе - не сдвигается
	assert.Equal(t, mkTime(14, 15), RoundUpToStep(mkTime(14, 15), step))
	assert.Equal(t, mkTime(14, 0), RoundUpToStep(mkTime(14, 0), step))

	// Переход через час
	assert.Equal(t, mkTime(15, 0), RoundUpToStep(mkTime(14, 46), step))
}
