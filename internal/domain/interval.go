package domain

import (
	"sort"
	"time"
)

// Interval полуоткрытый временной интервал [Start, End)
// Чистая арифметика интервалов отделена от персистентности, чтобы
// алгоритмы конфликтов и расчета слотов тестировались напрямую
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет реальное пересечение полуоткрытых интервалов.
// Граничащие интервалы (конец одного равен началу другого) не пересекаются
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Duration возвращает длительность интервала
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsValid проверяет, что интервал непустой
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// SubtractAll вычитает busy-интервалы из рабочего интервала и возвращает
// отсортированный список свободных интервалов.
// Алгоритм: сортируем занятые интервалы по началу, идем курсором от начала
// рабочего интервала; разрыв до начала следующего занятого интервала
// становится свободным, курсор сдвигается на max(курсор, конец занятого)
func (i Interval) SubtractAll(busy []Interval) []Interval {
	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].Start.Before(sorted[b].Start)
	})

	free := make([]Interval, 0, len(sorted)+1)
	cursor := i.Start

	for _, b := range sorted {
		if !b.IsValid() || !b.End.After(i.Start) || !b.Start.Before(i.End) {
			continue
		}
		if cursor.Before(b.Start) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if cursor.Before(i.End) {
		free = append(free, Interval{Start: cursor, End: i.End})
	}

	return free
}

// RoundUpToStep округляет время вверх до ближайшей границы step
// Время, уже стоящее на границе, не сдвигается
func RoundUpToStep(t time.Time, step time.Duration) time.Time {
	rounded := t.Truncate(step)
	if rounded.Before(t) {
		rounded = rounded.Add(step)
	}
	return rounded
}
