package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// buildFreeSlots вычисляет доступные времена начала внутри рабочего окна.
// Занятые интервалы вычитаются из рабочего окна, после чего каждый свободный
// интервал нарезается с шагом domain.SlotStepMinutes. Слот попадает в результат,
// только если услуга целиком помещается до конца свободного интервала.
//
// Для сегодняшнего дня прошедшее время отбрасывается: начало каждого свободного
// интервала поднимается до ближайшей четверти часа не раньше now.
func buildFreeSlots(working domain.Interval, busy []domain.Interval, durationMin int, now time.Time, sameDay bool) []types.TimeString {
	step := time.Duration(domain.SlotStepMinutes) * time.Minute
	duration := time.Duration(durationMin) * time.Minute

	free := working.SubtractAll(busy)

	var result []types.TimeString
	for _, interval := range free {
		start := interval.Start
		if sameDay {
			if !interval.End.After(now) {
				// интервал целиком в прошлом
				continue
			}
			rounded := domain.RoundUpToStep(now, step)
			if rounded.After(start) {
				start = rounded
			}
		}

		for cursor := start; !cursor.Add(duration).After(interval.End); cursor = cursor.Add(step) {
			result = append(result, types.NewTimeString(cursor))
		}
	}

	return result
}
