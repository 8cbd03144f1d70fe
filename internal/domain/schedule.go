package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// CalendarSlot сгенерированная запись рабочего дня мастера по услуге
// Одна строка на ключ (date, master, service); создается генератором
// календаря и далее только читается
type CalendarSlot struct {
	ID           int64
	Date         time.Time
	MasterID     int64
	ServiceID    int64
	OpeningTime  types.TimeString
	ClosingTime  types.TimeString
	IsWorkingDay bool
}

// CalendarKey уникальный ключ записи календаря
type CalendarKey struct {
	Date      string // YYYY-MM-DD
	MasterID  int64
	ServiceID int64
}

// Key возвращает ключ дедупликации для слота
func (s *CalendarSlot) Key() CalendarKey {
	return CalendarKey{
		Date:      s.Date.Format(DateFormat),
		MasterID:  s.MasterID,
		ServiceID: s.ServiceID,
	}
}
