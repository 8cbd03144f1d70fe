package domain

// Default scheduling configuration values
const (
	DefaultHorizonDays    = 30      // глубина генерации календаря
	DefaultOpeningTime    = "09:00" // начало рабочего дня
	DefaultClosingTime    = "22:00" // конец рабочего дня
	DefaultTimezone       = "Asia/Sakhalin"
	SlotStepMinutes       = 15 // шаг сетки слотов
	DatePageSize          = 7  // количество дат в окне выбора
	MinPhoneLength        = 5
	ReminderFirstHours    = 24 // первое напоминание, часов до записи
	ReminderSecondHours   = 1  // второе напоминание, часов до записи
	ConfirmationWindowMin = 10 // окно подтверждения после 1h-напоминания, минут
	CleanupAfterDays      = 30 // возраст записей, удаляемых фоновой чисткой
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы записей, занимающих слот
// Используются при расчете доступного времени и проверке конфликтов
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
}
