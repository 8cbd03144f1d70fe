package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

const dateDisplayFormat = "02.01.2006"

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

func mainMenuText() string {
	return "Главное меню:\n" +
		"1. 🌐 Информация о нас\n" +
		"2. 🗃️ Запись на услугу\n" +
		"3. 🎉 Акции\n" +
		"4. 🔎 Мои записи\n" +
		"5. 🕹️ Связь с администратором\n" +
		"0. 🏠 Вернуться в главное меню"
}

func salonInfoText() string {
	return "Наш салон красоты:\n" +
		"📍 Адрес: ул. Примерная, 123\n" +
		"🕒 Часы работы: 9:00-18:00\n" +
		"☎️ Телефон: +7 (999) 123-45-67\n" +
		"🌟 10 лет успешной работы!"
}

func promotionsText() string {
	return "Текущие акции:\n" +
		"🎁 Скидка 20% на первое посещение\n" +
		"👫 Приведи друга - получи скидку 30%\n" +
		"💇‍♀️ Комплекс услуг - скидка 15%"
}

func contactsText() string {
	return "Связь с администратором:\n" +
		"📞 Телефон: +7 (999) 765-43-21\n" +
		"✉️ Email: admin@salon.ru\n" +
		"📱 WhatsApp: https://wa.me/79997654321"
}

func categoriesMenuText(categories []*domain.Service) string {
	lines := []string{"Выберите категорию услуг:"}
	for i, c := range categories {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, c.Name))
	}
	lines = append(lines, "0. Назад")
	return strings.Join(lines, "\n")
}

func subServicesMenuText(services []*domain.Service) string {
	lines := []string{"Выберите услугу:"}
	for i, s := range services {
		lines = append(lines, fmt.Sprintf("%d. %s - %.0f руб. (%s)", i+1, s.Name, s.Price, formatDuration(s.DurationMinutes)))
	}
	lines = append(lines, "0. Назад")
	return strings.Join(lines, "\n")
}

func mastersMenuText(masters []*domain.Master) string {
	lines := []string{"Выберите мастера:"}
	for i, m := range masters {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, m.Name))
	}
	lines = append(lines, "0. Назад")
	return strings.Join(lines, "\n")
}

// datesMenuText строит страницу из domain.DatePageSize дат, помечая рабочие и
// выходные дни по календарю
func datesMenuText(dates []time.Time, workingDates map[string]bool) string {
	lines := []string{"Выберите дату:"}
	for i, d := range dates {
		status := "Выходной"
		if workingDates[d.Format(domain.DateFormat)] {
			status = "Рабочий день"
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s) - %s", i+1, d.Format(dateDisplayFormat), weekdayNames[d.Weekday()], status))
	}
	lines = append(lines, "8. Следующие даты", "9. Предыдущие даты", "0. Назад")
	return strings.Join(lines, "\n")
}

func timeSlotsMenuText(slots []types.TimeString) string {
	lines := []string{"Выберите время:"}
	for i, slot := range slots {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, slot))
	}
	lines = append(lines, "0. Назад")
	return strings.Join(lines, "\n")
}

func appointmentsListText(appointments []*domain.Appointment, services map[int64]*domain.Service, masters map[int64]*domain.Master) string {
	lines := []string{"📅 Ваши записи🤗:"}
	for i, a := range appointments {
		serviceName := "услуга"
		if svc, ok := services[a.ServiceID]; ok {
			serviceName = svc.Name
		}
		masterName := "мастер"
		if m, ok := masters[a.MasterID]; ok {
			masterName = m.Name
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s - %s %s", i+1, serviceName, masterName, a.Date.Format(dateDisplayFormat), a.StartTime))
	}
	lines = append(lines, "\n0. Назад\n1. Отменить запись")
	return strings.Join(lines, "\n")
}

func cancellationMenuText(appointments []*domain.Appointment, services map[int64]*domain.Service) string {
	lines := []string{"🔻 Выберите запись для отмены:"}
	for i, a := range appointments {
		serviceName := "услуга"
		if svc, ok := services[a.ServiceID]; ok {
			serviceName = svc.Name
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s - %s", i+1, serviceName, a.Date.Format(dateDisplayFormat), a.StartTime))
	}
	lines = append(lines, "0. В главное меню")
	return strings.Join(lines, "\n")
}

func bookingConfirmedText(masterName string, date time.Time, startTime types.TimeString, serviceName string) string {
	return fmt.Sprintf(
		"✅ Запись успешно создана!\n"+
			"👨‍💼 Мастер: %s\n"+
			"📅 Дата: %s\n"+
			"⏰ Время: %s\n"+
			"💈 Услуга: %s",
		masterName, date.Format(dateDisplayFormat), startTime, serviceName,
	)
}

func formatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин.", minutes)
	}
	return fmt.Sprintf("%d ч. %d мин.", minutes/60, minutes%60)
}
