package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/reminders"
	"github.com/m04kA/SMC-SalonService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// handleNameInput регистрация: клиент прислал свое имя
func (s *Service) handleNameInput(ctx context.Context, client *domain.Client, text string) {
	if text == "" {
		s.send(ctx, client.Phone, "Как вас зовут?")
		return
	}

	client.Name = titleCase(text)
	client.State = domain.StateActive
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("handleNameInput: failed to update client %d: %v", client.ID, err)
		return
	}

	s.send(ctx, client.Phone, "Добро пожаловать, "+client.Name+"!")
	s.send(ctx, client.Phone, mainMenuText())
}

// handleActive главное меню
func (s *Service) handleActive(ctx context.Context, client *domain.Client, text string) {
	switch strings.ToLower(text) {
	case "привет", "hi", "hello":
		s.send(ctx, client.Phone, "Чем могу помочь?")
		s.send(ctx, client.Phone, mainMenuText())
		return
	}

	option, err := strconv.Atoi(text)
	if err != nil || option < 0 || option > 5 {
		s.send(ctx, client.Phone, "Выберите вариант из меню:")
		s.send(ctx, client.Phone, mainMenuText())
		return
	}

	switch option {
	case 0:
		s.send(ctx, client.Phone, mainMenuText())
	case 1:
		s.send(ctx, client.Phone, salonInfoText())
		s.send(ctx, client.Phone, mainMenuText())
	case 2:
		s.showCategoriesMenu(ctx, client)
	case 3:
		s.send(ctx, client.Phone, promotionsText())
		s.send(ctx, client.Phone, mainMenuText())
	case 4:
		s.checkAppointments(ctx, client)
	case 5:
		s.send(ctx, client.Phone, contactsText())
		s.send(ctx, client.Phone, mainMenuText())
	}
}

// handleCategorySelection выбор категории услуг
func (s *Service) handleCategorySelection(ctx context.Context, client *domain.Client, text string) {
	if text == "0" {
		s.resetToMainMenu(ctx, client)
		return
	}

	categories, err := s.catalogRepo.GetCategories(ctx)
	if err != nil {
		s.logger.Error("handleCategorySelection: failed to get categories: %v", err)
		s.send(ctx, client.Phone, "⚠️ Услуги временно недоступны")
		s.resetToMainMenu(ctx, client)
		return
	}

	idx, err := strconv.Atoi(text)
	if err != nil || idx < 1 || idx > len(categories) {
		s.send(ctx, client.Phone, "❌ Неверный выбор услуги")
		s.showCategoriesMenu(ctx, client)
		return
	}

	categoryID := categories[idx-1].ID
	client.SelectedCategoryID = &categoryID
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("handleCategorySelection: failed to update client %d: %v", client.ID, err)
		return
	}
	s.showSubServicesMenu(ctx, client)
}

// handleSubServiceSelection выбор конкретной услуги внутри категории
func (s *Service) handleSubServiceSelection(ctx context.Context, client *domain.Client, text string) {
	if text == "0" {
		s.showCategoriesMenu(ctx, client)
		return
	}
	if client.SelectedCategoryID == nil {
		s.resetToMainMenu(ctx, client)
		return
	}

	subServices, err := s.catalogRepo.GetSubServices(ctx, *client.SelectedCategoryID)
	if err != nil {
		s.logger.Error("handleSubServiceSelection: failed to get sub services: %v", err)
		s.send(ctx, client.Phone, "⚠️ Услуги временно недоступны")
		s.resetToMainMenu(ctx, client)
		return
	}

	idx, err := strconv.Atoi(text)
	if err != nil || idx < 1 || idx > len(subServices) {
		s.send(ctx, client.Phone, "⚠️ Введите номер из списка")
		s.showSubServicesMenu(ctx, client)
		return
	}

	serviceID := subServices[idx-1].ID
	client.SelectedServiceID = &serviceID
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("handleSubServiceSelection: failed to update client %d: %v", client.ID, err)
		return
	}
	s.showMastersMenu(ctx, client)
}

// handleMasterSelection выбор мастера
func (s *Service) handleMasterSelection(ctx context.Context, client *domain.Client, text string) {
	if text == "0" {
		s.showSubServicesMenu(ctx, client)
		return
	}

	masters, err := s.eligibleMasters(ctx, client)
	if err != nil {
		s.logger.Error("handleMasterSelection: %v", err)
		s.send(ctx, client.Phone, "❌ Нет доступных мастеров.")
		s.resetToMainMenu(ctx, client)
		return
	}

	idx, err := strconv.Atoi(text)
	if err != nil || idx < 1 || idx > len(masters) {
		s.send(ctx, client.Phone, "⚠️ Введите корректный номер мастера")
		s.showMastersMenu(ctx, client)
		return
	}

	masterID := masters[idx-1].ID
	client.SelectedMasterID = &masterID
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("handleMasterSelection: failed to update client %d: %v", client.ID, err)
		return
	}
	s.showDatesMenu(ctx, client)
}

// handleDateSelection выбор даты. 8 и 9 листают страницу дат вперед и назад,
// не меняя состояния
func (s *Service) handleDateSelection(ctx context.Context, client *domain.Client, text string) {
	switch text {
	case "0":
		s.resetToMainMenu(ctx, client)
		return
	case "8":
		client.WeekOffset++
		if err := s.clients.Update(ctx, client); err != nil {
			s.logger.Error("handleDateSelection: failed to update client %d: %v", client.ID, err)
		}
		s.showDatesMenu(ctx, client)
		return
	case "9":
		if client.WeekOffset > 0 {
			client.WeekOffset--
			if err := s.clients.Update(ctx, client); err != nil {
				s.logger.Error("handleDateSelection: failed to update client %d: %v", client.ID, err)
			}
		}
		s.showDatesMenu(ctx, client)
		return
	}

	dayNumber, err := strconv.Atoi(text)
	if err != nil {
		s.send(ctx, client.Phone, "⚠️ Введите номер варианта")
		return
	}
	if dayNumber < 1 || dayNumber > domain.DatePageSize {
		s.send(ctx, client.Phone, "❌ Выберите число от 1 до 7")
		return
	}

	selectedDate := s.today().AddDate(0, 0, client.WeekOffset*domain.DatePageSize+dayNumber-1)
	client.SelectedDate = &selectedDate
	client.State = domain.StateChoosingTime
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("handleDateSelection: failed to update client %d: %v", client.ID, err)
		return
	}
	s.showTimeSlots(ctx, client)
}

// handleTimeSelection выбор времени и создание записи. Слоты пересчитываются
// заново: список, показанный клиенту, мог устареть
func (s *Service) handleTimeSelection(ctx context.Context, client *domain.Client, text string) {
	if text == "0" {
		s.showDatesMenu(ctx, client)
		return
	}

	slots, ok := s.availableSlots(ctx, client)
	if !ok {
		return
	}

	idx, err := strconv.Atoi(text)
	if err != nil {
		s.send(ctx, client.Phone, "⚠️ Введите корректный номер времени")
		s.showTimeSlots(ctx, client)
		return
	}
	if idx < 1 || idx > len(slots) {
		s.send(ctx, client.Phone, "❌ Неверный номер времени")
		s.showTimeSlots(ctx, client)
		return
	}

	s.createAppointment(ctx, client, slots[idx-1])
}

// createAppointment вызывает создание записи и разбирает исходы конфликтов
func (s *Service) createAppointment(ctx context.Context, client *domain.Client, startTime types.TimeString) {
	input := create_appointment.Input{
		ClientID:  client.ID,
		MasterID:  *client.SelectedMasterID,
		ServiceID: *client.SelectedServiceID,
		Date:      *client.SelectedDate,
		StartTime: startTime,
	}

	created, err := s.creator.Execute(ctx, input)
	if err != nil {
		var busy *create_appointment.ClientBusyError
		switch {
		case errors.As(err, &busy):
			s.send(ctx, client.Phone,
				"❌ На выбранное время у вас уже есть запись:\n"+
					busy.ServiceName+" - "+client.SelectedDate.Format(dateDisplayFormat)+" "+busy.StartTime.String()+"\n"+
					"Пожалуйста, проверьте ваши записи:")
			s.checkAppointments(ctx, client)
		case errors.Is(err, create_appointment.ErrSlotTaken):
			s.send(ctx, client.Phone, "❌ Это время уже занято другим клиентом.")
			s.showTimeSlots(ctx, client)
		default:
			s.logger.Error("createAppointment: failed for client %d: %v", client.ID, err)
			s.send(ctx, client.Phone, "❌ Не удалось создать запись, попробуйте позже.")
			s.resetToMainMenu(ctx, client)
		}
		return
	}

	master, err := s.catalogRepo.GetMasterByID(ctx, created.MasterID)
	masterName := "мастер"
	if err == nil {
		masterName = master.Name
	}
	service, err := s.catalogRepo.GetServiceByID(ctx, created.ServiceID)
	serviceName := "услуга"
	if err == nil {
		serviceName = service.Name
	}

	s.send(ctx, client.Phone, bookingConfirmedText(masterName, created.Date, created.StartTime, serviceName))

	// Выбор клиента уже сброшен при создании записи, показываем меню
	client.ResetSelection()
	client.State = domain.StateActive
	s.send(ctx, client.Phone, mainMenuText())
}

// handleConfirmation ответ клиента на напоминание: 1 подтверждает запись,
// 2 открывает меню отмены
func (s *Service) handleConfirmation(ctx context.Context, client *domain.Client, text string) {
	switch text {
	case "1":
		_, err := s.confirmations.ConfirmLatestPending(ctx, client.ID)
		if err != nil {
			if errors.Is(err, reminders.ErrNoPendingAppointment) {
				s.send(ctx, client.Phone, "❌ Нет активных записей для подтверждения.")
				s.resetToMainMenu(ctx, client)
				return
			}
			s.logger.Error("handleConfirmation: failed to confirm for client %d: %v", client.ID, err)
			s.send(ctx, client.Phone, "⚠️ Не удалось подтвердить запись, попробуйте позже.")
			return
		}
		s.send(ctx, client.Phone, "✅ Запись подтверждена! Ждем вас.")
		s.resetToMainMenu(ctx, client)
	case "2":
		s.showCancellationMenu(ctx, client)
	default:
		s.send(ctx, client.Phone, "⚠️ Пожалуйста, выберите '1' или '2'.")
	}
}

// handleAppointmentCheck режим просмотра записей
func (s *Service) handleAppointmentCheck(ctx context.Context, client *domain.Client, text string) {
	switch text {
	case "0":
		s.resetToMainMenu(ctx, client)
	case "1":
		s.showCancellationMenu(ctx, client)
	default:
		s.send(ctx, client.Phone, "Выберите 0 или 1")
	}
}

// handleCancellation отмена записи по номеру из меню отмены
func (s *Service) handleCancellation(ctx context.Context, client *domain.Client, text string) {
	if text == "0" {
		s.resetToMainMenu(ctx, client)
		return
	}

	appointments, err := s.appointments.GetFutureByClient(ctx, client.ID, s.today())
	if err != nil {
		s.logger.Error("handleCancellation: failed to get appointments for client %d: %v", client.ID, err)
		s.send(ctx, client.Phone, "❌ Ошибка при отмене записи")
		return
	}

	idx, err := strconv.Atoi(text)
	if err != nil {
		s.send(ctx, client.Phone, "⚠️ Введите корректный номер записи")
		return
	}
	if idx < 1 || idx > len(appointments) {
		s.send(ctx, client.Phone, "❌ Неверный номер записи")
		return
	}

	appointment := appointments[idx-1]
	if err := s.appointments.Delete(ctx, appointment.ID); err != nil {
		s.logger.Error("handleCancellation: failed to delete appointment %d: %v", appointment.ID, err)
		s.send(ctx, client.Phone, "❌ Ошибка при отмене записи")
		return
	}
	s.logger.Info("handleCancellation: appointment %d canceled by client %d", appointment.ID, client.ID)
	s.send(ctx, client.Phone, "✅ Запись успешно отменена! Время стало доступным для других клиентов.")

	remaining, err := s.appointments.GetFutureByClient(ctx, client.ID, s.today())
	if err != nil {
		s.logger.Error("handleCancellation: failed to refresh appointments for client %d: %v", client.ID, err)
		s.resetToMainMenu(ctx, client)
		return
	}
	if len(remaining) > 0 {
		s.checkAppointments(ctx, client)
		return
	}
	s.send(ctx, client.Phone, "✅ Все записи отменены!")
	s.resetToMainMenu(ctx, client)
}
