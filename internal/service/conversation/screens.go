package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// showCategoriesMenu показывает корневые категории услуг
func (s *Service) showCategoriesMenu(ctx context.Context, client *domain.Client) {
	categories, err := s.catalogRepo.GetCategories(ctx)
	if err != nil {
		s.logger.Error("showCategoriesMenu: failed to get categories: %v", err)
		s.send(ctx, client.Phone, "⚠️ Услуги временно недоступны")
		s.resetToMainMenu(ctx, client)
		return
	}
	if len(categories) == 0 {
		s.send(ctx, client.Phone, "⚠️ Услуги временно недоступны")
		s.resetToMainMenu(ctx, client)
		return
	}

	s.setState(ctx, client, domain.StateChoosingServiceCategory)
	s.send(ctx, client.Phone, categoriesMenuText(categories))
}

// showSubServicesMenu показывает услуги выбранной категории
func (s *Service) showSubServicesMenu(ctx context.Context, client *domain.Client) {
	if client.SelectedCategoryID == nil {
		s.resetToMainMenu(ctx, client)
		return
	}

	subServices, err := s.catalogRepo.GetSubServices(ctx, *client.SelectedCategoryID)
	if err != nil {
		s.logger.Error("showSubServicesMenu: failed to get sub services: %v", err)
		s.send(ctx, client.Phone, "⚠️ Услуги временно недоступны")
		s.resetToMainMenu(ctx, client)
		return
	}
	if len(subServices) == 0 {
		s.send(ctx, client.Phone, "⚠️ Нет доступных услуг в этой категории")
		s.resetToMainMenu(ctx, client)
		return
	}

	s.setState(ctx, client, domain.StateChoosingSubService)
	s.send(ctx, client.Phone, subServicesMenuText(subServices))
}

// showMastersMenu показывает мастеров, подходящих по специализации для
// выбранной услуги
func (s *Service) showMastersMenu(ctx context.Context, client *domain.Client) {
	masters, err := s.eligibleMasters(ctx, client)
	if err != nil {
		s.logger.Error("showMastersMenu: %v", err)
		s.send(ctx, client.Phone, "❌ Нет доступных мастеров.")
		s.resetToMainMenu(ctx, client)
		return
	}
	if len(masters) == 0 {
		s.send(ctx, client.Phone, "❌ Нет доступных мастеров.")
		s.resetToMainMenu(ctx, client)
		return
	}

	s.setState(ctx, client, domain.StateChoosingMaster)
	s.send(ctx, client.Phone, mastersMenuText(masters))
}

// eligibleMasters возвращает мастеров, чья специализация совпадает с выбранной
// услугой. Порядок стабилен: как отдает каталог
func (s *Service) eligibleMasters(ctx context.Context, client *domain.Client) ([]*domain.Master, error) {
	if client.SelectedServiceID == nil {
		return nil, errors.New("no service selected")
	}

	service, err := s.catalogRepo.GetServiceByID(ctx, *client.SelectedServiceID)
	if err != nil {
		return nil, err
	}
	masters, err := s.catalogRepo.GetMasters(ctx)
	if err != nil {
		return nil, err
	}
	specs, err := s.catalogRepo.GetSpecializations(ctx)
	if err != nil {
		return nil, err
	}

	matched := make(map[int64]bool)
	for _, spec := range specs {
		if spec.Matches(service.Name) {
			matched[spec.MasterID] = true
		}
	}

	eligible := make([]*domain.Master, 0, len(masters))
	for _, m := range masters {
		if matched[m.ID] {
			eligible = append(eligible, m)
		}
	}
	return eligible, nil
}

// showDatesMenu показывает страницу дат с учетом пагинации клиента
func (s *Service) showDatesMenu(ctx context.Context, client *domain.Client) {
	dates := s.datesPage(client.WeekOffset)

	workingDates, err := s.schedules.GetWorkingDates(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		s.logger.Error("showDatesMenu: failed to get working dates: %v", err)
		workingDates = map[string]bool{}
	}

	s.setState(ctx, client, domain.StateChoosingDate)
	s.send(ctx, client.Phone, datesMenuText(dates, workingDates))
}

// datesPage возвращает domain.DatePageSize последовательных дат, начиная с
// сегодня плюс смещение страниц
func (s *Service) datesPage(weekOffset int) []time.Time {
	start := s.today().AddDate(0, 0, weekOffset*domain.DatePageSize)
	dates := make([]time.Time, 0, domain.DatePageSize)
	for i := 0; i < domain.DatePageSize; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

// showTimeSlots показывает доступные времена для выбранных услуги, мастера и
// даты. Слоты пересчитываются при каждом показе
func (s *Service) showTimeSlots(ctx context.Context, client *domain.Client) {
	slots, ok := s.availableSlots(ctx, client)
	if !ok {
		return
	}
	if len(slots) == 0 {
		s.send(ctx, client.Phone, "❌ Нет доступного времени для записи.")
		s.showDatesMenu(ctx, client)
		return
	}

	s.setState(ctx, client, domain.StateChoosingTime)
	s.send(ctx, client.Phone, timeSlotsMenuText(slots))
}

// availableSlots пересчитывает слоты по текущему выбору клиента. Возвращает
// false, если выбор неполный или мастер не работает: клиент уже перенаправлен
func (s *Service) availableSlots(ctx context.Context, client *domain.Client) ([]types.TimeString, bool) {
	if client.SelectedServiceID == nil || client.SelectedMasterID == nil || client.SelectedDate == nil {
		s.send(ctx, client.Phone, "Ошибка: дата не выбрана. Пожалуйста, выберите дату.")
		s.resetToMainMenu(ctx, client)
		return nil, false
	}

	slots, err := s.slotCalc.Execute(ctx, *client.SelectedMasterID, *client.SelectedServiceID, *client.SelectedDate)
	if err != nil {
		if errors.Is(err, get_available_slots.ErrMasterNotWorking) {
			s.send(ctx, client.Phone, "❌ Мастер не работает в эту дату.")
			s.showDatesMenu(ctx, client)
			return nil, false
		}
		s.logger.Error("availableSlots: failed to calculate slots for client %d: %v", client.ID, err)
		s.send(ctx, client.Phone, "⚠️ Не удалось получить доступное время, попробуйте позже.")
		s.showDatesMenu(ctx, client)
		return nil, false
	}
	return slots, true
}

// checkAppointments показывает активные записи клиента
func (s *Service) checkAppointments(ctx context.Context, client *domain.Client) {
	appointments, err := s.appointments.GetFutureByClient(ctx, client.ID, s.today())
	if err != nil {
		s.logger.Error("checkAppointments: failed to get appointments for client %d: %v", client.ID, err)
		s.send(ctx, client.Phone, "⚠️ Не удалось получить ваши записи, попробуйте позже.")
		s.resetToMainMenu(ctx, client)
		return
	}
	if len(appointments) == 0 {
		s.send(ctx, client.Phone, "❌ У вас нет активных записей")
		s.resetToMainMenu(ctx, client)
		return
	}

	services, masters := s.appointmentDetails(ctx, appointments)
	s.setState(ctx, client, domain.StateCheckingAppointments)
	s.send(ctx, client.Phone, appointmentsListText(appointments, services, masters))
}

// showCancellationMenu показывает меню отмены записей
func (s *Service) showCancellationMenu(ctx context.Context, client *domain.Client) {
	appointments, err := s.appointments.GetFutureByClient(ctx, client.ID, s.today())
	if err != nil {
		s.logger.Error("showCancellationMenu: failed to get appointments for client %d: %v", client.ID, err)
		s.send(ctx, client.Phone, "⚠️ Не удалось получить ваши записи, попробуйте позже.")
		s.resetToMainMenu(ctx, client)
		return
	}
	if len(appointments) == 0 {
		s.send(ctx, client.Phone, "❌ У вас нет назначенных записей для отмены.")
		s.resetToMainMenu(ctx, client)
		return
	}

	services, _ := s.appointmentDetails(ctx, appointments)
	s.setState(ctx, client, domain.StateWaitingForCancellation)
	s.send(ctx, client.Phone, cancellationMenuText(appointments, services))
}

// appointmentDetails подтягивает названия услуг и мастеров для списка записей
func (s *Service) appointmentDetails(ctx context.Context, appointments []*domain.Appointment) (map[int64]*domain.Service, map[int64]*domain.Master) {
	serviceIDs := make([]int64, 0, len(appointments))
	for _, a := range appointments {
		serviceIDs = append(serviceIDs, a.ServiceID)
	}

	services, err := s.catalogRepo.GetServicesByIDs(ctx, serviceIDs)
	if err != nil {
		s.logger.Error("appointmentDetails: failed to get services: %v", err)
		services = map[int64]*domain.Service{}
	}

	masters := make(map[int64]*domain.Master)
	for _, a := range appointments {
		if _, ok := masters[a.MasterID]; ok {
			continue
		}
		master, err := s.catalogRepo.GetMasterByID(ctx, a.MasterID)
		if err != nil {
			s.logger.Error("appointmentDetails: failed to get master %d: %v", a.MasterID, err)
			continue
		}
		masters[a.MasterID] = master
	}
	return services, masters
}
