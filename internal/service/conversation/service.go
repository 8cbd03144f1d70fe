package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	clientRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/client"
)

// Service диалоговый сервис: конечный автомат per-client, ведущий клиента по
// шагам записи. Сообщения одного клиента обрабатываются строго
// последовательно: на каждый телефон берется отдельный мьютекс
type Service struct {
	clients       ClientRepository
	appointments  AppointmentRepository
	catalogRepo   CatalogRepository
	schedules     ScheduleRepository
	slotCalc      SlotCalculator
	creator       AppointmentCreator
	confirmations ConfirmationService
	sender        MessageSender
	timeProvider  TimeProvider
	location      *time.Location
	logger        Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService создает новый экземпляр диалогового сервиса
func NewService(
	clients ClientRepository,
	appointments AppointmentRepository,
	catalogRepo CatalogRepository,
	schedules ScheduleRepository,
	slotCalc SlotCalculator,
	creator AppointmentCreator,
	confirmations ConfirmationService,
	sender MessageSender,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		clients:       clients,
		appointments:  appointments,
		catalogRepo:   catalogRepo,
		schedules:     schedules,
		slotCalc:      slotCalc,
		creator:       creator,
		confirmations: confirmations,
		sender:        sender,
		timeProvider:  timeProvider,
		location:      location,
		logger:        logger,
		locks:         make(map[string]*sync.Mutex),
	}
}

// HandleMessage обрабатывает входящее сообщение клиента. Новый номер проходит
// регистрацию, для известного клиента сообщение интерпретируется по его
// текущему состоянию
func (s *Service) HandleMessage(ctx context.Context, chatID, text string) error {
	if len(chatID) < domain.MinPhoneLength {
		return fmt.Errorf("%w: %q", ErrInvalidChatID, chatID)
	}

	lock := s.clientLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	text = strings.TrimSpace(text)

	client, err := s.clients.GetByPhone(ctx, chatID)
	if err != nil {
		if errors.Is(err, clientRepo.ErrClientNotFound) {
			return s.registerNewClient(ctx, chatID)
		}
		return fmt.Errorf("%w: HandleMessage - failed to get client: %v", ErrInternal, err)
	}

	s.dispatch(ctx, client, text)
	return nil
}

// clientLock возвращает мьютекс для сериализации сообщений одного клиента
func (s *Service) clientLock(chatID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[chatID] = lock
	}
	return lock
}

func (s *Service) registerNewClient(ctx context.Context, chatID string) error {
	_, err := s.clients.Create(ctx, &domain.Client{
		Phone: chatID,
		State: domain.StateExpectingName,
	})
	if err != nil {
		return fmt.Errorf("%w: registerNewClient - failed to create client: %v", ErrInternal, err)
	}

	s.logger.Info("registerNewClient: new client %s registered", chatID)
	s.send(ctx, chatID, "Добро пожаловать! Как вас зовут?")
	return nil
}

// dispatch выбирает обработчик по текущему состоянию клиента
func (s *Service) dispatch(ctx context.Context, client *domain.Client, text string) {
	switch client.State {
	case domain.StateExpectingName:
		s.handleNameInput(ctx, client, text)
	case domain.StateActive:
		s.handleActive(ctx, client, text)
	case domain.StateChoosingServiceCategory:
		s.handleCategorySelection(ctx, client, text)
	case domain.StateChoosingSubService:
		s.handleSubServiceSelection(ctx, client, text)
	case domain.StateChoosingMaster:
		s.handleMasterSelection(ctx, client, text)
	case domain.StateChoosingDate:
		s.handleDateSelection(ctx, client, text)
	case domain.StateChoosingTime:
		s.handleTimeSelection(ctx, client, text)
	case domain.StateAwaitingConfirmation:
		s.handleConfirmation(ctx, client, text)
	case domain.StateCheckingAppointments:
		s.handleAppointmentCheck(ctx, client, text)
	case domain.StateWaitingForCancellation:
		s.handleCancellation(ctx, client, text)
	default:
		s.logger.Error("dispatch: client %d in unknown state %q", client.ID, client.State)
		s.send(ctx, client.Phone, "⚠️ Системная ошибка. Возврат в меню")
		s.resetToMainMenu(ctx, client)
	}
}

// send отправляет сообщение, ошибки доставки только логируются
func (s *Service) send(ctx context.Context, phone, text string) {
	if err := s.sender.SendMessage(ctx, phone, text); err != nil {
		s.logger.Error("send: failed to deliver message to %s: %v", phone, err)
	}
}

// resetToMainMenu сбрасывает выбор клиента и возвращает его в главное меню.
// Сброс обязателен при каждом входе в active, иначе устаревший выбор из
// прошлого диалога попадет в новую запись
func (s *Service) resetToMainMenu(ctx context.Context, client *domain.Client) {
	client.ResetSelection()
	client.State = domain.StateActive
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("resetToMainMenu: failed to update client %d: %v", client.ID, err)
	}
	s.send(ctx, client.Phone, mainMenuText())
}

// setState переводит клиента в новое состояние с сохранением
func (s *Service) setState(ctx context.Context, client *domain.Client, state domain.ConversationState) {
	client.State = state
	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error("setState: failed to update client %d: %v", client.ID, err)
	}
}

// today возвращает начало текущего дня в локали салона
func (s *Service) today() time.Time {
	now := s.timeProvider.Now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

// titleCase приводит имя к виду с заглавной буквы в каждом слове
func titleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
