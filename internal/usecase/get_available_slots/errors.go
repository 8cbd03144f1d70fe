package get_available_slots

import "errors"

var (
	// ErrInvalidInput невалидные входные данные
	ErrInvalidInput = errors.New("get_available_slots: invalid input")

	// ErrInvalidDate запрошенная дата в прошлом
	ErrInvalidDate = errors.New("get_available_slots: date is in the past")

	// ErrMasterNotWorking мастер не работает в запрошенную дату
	ErrMasterNotWorking = errors.New("get_available_slots: master is not working on this date")

	// ErrServiceNotBookable на услугу нельзя записаться (категория или нулевая длительность)
	ErrServiceNotBookable = errors.New("get_available_slots: service is not bookable")

	// ErrInternal внутренняя ошибка при расчете слотов
	ErrInternal = errors.New("get_available_slots: internal error")
)
