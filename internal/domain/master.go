package domain

import "strings"

// Master represents a staff member performing services
type Master struct {
	ID   int64
	Name string
}

// Specialization описывает навык мастера
// Привязка мастера к услуге выполняется по совпадению названия
// специализации с названием подуслуги (без учета регистра и пробелов)
type Specialization struct {
	ID       int64
	Name     string
	MasterID int64
}

// Matches проверяет соответствие специализации названию услуги
func (s *Specialization) Matches(serviceName string) bool {
	return strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(serviceName))
}
