package domain

// Service represents a salon offering. Services form a two-level hierarchy:
// root services are categories (duration 0, not bookable), children are the
// actual bookable services with a fixed duration and price.
type Service struct {
	ID              int64
	Name            string
	Category        string
	ParentServiceID *int64 // nil = категория верхнего уровня
	Description     *string
	Price           float64
	DurationMinutes int
}

// IsCategory returns true for a top-level (non-bookable) service
func (s *Service) IsCategory() bool {
	return s.ParentServiceID == nil
}

// IsBookable returns true if the service can be scheduled: only leaf
// services with a positive duration take up calendar time
func (s *Service) IsBookable() bool {
	return s.ParentServiceID != nil && s.DurationMinutes > 0
}
