package jobs

import "errors"

var (
	// ErrEnqueue возвращается при ошибке постановки задачи в очередь
	ErrEnqueue = errors.New("infra.jobs: failed to enqueue task")

	// ErrRevoke возвращается при ошибке отзыва задачи
	ErrRevoke = errors.New("infra.jobs: failed to revoke task")
)
