package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const defaultQueue = "default"

// Scheduler ставит отложенные задачи в очередь Redis через asynq.
// Задача исполняется один раз в указанный момент времени; хэндл задачи
// позволяет отозвать ее до срабатывания
type Scheduler struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewScheduler(opt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

// Schedule ставит задачу с абсолютным временем срабатывания и возвращает ее хэндл
func (s *Scheduler) Schedule(ctx context.Context, taskType string, payload []byte, fireAt time.Time) (string, error) {
	task := asynq.NewTask(taskType, payload)
	info, err := s.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(fireAt),
		asynq.Queue(defaultQueue),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return "", fmt.Errorf("%w: Schedule - type %s: %v", ErrEnqueue, taskType, err)
	}
	return info.ID, nil
}

// Revoke отзывает еще не сработавшую задачу. Уже исполненная или неизвестная
// задача не считается ошибкой: отзыв выполняется по принципу best-effort
func (s *Scheduler) Revoke(ctx context.Context, taskID string) error {
	err := s.inspector.DeleteTask(defaultQueue, taskID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return nil
		}
		return fmt.Errorf("%w: Revoke - task %s: %v", ErrRevoke, taskID, err)
	}
	return nil
}

// Close закрывает соединения с Redis
func (s *Scheduler) Close() error {
	if err := s.client.Close(); err != nil {
		return err
	}
	return s.inspector.Close()
}
