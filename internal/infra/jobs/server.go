package jobs

import (
	"github.com/hibiken/asynq"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Server исполняет отложенные задачи из очереди Redis
type Server struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger Logger
}

func NewServer(opt asynq.RedisClientOpt, concurrency int, logger Logger) *Server {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})
	return &Server{
		srv:    srv,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
}

// Register привязывает обработчик к типу задачи
func (s *Server) Register(taskType string, handler asynq.HandlerFunc) {
	s.mux.HandleFunc(taskType, handler)
}

// Start запускает воркер в фоне
func (s *Server) Start() error {
	s.logger.Info("jobs: starting task worker")
	return s.srv.Start(s.mux)
}

// Shutdown останавливает воркер, дожидаясь завершения текущих задач
func (s *Server) Shutdown() {
	s.logger.Info("jobs: stopping task worker")
	s.srv.Shutdown()
}
