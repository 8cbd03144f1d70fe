package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	webhookHandler "github.com/m04kA/SMC-SalonService/internal/api/handlers/webhook"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/config"
	"github.com/m04kA/SMC-SalonService/internal/infra/jobs"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/catalog"
	clientRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/client"
	scheduleRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/schedule"
	messengerClient "github.com/m04kA/SMC-SalonService/internal/integrations/messenger"
	conversationService "github.com/m04kA/SMC-SalonService/internal/service/conversation"
	remindersService "github.com/m04kA/SMC-SalonService/internal/service/reminders"
	createAppointmentUC "github.com/m04kA/SMC-SalonService/internal/usecase/create_appointment"
	generateCalendarUC "github.com/m04kA/SMC-SalonService/internal/usecase/generate_calendar"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonService/pkg/logger"
	"github.com/m04kA/SMC-SalonService/pkg/metrics"
	"github.com/m04kA/SMC-SalonService/pkg/txmanager"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SalonService...")
	log.Info("Configuration loaded from config.toml")

	// Часовой пояс салона
	location, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Schedule.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Очередь отложенных задач в Redis
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	scheduler := jobs.NewScheduler(redisOpt)
	defer scheduler.Close()

	// Клиент мессенджера
	messenger := messengerClient.NewClient(
		cfg.Messenger.APIURL,
		cfg.Messenger.InstanceID,
		cfg.Messenger.APIToken,
		time.Duration(cfg.Messenger.Timeout)*time.Second,
		metricsCollector,
		log,
	)

	// Инициализируем репозитории
	appointments := appointmentRepo.NewRepository(db)
	schedules := scheduleRepo.NewRepository(db)
	clients := clientRepo.NewRepository(db)
	catalog := catalogRepo.NewRepository(db)

	txManager := txmanager.NewTransactionManager(db)

	// Сервис напоминаний
	remindersSvc := remindersService.NewService(
		appointments,
		clients,
		catalog,
		scheduler,
		messenger,
		&remindersService.RealTimeProvider{},
		location,
		log,
	)

	// Инициализируем use cases
	generateCalendar := generateCalendarUC.NewUseCase(
		catalog,
		schedules,
		txManager,
		&generateCalendarUC.RealTimeProvider{},
		generateCalendarUC.Config{
			HorizonDays: cfg.Schedule.HorizonDays,
			OpeningTime: types.TimeString(cfg.Schedule.OpeningTime),
			ClosingTime: types.TimeString(cfg.Schedule.ClosingTime),
			Location:    location,
		},
		log,
	)

	getAvailableSlots := getAvailableSlotsUC.NewUseCase(
		appointments,
		schedules,
		catalog,
		&getAvailableSlotsUC.RealTimeProvider{},
		location,
		log,
	)

	createAppointment := createAppointmentUC.NewUseCase(
		appointments,
		schedules,
		catalog,
		clients,
		remindersSvc,
		txManager,
		&createAppointmentUC.RealTimeProvider{},
		location,
		log,
	)

	// Диалоговый сервис
	conversation := conversationService.NewService(
		clients,
		appointments,
		catalog,
		schedules,
		getAvailableSlots,
		createAppointment,
		remindersSvc,
		messenger,
		&conversationService.RealTimeProvider{},
		location,
		log,
	)

	// Воркер отложенных задач напоминаний
	worker := jobs.NewServer(redisOpt, cfg.Redis.Concurrency, log)
	worker.Register(remindersService.TaskTypeReminder24h, reminderHandler(metricsCollector, "24h", func(ctx context.Context, payload []byte) error {
		return remindersSvc.HandleReminder24h(ctx, payload)
	}))
	worker.Register(remindersService.TaskTypeReminder1h, reminderHandler(metricsCollector, "1h", func(ctx context.Context, payload []byte) error {
		return remindersSvc.HandleReminder1h(ctx, payload)
	}))
	worker.Register(remindersService.TaskTypeConfirmationTimeout, reminderHandler(metricsCollector, "confirmation_timeout", func(ctx context.Context, payload []byte) error {
		return remindersSvc.HandleConfirmationTimeout(ctx, payload)
	}))

	if err := worker.Start(); err != nil {
		log.Fatal("Failed to start task worker: %v", err)
	}
	defer worker.Shutdown()

	// Фоновые циклы: расширение календаря и чистка устаревших записей
	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	go runCalendarLoop(backgroundCtx, generateCalendar, log)
	go runCleanupLoop(backgroundCtx, remindersSvc, time.Duration(cfg.Schedule.CleanupCron)*time.Hour, log)

	// Инициализируем handlers
	webhook := webhookHandler.NewHandler(conversation, messenger, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Входящие сообщения от шлюза мессенджера
	r.HandleFunc("/webhook/", webhook.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// reminderHandler адаптирует обработчик сервиса к сигнатуре asynq и считает
// метрики срабатываний
func reminderHandler(m *metrics.Metrics, jobType string, handle func(ctx context.Context, payload []byte) error) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		err := handle(ctx, task.Payload())
		if m != nil {
			result := "ok"
			if err != nil {
				result = "error"
			}
			m.ReminderJobsTotal.WithLabelValues(jobType, result).Inc()
		}
		return err
	}
}

// runCalendarLoop держит календарь заполненным на горизонт вперед: прогон при
// старте и далее раз в сутки
func runCalendarLoop(ctx context.Context, uc *generateCalendarUC.UseCase, log *logger.Logger) {
	run := func() {
		result, err := uc.Execute(ctx)
		if err != nil {
			log.Error("Calendar generation failed: %v", err)
			return
		}
		log.Info("Calendar generation done: created=%d, skipped_masters=%d", result.Created, result.SkippedMasters)
	}

	run()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// runCleanupLoop периодически удаляет записи старше месяца
func runCleanupLoop(ctx context.Context, svc *remindersService.Service, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.CleanupOldAppointments(ctx); err != nil {
				log.Error("Cleanup sweep failed: %v", err)
			}
		}
	}
}
