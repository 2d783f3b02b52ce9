package processor

import (
	"context"

	"inventario/inventory-service/internal/app/inventory/entity"
	"inventario/inventory-service/internal/app/inventory/service"
	"inventario/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически запускает генератор алертов
type CronScheduler struct {
	cron     *cron.Cron
	chain    cron.Chain // следующий проход не стартует, пока не закончился предыдущий
	alertSvc service.AlertServiceInterface
}

func NewCronScheduler(alertSvc service.AlertServiceInterface) *CronScheduler {
	cronLog := zerologCronLogger{}

	return &CronScheduler{
		cron:     cron.New(cron.WithLogger(cronLog)),
		chain:    cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		alertSvc: alertSvc,
	}
}

// Start регистрирует задачу, запускает cron и сразу выполняет первый проход.
// Первый проход идет через ту же обертку, что и проходы по расписанию,
// поэтому тик во время него пропускается.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting alert scan scheduler")

	job := s.chain.Then(cron.FuncJob(func() {
		s.scan(ctx)
	}))

	if _, err := s.cron.AddJob(schedule, job); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Alert scan scheduler started")

	job.Run()

	return nil
}

func (s *CronScheduler) scan(ctx context.Context) {
	created, err := s.alertSvc.GenerateAlerts(ctx, entity.AlertTriggerScheduled)
	if err != nil {
		logger.Error().Err(err).Int("created", created).Msg("Scheduled alert scan failed")
		return
	}
	logger.Debug().Int("created", created).Msg("Scheduled alert scan completed")
}

// Stop ждет завершения выполняющихся задач
func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping alert scan scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Alert scan scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// zerologCronLogger передает внутренние сообщения cron в общий логгер
type zerologCronLogger struct{}

func (zerologCronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (zerologCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
