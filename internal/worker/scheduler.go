package worker

import (
	"context"
	"fmt"
	"time"

	"carteira/internal/log"

	"github.com/robfig/cron/v3"
)

const DefaultStatementSchedule = "0 8 1 * *"

// Scheduler runs the statement job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	job     *StatementJob
	logger  *log.Logger
	timeout time.Duration
}

// NewScheduler validates spec and registers the job; nothing runs until Run.
func NewScheduler(spec string, job *StatementJob, logger *log.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultStatementSchedule
	}
	s := &Scheduler{
		cron:    cron.New(),
		job:     job,
		logger:  logger.WithComponent(log.ComponentWorker),
		timeout: 10 * time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.runJob); err != nil {
		return nil, fmt.Errorf("schedule statement job %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.job.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled statement run had failures", log.FieldError, err)
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("Statement scheduler started", "entries", len(s.cron.Entries()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Statement scheduler stopped")
	return nil
}
