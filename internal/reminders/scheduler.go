package reminders

import (
	"context"
	"time"

	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 2 * time.Minute

// Scheduler runs GenerateAll on a cron schedule in the logging location.
type Scheduler struct {
	service *Service
	cron    *cron.Cron
}

// NewScheduler parses spec (standard 5-field cron) and registers the job.
// The scheduler does nothing until Start.
func NewScheduler(service *Service, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(service.loc))
	s := &Scheduler{service: service, cron: c}

	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	date := s.service.Today()
	logging.L().Info("reminders: run started", zap.String("date", date.Format(clock.DateLayout)))

	created, err := s.service.GenerateAll(ctx, date)
	if err != nil {
		logging.L().Error("reminders: run finished with errors", zap.Int("created", created), zap.Error(err))
		return
	}
	logging.L().Info("reminders: run finished", zap.Int("created", created))
}
