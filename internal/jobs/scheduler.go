package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/service"
)

type Scheduler struct {
	cron         *cron.Cron
	editRequests *service.EditRequestService
	maxAge       time.Duration
	log          zerolog.Logger
}

func NewScheduler(editRequests *service.EditRequestService, maxAge time.Duration, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:         c,
		editRequests: editRequests,
		maxAge:       maxAge,
		log:          log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.expireEditRequests); err != nil { // hourly sweep
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) expireEditRequests() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.editRequests.ExpireStale(ctx, s.maxAge)
	if err != nil {
		s.log.Error().Err(err).Msg("edit request sweep failed")
		return
	}
	if expired > 0 {
		s.log.Info().Int("expired", expired).Msg("denied stale edit requests")
	}
}
