package credential

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpirySweeper periodically scans registered credentials and triggers
// a rotation for any whose committed state is within its expiry
// horizon, using a standard cron schedule rather than a fixed interval
// so operators can align sweeps with low-traffic windows.
type ExpirySweeper struct {
	manager *Manager
	tags    func() []string
	horizon time.Duration
	onError func(tag string, err error)

	cron *cron.Cron
}

// NewExpirySweeper builds a sweeper that, on each cron tick, rotates
// every credential named by tags() whose Handle.Current().ExpiresAt is
// within horizon of now. onError, if non-nil, receives any error from
// an attempted rotation (including ErrRotationInFlight, which is
// expected and harmless if a manual rotation is already underway).
func NewExpirySweeper(manager *Manager, tags func() []string, horizon time.Duration, onError func(tag string, err error)) *ExpirySweeper {
	return &ExpirySweeper{
		manager: manager,
		tags:    tags,
		horizon: horizon,
		onError: onError,
		cron:    cron.New(),
	}
}

// Start schedules the sweep on spec (standard five-field cron syntax)
// and begins running it in the background. Call Stop to end it.
func (s *ExpirySweeper) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.sweep)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop ends the cron scheduler, letting any in-progress sweep finish.
func (s *ExpirySweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ExpirySweeper) sweep() {
	now := time.Now()
	for _, tag := range s.tags() {
		h, err := s.manager.Handle(tag)
		if err != nil {
			continue
		}
		current := h.Current()
		if current.ExpiresAt.IsZero() || current.ExpiresAt.After(now.Add(s.horizon)) {
			continue
		}
		if _, err := s.manager.Rotate(context.Background(), tag); err != nil && s.onError != nil {
			s.onError(tag, err)
		}
	}
}
