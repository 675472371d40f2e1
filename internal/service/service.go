// Package service implements the coaching workflows on top of the store,
// the AI generator and the quota tracker.
package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ShotaHirabayashi/coachcanvas/internal/adapter/ai"
	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	"github.com/ShotaHirabayashi/coachcanvas/internal/quota"
	"github.com/ShotaHirabayashi/coachcanvas/internal/repository"
)

type Service struct {
	store     store.Store
	generator ai.Generator
	quota     *quota.Tracker
	config    *config.Config
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store store.Store, generator ai.Generator, tracker *quota.Tracker, cfg *config.Config, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		generator: generator,
		quota:     tracker,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
