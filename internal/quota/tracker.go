// Package quota tracks the monthly AI usage allowance of each user.
//
// Check is a read-only preview and Increment is the side-effecting call.
// They are not performed atomically together: two concurrent AI requests can
// both pass Check before either increments, so the stored count may exceed
// the limit by the number of racing requests.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
	"github.com/ShotaHirabayashi/coachcanvas/policy"
)

// UsageStore is the persistence the tracker needs.
type UsageStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateAIUsage(ctx context.Context, userID string, apply func(user *domain.User) error) (*domain.User, error)
}

// PolicyEvaluator decides whether an AI action may proceed.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, input policy.UsageInput) (string, string, error)
}

// Tracker implements the monthly AI quota.
type Tracker struct {
	store  UsageStore
	plans  config.PlanLimits
	policy PolicyEvaluator
	now    func() time.Time
	loc    *time.Location
	logger zerolog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLocation sets the fallback location for users whose timezone cannot be loaded.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithLogger sets the tracker logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// New creates a Tracker. The policy evaluator may be nil, in which case the
// count is simply compared against the plan limit.
func New(store UsageStore, plans config.PlanLimits, engine PolicyEvaluator, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		plans:  plans,
		policy: engine,
		now:    time.Now,
		loc:    time.UTC,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Check reports whether the user may run another AI action. A reset
// timestamp that has passed is reported as a fresh period with count 0;
// storage is not modified.
func (t *Tracker) Check(ctx context.Context, userID string) (*domain.QuotaStatus, error) {
	user, err := t.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user", userID)
	}

	limit := t.plans.Limit(user.Plan)
	count := user.AIUsageCount
	if user.AIUsageResetAt != nil && !t.now().Before(*user.AIUsageResetAt) {
		count = 0
	}

	allowed, err := t.decide(ctx, user, count, limit)
	if err != nil {
		return nil, err
	}
	return &domain.QuotaStatus{Allowed: allowed, Count: count, Limit: limit}, nil
}

// Require is Check that turns a blocked decision into a QuotaExceededError.
func (t *Tracker) Require(ctx context.Context, userID string) (*domain.QuotaStatus, error) {
	status, err := t.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		t.logger.Info().
			Str("user_id", userID).
			Int("count", status.Count).
			Int("limit", status.Limit).
			Msg("ai quota exceeded")
		return nil, &domain.QuotaExceededError{
			Code:  domain.QuotaCodeAILimit,
			Count: status.Count,
			Limit: status.Limit,
		}
	}
	return status, nil
}

// Increment consumes one unit of the user's allowance.
func (t *Tracker) Increment(ctx context.Context, userID string) (*domain.QuotaUsage, error) {
	var plan string
	user, err := t.store.UpdateAIUsage(ctx, userID, func(user *domain.User) error {
		plan = user.Plan
		now := t.now()
		switch {
		case user.AIUsageResetAt == nil:
			next := NextResetAt(now, t.Location(user))
			user.AIUsageResetAt = &next
			user.AIUsageCount++
		case !now.Before(*user.AIUsageResetAt):
			next := NextResetAt(now, t.Location(user))
			user.AIUsageResetAt = &next
			user.AIUsageCount = 1
		default:
			user.AIUsageCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	usage := &domain.QuotaUsage{Count: user.AIUsageCount, Limit: t.plans.Limit(plan)}
	t.logger.Debug().
		Str("user_id", userID).
		Int("count", usage.Count).
		Int("limit", usage.Limit).
		Msg("quota incremented")
	return usage, nil
}

// NextResetAt returns the first instant of the calendar month after now, as
// observed in loc.
func NextResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, loc).UTC()
}

// MonthStart returns the first instant of the calendar month containing now,
// as observed in loc.
func MonthStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).UTC()
}

// Location returns the timezone the user's quota month is observed in.
func (t *Tracker) Location(user *domain.User) *time.Location {
	if user.Timezone != "" {
		if loc, err := time.LoadLocation(user.Timezone); err == nil {
			return loc
		}
	}
	return t.loc
}

func (t *Tracker) decide(ctx context.Context, user *domain.User, count, limit int) (bool, error) {
	if t.policy == nil {
		return count < limit, nil
	}
	decision, reason, err := t.policy.Evaluate(ctx, policy.UsageInput{
		UserID: user.ID,
		Plan:   user.Plan,
		Count:  count,
		Limit:  limit,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate ai usage policy: %w", err)
	}
	if reason != "" {
		t.logger.Debug().Str("decision", decision).Str("reason", reason).Msg("ai usage policy")
	}
	return decision == policy.DecisionAllow, nil
}
