package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
	"github.com/ShotaHirabayashi/coachcanvas/internal/quota"
)

// CurrentUser returns the coach operating the system.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.store.GetDefaultUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user", "default")
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, update domain.UserUpdate) (*domain.User, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if update.Email != nil && strings.TrimSpace(*update.Email) == "" {
		return nil, domain.NewValidationError("email", "must not be empty")
	}
	if update.Specialty != nil && !domain.Specialty(*update.Specialty).Valid() {
		return nil, domain.NewValidationError("specialty", "must be life, business, career or other")
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil || *update.Timezone == "" {
			return nil, domain.NewValidationError("timezone", "unknown timezone")
		}
	}

	user, err := s.store.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user", userID)
	}
	return user, nil
}

// QuotaStatus reports the user's remaining AI allowance without consuming it.
func (s *Service) QuotaStatus(ctx context.Context, userID string) (*domain.QuotaStatus, error) {
	return s.quota.Check(ctx, userID)
}

func (s *Service) ListUsageLogs(ctx context.Context, userID string) ([]domain.UsageLog, error) {
	logs, err := s.store.ListUsageLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	return logs, nil
}

// CompleteOnboarding stores the coach's name and specialty, marks onboarding
// as done and, when a client name is given, registers the first client.
// All input is validated before anything is written.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string, in domain.Onboarding) (*domain.OnboardingResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if !domain.Specialty(in.Specialty).Valid() {
		return nil, domain.NewValidationError("specialty", "must be life, business, career or other")
	}

	var client *domain.ClientInput
	if in.ClientName != nil {
		clientName := strings.TrimSpace(*in.ClientName)
		if clientName == "" {
			return nil, domain.NewValidationError("client_name", "must not be empty")
		}
		client = &domain.ClientInput{Name: &clientName}
		if in.ClientEmail != nil && strings.TrimSpace(*in.ClientEmail) != "" {
			email := strings.TrimSpace(*in.ClientEmail)
			client.Email = &email
		}
	}

	completed := true
	user, err := s.UpdateProfile(ctx, userID, domain.UserUpdate{
		Name:                &name,
		Specialty:           &in.Specialty,
		OnboardingCompleted: &completed,
	})
	if err != nil {
		return nil, err
	}

	result := &domain.OnboardingResult{User: user}
	if client != nil {
		result.Client, err = s.CreateClient(ctx, userID, *client)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("user_id", userID).Bool("client_created", result.Client != nil).Msg("onboarding completed")
	return result, nil
}

// Dashboard assembles the coach's overview. Upcoming sessions start one day
// before now so sessions that just ran are still listed.
func (s *Service) Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("user", userID)
	}

	now := s.now()
	dashboard, err := s.store.GetDashboard(ctx, userID, domain.DashboardWindow{
		UpcomingFrom: now.Add(-24 * time.Hour),
		MonthStart:   quota.MonthStart(now, s.quota.Location(user)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}

	status, err := s.quota.Check(ctx, userID)
	if err != nil {
		return nil, err
	}
	dashboard.Stats.AIUsageCount = status.Count
	dashboard.Stats.AIUsageLimit = status.Limit
	return dashboard, nil
}
