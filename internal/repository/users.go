package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const userColumns = `id, email, name, title, specialty, plan, ai_usage_count, ai_usage_reset_at,
	timezone, onboarding_completed, email_signature, created_at, updated_at`

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	var title, specialty, signature sql.NullString
	var resetAt sql.NullTime
	var onboarded int
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &title, &specialty, &u.Plan, &u.AIUsageCount, &resetAt,
		&u.Timezone, &onboarded, &signature, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Title = stringPtr(title)
	u.Specialty = stringPtr(specialty)
	u.EmailSignature = stringPtr(signature)
	u.AIUsageResetAt = timePtr(resetAt)
	u.OnboardingCompleted = onboarded == 1
	return &u, nil
}

func (s *SQLiteStore) getUser(ctx context.Context, q querier, id string) (*domain.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get user", err)
	}
	return u, nil
}

// GetDefaultUser returns the implicit coach account.
func (s *SQLiteStore) GetDefaultUser(ctx context.Context) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, rowid ASC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get default user", err)
	}
	return u, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, s.db, id)
}

// CreateUser inserts a user. Empty ID, plan and timezone get defaults.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.Plan == "" {
		user.Plan = "free"
	}
	if user.Timezone == "" {
		user.Timezone = "Asia/Tokyo"
	}
	now := s.timestamp()
	user.CreatedAt, user.UpdatedAt = now, now

	var resetAt sql.NullTime
	if user.AIUsageResetAt != nil {
		resetAt = sql.NullTime{Time: user.AIUsageResetAt.UTC(), Valid: true}
	}
	_, err := s.exec(ctx, s.db,
		`INSERT INTO users (id, email, name, title, specialty, plan, ai_usage_count, ai_usage_reset_at,
			timezone, onboarding_completed, email_signature, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, nullString(user.Title), nullString(user.Specialty), user.Plan,
		user.AIUsageCount, resetAt, user.Timezone, boolInt(user.OnboardingCompleted),
		nullString(user.EmailSignature), now, now)
	if err != nil {
		return domain.NewStorageError("create user", err)
	}
	return nil
}

// UpdateUser applies a partial profile update.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	var set setClause
	if update.Name != nil {
		set.add("name", *update.Name)
	}
	if update.Email != nil {
		set.add("email", *update.Email)
	}
	if update.Title != nil {
		set.add("title", *update.Title)
	}
	if update.Specialty != nil {
		set.add("specialty", *update.Specialty)
	}
	if update.Timezone != nil {
		set.add("timezone", *update.Timezone)
	}
	if update.EmailSignature != nil {
		set.add("email_signature", *update.EmailSignature)
	}
	if update.OnboardingCompleted != nil {
		set.add("onboarding_completed", *update.OnboardingCompleted)
	}
	if set.empty() {
		return s.GetUser(ctx, id)
	}
	set.add("updated_at", s.timestamp())

	if _, err := s.exec(ctx, s.db, `UPDATE users SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...); err != nil {
		return nil, domain.NewStorageError("update user", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateAIUsage reads the user, lets apply adjust the usage counter and reset
// timestamp, and writes them back in one transaction.
func (s *SQLiteStore) UpdateAIUsage(ctx context.Context, userID string, apply func(user *domain.User) error) (*domain.User, error) {
	var updated *domain.User
	err := s.withTx(ctx, "update ai usage", func(tx *sql.Tx) error {
		user, err := s.getUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.NewNotFoundError("user", userID)
		}
		if err := apply(user); err != nil {
			return err
		}

		var resetAt sql.NullTime
		if user.AIUsageResetAt != nil {
			resetAt = sql.NullTime{Time: user.AIUsageResetAt.UTC(), Valid: true}
		}
		if _, err := s.exec(ctx, tx,
			`UPDATE users SET ai_usage_count = ?, ai_usage_reset_at = ? WHERE id = ?`,
			user.AIUsageCount, resetAt, userID); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreateUsageLog records a successful AI generation.
func (s *SQLiteStore) CreateUsageLog(ctx context.Context, log *domain.UsageLog) error {
	if log.ID == "" {
		log.ID = newID()
	}
	log.CreatedAt = s.timestamp()
	_, err := s.exec(ctx, s.db,
		`INSERT INTO ai_usage_logs (id, user_id, feature, session_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		log.ID, log.UserID, string(log.Feature), nullString(log.SessionID), log.CreatedAt)
	if err != nil {
		return domain.NewStorageError("create usage log", err)
	}
	return nil
}

// ListUsageLogs returns a user's usage log, oldest first.
func (s *SQLiteStore) ListUsageLogs(ctx context.Context, userID string) ([]domain.UsageLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, feature, session_id, created_at FROM ai_usage_logs
		 WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, domain.NewStorageError("list usage logs", err)
	}
	defer rows.Close()

	var logs []domain.UsageLog
	for rows.Next() {
		var l domain.UsageLog
		var feature string
		var sessionID sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &feature, &sessionID, &l.CreatedAt); err != nil {
			return nil, domain.NewStorageError("list usage logs", err)
		}
		l.Feature = domain.AIFeature(feature)
		l.SessionID = stringPtr(sessionID)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list usage logs", err)
	}
	return logs, nil
}
