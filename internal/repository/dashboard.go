package store

import (
	"context"
	"database/sql"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// GetDashboard assembles the session lists and counters of the coach's
// overview. AI usage stats are left zero; they belong to the quota tracker.
func (s *SQLiteStore) GetDashboard(ctx context.Context, userID string, window domain.DashboardWindow) (*domain.Dashboard, error) {
	d := &domain.Dashboard{
		UpcomingSessions: []domain.UpcomingSession{},
		RecentSessions:   []domain.RecentSession{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.client_id, c.name, s.scheduled_at, s.duration_minutes, s.session_number,
			EXISTS (SELECT 1 FROM session_notes sn WHERE sn.session_id = s.id)
		 FROM sessions s JOIN clients c ON c.id = s.client_id
		 WHERE s.user_id = ? AND s.status = 'scheduled' AND s.scheduled_at >= ?
		 ORDER BY s.scheduled_at ASC, s.rowid ASC
		 LIMIT ?`,
		userID, window.UpcomingFrom.UTC(), domain.DashboardUpcomingLimit)
	if err != nil {
		return nil, domain.NewStorageError("list upcoming sessions", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u domain.UpcomingSession
		var duration, number sql.NullInt64
		if err := rows.Scan(&u.ID, &u.ClientID, &u.ClientName, &u.ScheduledAt, &duration, &number, &u.HasNote); err != nil {
			return nil, domain.NewStorageError("list upcoming sessions", err)
		}
		u.DurationMinutes = intPtr(duration)
		u.SessionNumber = intPtr(number)
		d.UpcomingSessions = append(d.UpcomingSessions, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list upcoming sessions", err)
	}

	recent, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.client_id, c.name, s.scheduled_at, s.status,
			EXISTS (SELECT 1 FROM ai_summaries a WHERE a.session_id = s.id)
		 FROM sessions s JOIN clients c ON c.id = s.client_id
		 WHERE s.user_id = ?
		 ORDER BY s.scheduled_at DESC, s.rowid DESC
		 LIMIT ?`,
		userID, domain.DashboardRecentLimit)
	if err != nil {
		return nil, domain.NewStorageError("list recent sessions", err)
	}
	defer recent.Close()
	for recent.Next() {
		var r domain.RecentSession
		var status string
		if err := recent.Scan(&r.ID, &r.ClientID, &r.ClientName, &r.ScheduledAt, &status, &r.HasSummary); err != nil {
			return nil, domain.NewStorageError("list recent sessions", err)
		}
		r.Status = domain.SessionStatus(status)
		d.RecentSessions = append(d.RecentSessions, r)
	}
	if err := recent.Err(); err != nil {
		return nil, domain.NewStorageError("list recent sessions", err)
	}

	d.PendingFollowUpCount, err = s.CountPendingFollowUps(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE user_id = ? AND deleted_at IS NULL`,
		userID).Scan(&d.Stats.TotalClients); err != nil {
		return nil, domain.NewStorageError("count clients", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND scheduled_at >= ?`,
		userID, window.MonthStart.UTC()).Scan(&d.Stats.SessionsThisMonth); err != nil {
		return nil, domain.NewStorageError("count sessions this month", err)
	}

	return d, nil
}
