package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const clientColumns = `c.id, c.user_id, c.name, c.email, c.phone, c.company, c.goals, c.notes, c.status,
	c.contract_start_date, c.contract_end_date, c.contract_total_sessions, c.contract_fee,
	c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM sessions s WHERE s.client_id = c.id) AS session_count`

func scanClient(row scanner) (*domain.ClientWithStats, error) {
	var c domain.ClientWithStats
	var email, phone, company, goals, notes, start, end sql.NullString
	var total, fee sql.NullInt64
	var status string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &email, &phone, &company, &goals, &notes, &status,
		&start, &end, &total, &fee, &c.CreatedAt, &c.UpdatedAt, &c.SessionCount); err != nil {
		return nil, err
	}
	c.Email = stringPtr(email)
	c.Phone = stringPtr(phone)
	c.Company = stringPtr(company)
	c.Goals = stringPtr(goals)
	c.Notes = stringPtr(notes)
	c.Status = domain.ClientStatus(status)
	c.ContractStartDate = stringPtr(start)
	c.ContractEndDate = stringPtr(end)
	c.ContractTotalSessions = intPtr(total)
	c.ContractFee = intPtr(fee)
	return &c, nil
}

// CreateClient inserts a new active client.
func (s *SQLiteStore) CreateClient(ctx context.Context, userID string, input domain.ClientInput) (*domain.ClientWithStats, error) {
	id := newID()
	now := s.timestamp()
	name := ""
	if input.Name != nil {
		name = *input.Name
	}
	_, err := s.exec(ctx, s.db,
		`INSERT INTO clients (id, user_id, name, email, phone, company, goals, notes,
			contract_start_date, contract_end_date, contract_total_sessions, contract_fee, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, name, nullString(input.Email), nullString(input.Phone), nullString(input.Company),
		nullString(input.Goals), nullString(input.Notes), nullString(input.ContractStartDate),
		nullString(input.ContractEndDate), nullInt(input.ContractTotalSessions), nullInt(input.ContractFee), now, now)
	if err != nil {
		return nil, domain.NewStorageError("create client", err)
	}
	return s.GetClient(ctx, id)
}

// GetClient retrieves a non-deleted client by ID.
func (s *SQLiteStore) GetClient(ctx context.Context, id string) (*domain.ClientWithStats, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients c WHERE c.id = ? AND c.deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get client", err)
	}
	return c, nil
}

// ListClients returns one page of a coach's clients and the total match count.
func (s *SQLiteStore) ListClients(ctx context.Context, userID string, filter domain.ClientFilter) ([]domain.ClientWithStats, int, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	status := filter.Status
	if status == "" {
		status = string(domain.ClientStatusActive)
	}

	where := "c.user_id = ? AND c.deleted_at IS NULL"
	args := []any{userID}
	if status != "all" {
		where += " AND c.status = ?"
		args = append(args, status)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		where += " AND (c.name LIKE ? OR c.email LIKE ?)"
		args = append(args, term, term)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients c WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.NewStorageError("count clients", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients c WHERE `+where+`
		 ORDER BY c.updated_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, domain.NewStorageError("list clients", err)
	}
	defer rows.Close()

	clients := []domain.ClientWithStats{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, domain.NewStorageError("list clients", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("list clients", err)
	}
	return clients, total, nil
}

// UpdateClient applies a partial update to a non-deleted client.
func (s *SQLiteStore) UpdateClient(ctx context.Context, id string, input domain.ClientInput) (*domain.ClientWithStats, error) {
	var set setClause
	if input.Name != nil {
		set.add("name", *input.Name)
	}
	if input.Email != nil {
		set.add("email", nullStringValue(*input.Email))
	}
	if input.Phone != nil {
		set.add("phone", nullStringValue(*input.Phone))
	}
	if input.Company != nil {
		set.add("company", nullStringValue(*input.Company))
	}
	if input.Goals != nil {
		set.add("goals", nullStringValue(*input.Goals))
	}
	if input.Notes != nil {
		set.add("notes", nullStringValue(*input.Notes))
	}
	if input.Status != nil {
		set.add("status", string(*input.Status))
	}
	if input.ContractStartDate != nil {
		set.add("contract_start_date", nullStringValue(*input.ContractStartDate))
	}
	if input.ContractEndDate != nil {
		set.add("contract_end_date", nullStringValue(*input.ContractEndDate))
	}
	if input.ContractTotalSessions != nil {
		set.add("contract_total_sessions", *input.ContractTotalSessions)
	}
	if input.ContractFee != nil {
		set.add("contract_fee", *input.ContractFee)
	}
	if set.empty() {
		return s.GetClient(ctx, id)
	}
	set.add("updated_at", s.timestamp())

	if _, err := s.exec(ctx, s.db,
		`UPDATE clients SET `+set.sql()+` WHERE id = ? AND deleted_at IS NULL`, append(set.args, id)...); err != nil {
		return nil, domain.NewStorageError("update client", err)
	}
	return s.GetClient(ctx, id)
}

// ToggleClientArchive flips a client between active and archived.
func (s *SQLiteStore) ToggleClientArchive(ctx context.Context, id string) (*domain.ClientWithStats, error) {
	res, err := s.exec(ctx, s.db,
		`UPDATE clients
		 SET status = CASE status WHEN 'active' THEN 'archived' ELSE 'active' END, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`, s.timestamp(), id)
	if err != nil {
		return nil, domain.NewStorageError("archive client", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetClient(ctx, id)
}

// SoftDeleteClient marks a client as deleted. Its sessions are kept.
func (s *SQLiteStore) SoftDeleteClient(ctx context.Context, id string) error {
	now := s.timestamp()
	if _, err := s.exec(ctx, s.db,
		`UPDATE clients SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id); err != nil {
		return domain.NewStorageError("delete client", err)
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
