package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const templateColumns = `id, user_id, name, description, content, category, is_system, sort_order, created_at, updated_at`

func scanTemplate(row scanner) (*domain.Template, error) {
	var t domain.Template
	var userID, description, category sql.NullString
	var isSystem int
	if err := row.Scan(&t.ID, &userID, &t.Name, &description, &t.Content, &category, &isSystem,
		&t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.UserID = stringPtr(userID)
	t.Description = stringPtr(description)
	t.Category = stringPtr(category)
	t.IsSystem = isSystem == 1
	return &t, nil
}

func (s *SQLiteStore) getTemplate(ctx context.Context, q querier, id string) (*domain.Template, error) {
	t, err := scanTemplate(q.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get template", err)
	}
	return t, nil
}

// ListTemplates returns system templates and the user's own templates.
func (s *SQLiteStore) ListTemplates(ctx context.Context, userID string) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE is_system = 1 OR user_id = ? ORDER BY sort_order, name`, userID)
	if err != nil {
		return nil, domain.NewStorageError("list templates", err)
	}
	defer rows.Close()

	templates := []domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, domain.NewStorageError("list templates", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list templates", err)
	}
	return templates, nil
}

// GetTemplate retrieves a template by ID.
func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	return s.getTemplate(ctx, s.db, id)
}

// CreateTemplate inserts a user-owned template.
func (s *SQLiteStore) CreateTemplate(ctx context.Context, userID string, input domain.TemplateInput) (*domain.Template, error) {
	id := newID()
	now := s.timestamp()
	var name, content string
	if input.Name != nil {
		name = *input.Name
	}
	if input.Content != nil {
		content = *input.Content
	}
	if _, err := s.exec(ctx, s.db,
		`INSERT INTO templates (id, user_id, name, description, content, category, is_system, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		id, userID, name, nullString(input.Description), content, nullString(input.Category), now, now); err != nil {
		return nil, domain.NewStorageError("create template", err)
	}
	return s.GetTemplate(ctx, id)
}

// UpdateTemplate edits a user template. System templates are immutable.
func (s *SQLiteStore) UpdateTemplate(ctx context.Context, id string, input domain.TemplateInput) (*domain.Template, error) {
	var updated *domain.Template
	err := s.withTx(ctx, "update template", func(tx *sql.Tx) error {
		t, err := s.getTemplate(ctx, tx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NewNotFoundError("template", id)
		}
		if t.IsSystem {
			return domain.NewValidationError("template", "system templates cannot be modified")
		}

		var set setClause
		if input.Name != nil {
			set.add("name", *input.Name)
		}
		if input.Description != nil {
			set.add("description", *input.Description)
		}
		if input.Content != nil {
			set.add("content", *input.Content)
		}
		if input.Category != nil {
			set.add("category", *input.Category)
		}
		if set.empty() {
			updated = t
			return nil
		}
		set.add("updated_at", s.timestamp())
		if _, err := s.exec(ctx, tx, `UPDATE templates SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...); err != nil {
			return err
		}
		updated, err = s.getTemplate(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTemplate removes a user template. Notes created from it keep their content.
func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	return s.withTx(ctx, "delete template", func(tx *sql.Tx) error {
		t, err := s.getTemplate(ctx, tx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NewNotFoundError("template", id)
		}
		if t.IsSystem {
			return domain.NewValidationError("template", "system templates cannot be deleted")
		}
		_, err = s.exec(ctx, tx, `DELETE FROM templates WHERE id = ?`, id)
		return err
	})
}
