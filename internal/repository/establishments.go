package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

func (r *Repository) CreateEstablishment(e *domain.Establishment) error {
	query := `
		INSERT INTO establishments (organization_id, name, slug, timezone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{e.OrganizationID, e.Name, e.Slug, e.Timezone}
	dst := []any{&e.ID, &e.CreatedAt, &e.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllEstablishments() ([]*domain.Establishment, error) {
	query := `
		SELECT id, organization_id, name, slug, timezone, created_at, version
		FROM establishments
		ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	establishments := []*domain.Establishment{}
	for rows.Next() {
		var e domain.Establishment
		dst := []any{&e.ID, &e.OrganizationID, &e.Name, &e.Slug, &e.Timezone, &e.CreatedAt, &e.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		establishments = append(establishments, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return establishments, nil
}

func (r *Repository) GetEstablishmentByID(id uuid.UUID) (*domain.Establishment, error) {
	query := `
		SELECT organization_id, name, slug, timezone, created_at, version
		FROM establishments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	e := &domain.Establishment{
		ID: id,
	}

	dst := []any{&e.OrganizationID, &e.Name, &e.Slug, &e.Timezone, &e.CreatedAt, &e.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *Repository) UpdateEstablishment(e *domain.Establishment) error {
	query := `
		UPDATE establishments
		SET
			name = $1,
			slug = $2,
			timezone = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{e.Name, e.Slug, e.Timezone, e.ID, e.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&e.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteEstablishment(id uuid.UUID) error {
	query := `
		DELETE FROM establishments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
