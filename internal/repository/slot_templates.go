package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

const slotTemplateColumns = `
	id,
	establishment_id,
	day_of_week,
	to_char(start_time, 'HH24:MI'),
	to_char(end_time, 'HH24:MI'),
	service_name,
	max_capacity,
	display_order,
	created_at,
	version
`

func slotTemplateDst(st *domain.SlotTemplate) []any {
	return []any{
		&st.ID,
		&st.EstablishmentID,
		&st.DayOfWeek,
		&st.StartTime,
		&st.EndTime,
		&st.ServiceName,
		&st.MaxCapacity,
		&st.DisplayOrder,
		&st.CreatedAt,
		&st.Version,
	}
}

func (r *Repository) CreateSlotTemplate(st *domain.SlotTemplate) error {
	query := `
		INSERT INTO slot_templates (
			establishment_id,
			day_of_week,
			start_time,
			end_time,
			service_name,
			max_capacity,
			display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		st.EstablishmentID,
		st.DayOfWeek,
		st.StartTime,
		st.EndTime,
		st.ServiceName,
		st.MaxCapacity,
		st.DisplayOrder,
	}
	dst := []any{&st.ID, &st.CreatedAt, &st.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// GetSlotTemplatesByEstablishment 返回门店的所有时段模板，按星期、展示顺序和开始时间排序
func (r *Repository) GetSlotTemplatesByEstablishment(establishmentID uuid.UUID) ([]domain.SlotTemplate, error) {
	query := `SELECT` + slotTemplateColumns + `
		FROM slot_templates
		WHERE establishment_id = $1
		ORDER BY day_of_week, display_order, start_time
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, establishmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []domain.SlotTemplate{}
	for rows.Next() {
		var st domain.SlotTemplate
		if err := rows.Scan(slotTemplateDst(&st)...); err != nil {
			return nil, err
		}
		templates = append(templates, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) GetSlotTemplateByID(id uuid.UUID) (*domain.SlotTemplate, error) {
	query := `SELECT` + slotTemplateColumns + `
		FROM slot_templates
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	st := &domain.SlotTemplate{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(slotTemplateDst(st)...); err != nil {
		return nil, err
	}

	return st, nil
}

func (r *Repository) UpdateSlotTemplate(st *domain.SlotTemplate) error {
	query := `
		UPDATE slot_templates
		SET
			day_of_week = $1,
			start_time = $2,
			end_time = $3,
			service_name = $4,
			max_capacity = $5,
			display_order = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		st.DayOfWeek,
		st.StartTime,
		st.EndTime,
		st.ServiceName,
		st.MaxCapacity,
		st.DisplayOrder,
		st.ID,
		st.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&st.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSlotTemplate(id uuid.UUID) error {
	query := `
		DELETE FROM slot_templates WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
