package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

const exceptionSelect = `
	SELECT
		e.id,
		e.establishment_id,
		e.organization_id,
		e.exception_type,
		to_char(e.date, 'YYYY-MM-DD'),
		to_char(e.start_date, 'YYYY-MM-DD'),
		to_char(e.end_date, 'YYYY-MM-DD'),
		e.slot_template_id,
		e.reason,
		e.status,
		e.created_at,
		e.version,
		ecs.slot_index
	FROM exceptions e
	LEFT JOIN exception_closed_slots ecs ON e.id = ecs.exception_id
`

// scanExceptions 把 LEFT JOIN 得到的多行结果合并成例外列表，保持查询的顺序
func scanExceptions(rows *sql.Rows) ([]domain.Exception, error) {
	exceptions := []domain.Exception{}
	positions := make(map[uuid.UUID]int) // exceptionID -> 在 exceptions 中的下标

	for rows.Next() {
		var row struct {
			domain.Exception

			Date           sql.NullString
			StartDate      sql.NullString
			EndDate        sql.NullString
			SlotTemplateID uuid.NullUUID
			SlotIndex      sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.EstablishmentID,
			&row.OrganizationID,
			&row.ExceptionType,
			&row.Date,
			&row.StartDate,
			&row.EndDate,
			&row.SlotTemplateID,
			&row.Reason,
			&row.Status,
			&row.CreatedAt,
			&row.Version,
			&row.SlotIndex,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		pos, exists := positions[row.ID]
		if !exists {
			// 说明此时是第一次查到这个例外，需要初始化
			e := row.Exception
			e.Date = nullStringPtr(row.Date)
			e.StartDate = nullStringPtr(row.StartDate)
			e.EndDate = nullStringPtr(row.EndDate)
			if row.SlotTemplateID.Valid {
				id := row.SlotTemplateID.UUID
				e.SlotTemplateID = &id
			}

			pos = len(exceptions)
			positions[row.ID] = pos
			exceptions = append(exceptions, e)
		}

		// 如果 slot_index 为空，说明这个例外没有关闭任何具体的时间点
		if !row.SlotIndex.Valid {
			continue
		}

		exceptions[pos].ClosedSlots = append(exceptions[pos].ClosedSlots, row.SlotIndex.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exceptions, nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func (r *Repository) CreateException(e *domain.Exception) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO exceptions (
			establishment_id,
			organization_id,
			exception_type,
			date,
			start_date,
			end_date,
			slot_template_id,
			reason,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`
	params := []any{
		e.EstablishmentID,
		e.OrganizationID,
		e.ExceptionType,
		e.Date,
		e.StartDate,
		e.EndDate,
		e.SlotTemplateID,
		e.Reason,
		e.Status,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&e.ID, &e.CreatedAt, &e.Version); err != nil {
		return err
	}

	for _, index := range e.ClosedSlots {
		query = `
			INSERT INTO exception_closed_slots (exception_id, slot_index)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, e.ID, index); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetExceptionsByEstablishment(establishmentID uuid.UUID) ([]domain.Exception, error) {
	query := exceptionSelect + `
		WHERE e.establishment_id = $1
		ORDER BY e.created_at, e.id, ecs.slot_index
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, establishmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExceptions(rows)
}

// GetExceptionsForDate 返回可能影响 date 这一天的例外（不区分状态）。
// 缺少日期字段的记录也会一起返回，计算时会被忽略并记录日志。
func (r *Repository) GetExceptionsForDate(establishmentID uuid.UUID, date string) ([]domain.Exception, error) {
	query := exceptionSelect + `
		WHERE e.establishment_id = $1
			AND (
				e.date = $2::date
				OR (e.start_date <= $2::date AND e.end_date >= $2::date)
				OR (e.exception_type <> $3 AND e.date IS NULL)
				OR (e.exception_type = $3 AND (e.start_date IS NULL OR e.end_date IS NULL))
			)
		ORDER BY e.created_at, e.id, ecs.slot_index
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, establishmentID, date, domain.ExceptionTypePeriod)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExceptions(rows)
}

func (r *Repository) GetExceptionByID(id uuid.UUID) (*domain.Exception, error) {
	query := exceptionSelect + `
		WHERE e.id = $1
		ORDER BY ecs.slot_index
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exceptions, err := scanExceptions(rows)
	if err != nil {
		return nil, err
	}
	if len(exceptions) == 0 {
		return nil, sql.ErrNoRows
	}

	return &exceptions[0], nil
}

// UpdateException 只允许修改状态和原因，类型相关的字段需要删除后重新创建
func (r *Repository) UpdateException(e *domain.Exception) error {
	query := `
		UPDATE exceptions
		SET
			reason = $1,
			status = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{e.Reason, e.Status, e.ID, e.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&e.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteException(id uuid.UUID) error {
	query := `
		DELETE FROM exceptions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
