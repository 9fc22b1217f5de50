package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/restohub/backend/internal/domain"
)

const bookingColumns = `
	id,
	establishment_id,
	slot_template_id,
	to_char(date, 'YYYY-MM-DD'),
	to_char(time, 'HH24:MI'),
	party_size,
	customer_name,
	customer_email,
	customer_phone,
	notes,
	status,
	created_at,
	version
`

func bookingDst(b *domain.Booking) []any {
	return []any{
		&b.ID,
		&b.EstablishmentID,
		&b.SlotTemplateID,
		&b.Date,
		&b.Time,
		&b.PartySize,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.Notes,
		&b.Status,
		&b.CreatedAt,
		&b.Version,
	}
}

func (r *Repository) CreateBooking(b *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			establishment_id,
			slot_template_id,
			date,
			time,
			party_size,
			customer_name,
			customer_email,
			customer_phone,
			notes,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		b.EstablishmentID,
		b.SlotTemplateID,
		b.Date,
		b.Time,
		b.PartySize,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		b.Notes,
		b.Status,
	}
	dst := []any{&b.ID, &b.CreatedAt, &b.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetBookingsByDate(establishmentID uuid.UUID, date string) ([]*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE establishment_id = $1 AND date = $2::date
		ORDER BY time, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, establishmentID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*domain.Booking{}
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(bookingDst(&b)...); err != nil {
			return nil, err
		}
		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *Repository) GetBookingByID(id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	b := &domain.Booking{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(bookingDst(b)...); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookedPartySize 返回某个时间点上已确认预订的总人数
func (r *Repository) GetBookedPartySize(slotTemplateID uuid.UUID, date string, clock string) (int32, error) {
	query := `
		SELECT COALESCE(SUM(party_size), 0)
		FROM bookings
		WHERE slot_template_id = $1 AND date = $2::date AND time = $3::time AND status = $4
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var total int32
	params := []any{slotTemplateID, date, clock, domain.BookingStatusConfirmed}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *Repository) UpdateBookingStatus(b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, b.Status, b.ID, b.Version).Scan(&b.Version); err != nil {
		return err
	}

	return nil
}
