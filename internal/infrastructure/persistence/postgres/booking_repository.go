package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

const bookingColumns = `
	id, requester_id, resource_id, start_date, end_date, total_days,
	unit_price, total_amount, payment_status, booking_status,
	transaction_id, gateway_ref_id, gateway_transaction_code,
	notes, with_insurance, deferred_payment, created_at, updated_at`

// Inclusive-boundary overlap: start_date <= $end AND end_date >= $start.
// Must stay in lockstep with domain.DateRange.Overlaps.
const overlapPredicate = `
	resource_id = $1
	AND booking_status IN ('pending', 'confirmed', 'active')
	AND start_date <= $3
	AND end_date >= $2`

type BookingRepository struct {
	db *DB
}

func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateConfirmed inserts a booking after re-validating the overlap invariant
// inside one transaction. The resource row is locked first, which serializes
// competing commits for the same resource; the count of occupying overlaps is
// then authoritative until the transaction ends.
func (r *BookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var stock int
	err = tx.QueryRow(ctx,
		`SELECT stock FROM resources WHERE id = $1 FOR UPDATE`,
		booking.ResourceID,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewResourceUnavailableError(booking.ResourceID)
		}
		return fmt.Errorf("lock resource row: %w", err)
	}

	var occupied int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE`+overlapPredicate,
		booking.ResourceID, booking.StartDate, booking.EndDate,
	).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("count overlapping bookings: %w", err)
	}
	if occupied >= stock {
		return domain.NewBookingConflictError(booking.ResourceID)
	}

	m := toBookingModel(booking)
	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (
			id, requester_id, resource_id, start_date, end_date, total_days,
			unit_price, total_amount, payment_status, booking_status,
			transaction_id, gateway_ref_id, gateway_transaction_code,
			notes, with_insurance, deferred_payment, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		m.ID, m.RequesterID, m.ResourceID, m.StartDate, m.EndDate, m.TotalDays,
		m.UnitPrice, m.TotalAmount, m.PaymentStatus, m.BookingStatus,
		m.TransactionID, m.GatewayRefID, m.GatewayTransactionCode,
		m.Notes, m.WithInsurance, m.DeferredPayment, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			// A duplicate transaction_id means another path already
			// promoted this transaction.
			return domain.NewBookingConflictError(booking.ResourceID)
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking transaction: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row, id.String())
}

func (r *BookingRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE transaction_id = $1`, transactionID)
	return scanBooking(row, transactionID)
}

// FindOverlapping returns occupying bookings whose ranges conflict with r.
func (r *BookingRepository) FindOverlapping(ctx context.Context, resourceID string, dr domain.DateRange) ([]*domain.Booking, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE`+overlapPredicate+` ORDER BY start_date`,
		resourceID, dr.Start, dr.End,
	)
	if err != nil {
		return nil, fmt.Errorf("query overlapping bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *BookingRepository) FindByRequester(ctx context.Context, requesterID string, limit, offset int) ([]*domain.Booking, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE requester_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		requesterID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings by requester: %w", err)
	}
	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Booking, error) {
		var m BookingModel
		err := row.Scan(
			&m.ID, &m.RequesterID, &m.ResourceID, &m.StartDate, &m.EndDate, &m.TotalDays,
			&m.UnitPrice, &m.TotalAmount, &m.PaymentStatus, &m.BookingStatus,
			&m.TransactionID, &m.GatewayRefID, &m.GatewayTransactionCode,
			&m.Notes, &m.WithInsurance, &m.DeferredPayment, &m.CreatedAt, &m.UpdatedAt,
		)
		return toDomainBooking(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan booking rows: %w", err)
	}
	return results, nil
}

func scanBooking(row pgx.Row, ref string) (*domain.Booking, error) {
	var m BookingModel
	err := row.Scan(
		&m.ID, &m.RequesterID, &m.ResourceID, &m.StartDate, &m.EndDate, &m.TotalDays,
		&m.UnitPrice, &m.TotalAmount, &m.PaymentStatus, &m.BookingStatus,
		&m.TransactionID, &m.GatewayRefID, &m.GatewayTransactionCode,
		&m.Notes, &m.WithInsurance, &m.DeferredPayment, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewBookingNotFoundError(ref)
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return toDomainBooking(m), nil
}
