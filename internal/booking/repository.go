package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dojobook/internal/class"
	"dojobook/internal/period"
	"dojobook/internal/user"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrBookingNotFound                   = errors.New("booking not found")
	ErrBookingNotFoundOrAlreadyCancelled = errors.New("booking not found or already cancelled")
	ErrAlreadyBooked                     = errors.New("user already has a confirmed booking for this class")
	ErrClassFull                         = errors.New("class is full")
	ErrTrialExhausted                    = errors.New("trial allowance exhausted")
)

// Quota-exempt marker pattern, mirrored from class.QuotaExempt so the weekly
// counter can exclude private sessions in SQL.
const exemptPattern = `(private|1-1|1:1|one-on-one)`

const bookingColumns = `id, class_id, user_id, user_name, user_email, reference,
		membership_cycle, is_free_trial, status, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// WeeklyUsed counts confirmed, non-exempt bookings for classes in the week
// starting at weekStart (Monday, 7-day window).
func (r *repository) WeeklyUsed(ctx context.Context, userID int, weekStart time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings b
		JOIN classes c ON b.class_id = c.id
		WHERE b.user_id = $1
		  AND b.status = 'confirmed'
		  AND c.start_time >= $2
		  AND c.start_time < $3
		  AND LOWER(c.name) !~ $4
		  AND LOWER(COALESCE(c.class_type, '')) !~ $4
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, weekStart, period.WeekEnd(weekStart), exemptPattern)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// MonthlyUsed counts confirmed bookings in the given membership cycle.
// Exempt classes are counted here; only weekly accounting excludes them.
func (r *repository) MonthlyUsed(ctx context.Context, userID int, cycle string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE user_id = $1
		  AND status = 'confirmed'
		  AND membership_cycle = $2
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, cycle)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Commit performs the state-changing write for an admitted decision. The
// whole operation is one transaction: capacity is re-checked under a lock
// on the class row, and a free-trial booking re-validates the trial counter
// under a lock on the user row before incrementing it. Losing either
// re-check rolls everything back.
func (r *repository) Commit(ctx context.Context, u *user.User, cl *class.Class, isFreeTrial bool, trialAllowance int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowxContext(ctx,
		`SELECT capacity FROM classes WHERE id = $1 FOR UPDATE`, cl.ID,
	).Scan(&capacity)
	if err != nil {
		return nil, err
	}

	var confirmed int
	err = tx.QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND status = 'confirmed'`, cl.ID,
	).Scan(&confirmed)
	if err != nil {
		return nil, err
	}
	if confirmed >= capacity {
		return nil, ErrClassFull
	}

	var exists bool
	err = tx.QueryRowxContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND class_id = $2 AND status = 'confirmed'
		)`, u.ID, cl.ID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyBooked
	}

	if isFreeTrial {
		var used int
		err = tx.QueryRowxContext(ctx,
			`SELECT trial_classes_used FROM users WHERE id = $1 FOR UPDATE`, u.ID,
		).Scan(&used)
		if err != nil {
			return nil, err
		}
		if used >= trialAllowance {
			return nil, ErrTrialExhausted
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET trial_classes_used = trial_classes_used + 1,
			    free_trial_used = TRUE
			WHERE id = $1
		`, u.ID)
		if err != nil {
			return nil, err
		}
	}

	var b Booking
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (class_id, user_id, user_name, user_email, reference, membership_cycle, is_free_trial, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'confirmed')
		RETURNING `+bookingColumns,
		cl.ID, u.ID, u.Name, u.Email, uuid.NewString(), period.Cycle(cl.StartTime), isFreeTrial,
	).StructScan(&b)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) Cancel(ctx context.Context, id int) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'confirmed'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFoundOrAlreadyCancelled
	}

	return nil
}

func (r *repository) ListForUser(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id, b.class_id, b.user_id, b.user_name, b.user_email, b.reference,
			b.membership_cycle, b.is_free_trial, b.status, b.created_at,
			c.name AS class_name,
			c.start_time AS class_start,
			c.end_time AS class_end
		FROM bookings b
		JOIN classes c ON b.class_id = c.id
		WHERE b.user_id = $1
		ORDER BY c.start_time DESC, b.created_at DESC
	`

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListForClass(ctx context.Context, classID int) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id, b.class_id, b.user_id, b.user_name, b.user_email, b.reference,
			b.membership_cycle, b.is_free_trial, b.status, b.created_at,
			c.name AS class_name,
			c.start_time AS class_start,
			c.end_time AS class_end
		FROM bookings b
		JOIN classes c ON b.class_id = c.id
		WHERE b.class_id = $1
		ORDER BY b.created_at DESC
	`

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, classID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
