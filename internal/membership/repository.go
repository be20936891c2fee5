package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dojobook/internal/plan"

	"github.com/jmoiron/sqlx"
)

var (
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrDuplicateMembership  = errors.New("user already has a pending or active membership")
	ErrInvalidTransition    = errors.New("invalid membership status transition")
	ErrNoActiveMembership   = errors.New("no active membership")
)

const membershipColumns = `id, user_id, plan_id, status, start_date, end_date,
		beginner_start_date, beginner_end_date, auto_upgrade_plan_id, rejection_reason, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetActiveForUser returns the active membership whose validity window
// contains the given instant. If the single pending/active invariant has
// ever been violated, the latest end_date wins.
func (r *repository) GetActiveForUser(ctx context.Context, userID int, at time.Time) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE user_id = $1
		  AND status = 'active'
		  AND start_date <= $2
		  AND end_date >= $2
		ORDER BY end_date DESC
		LIMIT 1
	`, userID, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveMembership
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a pending membership. The duplicate check runs inside the
// same transaction as the insert so concurrent requests from one user
// cannot both slip through.
func (r *repository) Create(ctx context.Context, userID int, p *plan.Plan, now time.Time) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existingID int
	err = tx.QueryRowxContext(ctx, `
		SELECT id FROM memberships
		WHERE user_id = $1 AND status IN ('pending', 'active')
		LIMIT 1
		FOR UPDATE
	`, userID).Scan(&existingID)
	if err == nil {
		return nil, ErrDuplicateMembership
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	startDate := now
	endDate := now.AddDate(0, 1, 0)

	var beginnerStart, beginnerEnd *time.Time
	var autoUpgradePlanID *int
	if p.IsBeginnerOnly && p.BeginnerDurationWeeks != nil {
		bEnd := now.AddDate(0, 0, 7*(*p.BeginnerDurationWeeks))
		beginnerStart = &startDate
		beginnerEnd = &bEnd
		autoUpgradePlanID = p.AutoUpgradePlanID
		endDate = bEnd
	}

	var m Membership
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO memberships (user_id, plan_id, status, start_date, end_date,
			beginner_start_date, beginner_end_date, auto_upgrade_plan_id)
		VALUES ($1, $2, 'pending', $3, $4, $5, $6, $7)
		RETURNING `+membershipColumns, userID, p.ID, startDate, endDate,
		beginnerStart, beginnerEnd, autoUpgradePlanID,
	).StructScan(&m)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Approve activates a pending membership and sets its validity window.
// Approving an already-active membership is a no-op.
func (r *repository) Approve(ctx context.Context, id int, start, end time.Time) (*Membership, error) {
	var m Membership
	err := r.db.QueryRowxContext(ctx, `
		UPDATE memberships
		SET status = 'active', start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+membershipColumns, id, start, end,
	).StructScan(&m)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == StatusActive {
		return current, nil
	}
	return nil, ErrInvalidTransition
}

func (r *repository) Reject(ctx context.Context, id int, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, reason)
	if err != nil {
		return err
	}
	return requireRow(result, ErrInvalidTransition)
}

func (r *repository) Cancel(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'active')
	`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrInvalidTransition)
}

// ExpireLapsed marks active memberships whose window has passed as expired.
func (r *repository) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1
	`, now)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// ProcessBeginnerUpgrades expires active beginner memberships whose beginner
// window has closed and creates a pending membership on the upgrade plan.
// Row claims use SKIP LOCKED so the sweep is safe to run concurrently with
// itself and with booking traffic.
func (r *repository) ProcessBeginnerUpgrades(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var due []Membership
	err = tx.SelectContext(ctx, &due, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE status = 'active'
		  AND beginner_end_date IS NOT NULL
		  AND beginner_end_date <= $1
		  AND auto_upgrade_plan_id IS NOT NULL
		FOR UPDATE SKIP LOCKED
	`, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, m := range due {
		_, err = tx.ExecContext(ctx, `
			UPDATE memberships SET status = 'expired', updated_at = NOW() WHERE id = $1
		`, m.ID)
		if err != nil {
			return 0, err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO memberships (user_id, plan_id, status, start_date, end_date)
			VALUES ($1, $2, 'pending', $3, $4)
		`, m.UserID, *m.AutoUpgradePlanID, now, now.AddDate(0, 1, 0))
		if err != nil {
			return 0, err
		}

		processed++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return processed, nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Membership, error) {
	var memberships []Membership
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE status = $1
		ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *repository) ListForUser(ctx context.Context, userID int) ([]Membership, error) {
	var memberships []Membership
	err := r.db.SelectContext(ctx, &memberships, `
		SELECT `+membershipColumns+`
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func requireRow(result sql.Result, missing error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
