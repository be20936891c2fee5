package trial

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
)

var ErrResetTargetNotFound = errors.New("reset target user not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSettings(ctx context.Context) (Settings, error) {
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}

	err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM trial_settings`)
	if err != nil {
		return Settings{}, err
	}

	// Defaults apply for any key missing from the table.
	s := Settings{
		SystemEnabled:            true,
		ClassesPerUser:           1,
		EligibleForExistingUsers: true,
		AutoResetEnabled:         false,
	}

	for _, row := range rows {
		switch row.Key {
		case KeySystemEnabled:
			s.SystemEnabled = row.Value == "1" || row.Value == "true"
		case KeyClassesPerUser:
			if n, err := strconv.Atoi(row.Value); err == nil {
				s.ClassesPerUser = n
			}
		case KeyExistingUsers:
			s.EligibleForExistingUsers = row.Value == "1" || row.Value == "true"
		case KeyAutoResetEnabled:
			s.AutoResetEnabled = row.Value == "1" || row.Value == "true"
		}
	}

	return s, nil
}

func (r *repository) UpdateSettings(ctx context.Context, s Settings, adminID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pairs := map[string]string{
		KeySystemEnabled:    boolValue(s.SystemEnabled),
		KeyClassesPerUser:   strconv.Itoa(s.ClassesPerUser),
		KeyExistingUsers:    boolValue(s.EligibleForExistingUsers),
		KeyAutoResetEnabled: boolValue(s.AutoResetEnabled),
	}

	for key, value := range pairs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO trial_settings (key, value, updated_by_admin_id, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (key)
			DO UPDATE SET value = $2, updated_by_admin_id = $3, updated_at = NOW()
		`, key, value, adminID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ResetTrial zeroes a user's consumed-trial counter, bumps the reset count
// and stamps the reset date, writing one audit row in the same transaction.
// userID 0 applies the reset to every user with a single audit row.
func (r *repository) ResetTrial(ctx context.Context, userID, adminID int, notes string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var oldValue *int
	if userID != BulkResetUserID {
		var used int
		err := tx.QueryRowxContext(ctx,
			`SELECT trial_classes_used FROM users WHERE id = $1 FOR UPDATE`, userID,
		).Scan(&used)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResetTargetNotFound
		}
		if err != nil {
			return err
		}
		oldValue = &used

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET trial_classes_used = 0,
			    trial_reset_count = trial_reset_count + 1,
			    trial_last_reset_date = NOW()
			WHERE id = $1
		`, userID)
		if err != nil {
			return err
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET trial_classes_used = 0,
			    trial_reset_count = trial_reset_count + 1,
			    trial_last_reset_date = NOW()
		`)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trial_audit_log (user_id, admin_id, action, old_value, new_value, notes)
		VALUES ($1, $2, 'reset_trial', $3, 0, $4)
	`, userID, adminID, oldValue, notes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ListAudit(ctx context.Context, limit, offset int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []AuditEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, admin_id, action, old_value, new_value, notes, created_at
		FROM trial_audit_log
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func boolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
