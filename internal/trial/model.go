package trial

import "time"

// Setting keys in the trial_settings table.
const (
	KeySystemEnabled     = "trial_system_enabled"
	KeyClassesPerUser    = "trial_classes_per_user"
	KeyExistingUsers     = "trial_eligible_for_existing_users"
	KeyAutoResetEnabled  = "trial_auto_reset_enabled"
)

// MaxClassesPerUser caps the configurable allowance.
const MaxClassesPerUser = 10

// BulkResetUserID is the sentinel user id for a reset applied to all users.
const BulkResetUserID = 0

// Settings is the decoded trial configuration. It is read fresh on every
// eligibility check; admin writes go through UpdateSettings.
type Settings struct {
	SystemEnabled            bool `json:"trial_system_enabled"`
	ClassesPerUser           int  `json:"trial_classes_per_user"`
	EligibleForExistingUsers bool `json:"trial_eligible_for_existing_users"`
	AutoResetEnabled         bool `json:"trial_auto_reset_enabled"`
}

// Allowance is the effective number of free classes a user may consume.
// Disabled system means zero regardless of the configured count.
func (s Settings) Allowance() int {
	if !s.SystemEnabled {
		return 0
	}
	n := s.ClassesPerUser
	if n < 0 {
		return 0
	}
	if n > MaxClassesPerUser {
		return MaxClassesPerUser
	}
	return n
}

type UpdateSettingsRequest struct {
	SystemEnabled            bool `json:"trial_system_enabled"`
	ClassesPerUser           int  `json:"trial_classes_per_user" binding:"gte=0,lte=10"`
	EligibleForExistingUsers bool `json:"trial_eligible_for_existing_users"`
	AutoResetEnabled         bool `json:"trial_auto_reset_enabled"`
}

type ResetRequest struct {
	// UserID 0 resets every user.
	UserID int    `json:"user_id" binding:"gte=0"`
	Notes  string `json:"notes" binding:"max=500"`
}

// AuditEntry records an admin trial action.
type AuditEntry struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	AdminID   int       `db:"admin_id" json:"admin_id"`
	Action    string    `db:"action" json:"action"`
	OldValue  *int      `db:"old_value" json:"old_value,omitempty"`
	NewValue  int       `db:"new_value" json:"new_value"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
