package user

import "time"

type User struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`

	// Trial ledger counters. trial_classes_used only ever grows outside an
	// admin reset; free_trial_used is a legacy compatibility flag that is
	// set once any trial is consumed and never gates new logic.
	TrialClassesUsed   int        `db:"trial_classes_used" json:"trial_classes_used"`
	TrialResetCount    int        `db:"trial_reset_count" json:"trial_reset_count"`
	TrialLastResetDate *time.Time `db:"trial_last_reset_date" json:"trial_last_reset_date,omitempty"`
	FreeTrialUsed      bool       `db:"free_trial_used" json:"free_trial_used"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DateOfBirth string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}
