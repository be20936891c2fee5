package booking

import (
	"time"

	"dojobook/internal/eligibility"
)

type Booking struct {
	ID      int    `db:"id" json:"id"`
	ClassID int    `db:"class_id" json:"class_id"`
	UserID  int    `db:"user_id" json:"user_id"`

	// Snapshot of the user at booking time, kept for rosters even if the
	// account is later edited.
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`

	Reference string `db:"reference" json:"reference"`

	// MembershipCycle is the year-month of the class date ("2024-06"),
	// used for monthly quota accounting.
	MembershipCycle string `db:"membership_cycle" json:"membership_cycle"`

	IsFreeTrial bool      `db:"is_free_trial" json:"is_free_trial"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type BookingWithDetails struct {
	Booking
	ClassName  string    `db:"class_name" json:"class_name"`
	ClassStart time.Time `db:"class_start" json:"class_start"`
	ClassEnd   time.Time `db:"class_end" json:"class_end"`
}

type BookResponse struct {
	Booking  *Booking             `json:"booking"`
	Decision eligibility.Decision `json:"decision"`
}

type CancelBookingResponse struct {
	Message string `json:"message" example:"Booking cancelled successfully"`
}
