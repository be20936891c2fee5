package booking

import (
	"context"
	"time"

	"dojobook/internal/class"
	"dojobook/internal/user"
)

type Repository interface {
	// Quota counters. WeeklyUsed excludes quota-exempt classes; MonthlyUsed
	// deliberately does not.
	WeeklyUsed(ctx context.Context, userID int, weekStart time.Time) (int, error)
	MonthlyUsed(ctx context.Context, userID int, cycle string) (int, error)

	// Commit atomically records the booking, re-checking class capacity and,
	// for free-trial bookings, the trial counter under a row lock.
	Commit(ctx context.Context, u *user.User, cl *class.Class, isFreeTrial bool, trialAllowance int) (*Booking, error)

	GetByID(ctx context.Context, id int) (*Booking, error)
	Cancel(ctx context.Context, id int) error
	ListForUser(ctx context.Context, userID int) ([]BookingWithDetails, error)
	ListForClass(ctx context.Context, classID int) ([]BookingWithDetails, error)
}
