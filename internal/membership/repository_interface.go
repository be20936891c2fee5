package membership

import (
	"context"
	"time"

	"dojobook/internal/plan"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*Membership, error)
	GetActiveForUser(ctx context.Context, userID int, at time.Time) (*Membership, error)
	Create(ctx context.Context, userID int, p *plan.Plan, now time.Time) (*Membership, error)
	Approve(ctx context.Context, id int, start, end time.Time) (*Membership, error)
	Reject(ctx context.Context, id int, reason string) error
	Cancel(ctx context.Context, id int) error
	ExpireLapsed(ctx context.Context, now time.Time) (int, error)
	ProcessBeginnerUpgrades(ctx context.Context, now time.Time) (int, error)
	ListByStatus(ctx context.Context, status Status) ([]Membership, error)
	ListForUser(ctx context.Context, userID int) ([]Membership, error)
}
