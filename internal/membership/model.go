package membership

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Membership is a user's subscription instance. At most one row per user may
// be pending or active at a time; the repository enforces that inside the
// creation transaction.
type Membership struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	PlanID    int       `db:"plan_id" json:"plan_id"`
	Status    Status    `db:"status" json:"status"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`

	// Beginner plans mirror these from the plan at creation time so the
	// upgrade sweep does not depend on later catalog edits.
	BeginnerStartDate *time.Time `db:"beginner_start_date" json:"beginner_start_date,omitempty"`
	BeginnerEndDate   *time.Time `db:"beginner_end_date" json:"beginner_end_date,omitempty"`
	AutoUpgradePlanID *int       `db:"auto_upgrade_plan_id" json:"auto_upgrade_plan_id,omitempty"`

	RejectionReason *string   `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateMembershipRequest struct {
	PlanID         int    `json:"plan_id" binding:"required,gte=1"`
	InvitationCode string `json:"invitation_code"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
