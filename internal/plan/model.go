package plan

import "time"

// Plan is a membership catalog entry. The booking engine treats the catalog
// as immutable at evaluation time; rows change only through admin CRUD.
type Plan struct {
	ID         int    `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	PriceCents int64  `db:"price_cents" json:"price_cents"`
	Currency   string `db:"currency" json:"currency"`

	// At most one limit is meaningful; weekly wins when both are set.
	WeeklyClassLimit  *int `db:"weekly_class_limit" json:"weekly_class_limit,omitempty"`
	MonthlyClassLimit *int `db:"monthly_class_limit" json:"monthly_class_limit,omitempty"`

	// Inclusive age bounds; nil means unbounded on that side.
	AgeMin *int `db:"age_min" json:"age_min,omitempty"`
	AgeMax *int `db:"age_max" json:"age_max,omitempty"`

	IsBeginnerOnly             bool    `db:"is_beginner_only" json:"is_beginner_only"`
	BeginnerDurationWeeks      *int    `db:"beginner_duration_weeks" json:"beginner_duration_weeks,omitempty"`
	AutoUpgradePlanID          *int    `db:"auto_upgrade_plan_id" json:"auto_upgrade_plan_id,omitempty"`
	RequiresExistingMembership bool    `db:"requires_existing_membership" json:"requires_existing_membership"`
	ClassTypeRestriction       *string `db:"class_type_restriction" json:"class_type_restriction,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreatePlanRequest struct {
	Name                       string  `json:"name" binding:"required,min=2,max=100"`
	PriceCents                 int64   `json:"price_cents" binding:"required,gte=0"`
	Currency                   string  `json:"currency" binding:"omitempty,len=3"`
	WeeklyClassLimit           *int    `json:"weekly_class_limit" binding:"omitempty,gte=1"`
	MonthlyClassLimit          *int    `json:"monthly_class_limit" binding:"omitempty,gte=1"`
	AgeMin                     *int    `json:"age_min" binding:"omitempty,gte=0"`
	AgeMax                     *int    `json:"age_max" binding:"omitempty,gte=0"`
	IsBeginnerOnly             bool    `json:"is_beginner_only"`
	BeginnerDurationWeeks      *int    `json:"beginner_duration_weeks" binding:"omitempty,gte=1"`
	AutoUpgradePlanID          *int    `json:"auto_upgrade_plan_id"`
	RequiresExistingMembership bool    `json:"requires_existing_membership"`
	ClassTypeRestriction       *string `json:"class_type_restriction"`
}
