package class

import (
	"strings"
	"time"
)

type Class struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Capacity  int       `db:"capacity" json:"capacity"`

	// Inclusive age bounds; nil means unbounded on that side.
	AgeMin *int `db:"age_min" json:"age_min,omitempty"`
	AgeMax *int `db:"age_max" json:"age_max,omitempty"`

	TrialEligible      bool    `db:"trial_eligible" json:"trial_eligible"`
	ClassType          *string `db:"class_type" json:"class_type,omitempty"`
	RequiresMembership bool    `db:"requires_membership" json:"requires_membership"`
	RequiresInvitation bool    `db:"requires_invitation" json:"requires_invitation"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ClassWithAvailability struct {
	Class
	BookedCount int  `json:"booked_count"`
	Available   int  `json:"available"`
	IsFull      bool `json:"is_full"`
}

// Private/one-on-one session markers, checked on class_type and name.
var exemptMarkers = []string{"private", "1-1", "1:1", "one-on-one"}

// QuotaExempt reports whether this class stays outside weekly limit
// accounting. Private 1:1 sessions are billed separately by convention.
func (c *Class) QuotaExempt() bool {
	candidates := []string{c.Name}
	if c.ClassType != nil {
		candidates = append(candidates, *c.ClassType)
	}
	for _, candidate := range candidates {
		lowered := strings.ToLower(candidate)
		for _, marker := range exemptMarkers {
			if strings.Contains(lowered, marker) {
				return true
			}
		}
	}
	return false
}

type CreateClassRequest struct {
	Name               string  `json:"name" binding:"required,min=2,max=150"`
	StartTime          string  `json:"start_time" binding:"required"`
	EndTime            string  `json:"end_time" binding:"required"`
	Capacity           int     `json:"capacity" binding:"required,min=1"`
	AgeMin             *int    `json:"age_min" binding:"omitempty,gte=0"`
	AgeMax             *int    `json:"age_max" binding:"omitempty,gte=0"`
	TrialEligible      bool    `json:"trial_eligible"`
	ClassType          *string `json:"class_type"`
	RequiresMembership bool    `json:"requires_membership"`
	RequiresInvitation bool    `json:"requires_invitation"`
}
