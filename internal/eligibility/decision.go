// Package eligibility defines the decision value returned by booking and
// membership rule checks. It sits below both packages so the engine and the
// membership ledger can share one vocabulary.
package eligibility

type ReasonCode string

const (
	// Booking engine reasons, in evaluation order.
	ReasonClassNotFound         ReasonCode = "class_not_found"
	ReasonAgeRestriction        ReasonCode = "age_restriction"
	ReasonFreeTrial             ReasonCode = "free_trial"
	ReasonNoMembership          ReasonCode = "no_membership"
	ReasonInvitationRequired    ReasonCode = "invitation_required"
	ReasonPlanClassTypeMismatch ReasonCode = "plan_class_type_mismatch"
	ReasonWeeklyLimitReached    ReasonCode = "weekly_limit_reached"
	ReasonMonthlyLimitReached   ReasonCode = "monthly_limit_reached"
	ReasonMembershipValid       ReasonCode = "membership_valid"
	ReasonUnlimited             ReasonCode = "unlimited"

	// Plan eligibility reasons.
	ReasonAgeTooLow                  ReasonCode = "age_too_low"
	ReasonAgeTooHigh                 ReasonCode = "age_too_high"
	ReasonRequiresExistingMembership ReasonCode = "requires_existing_membership"
	ReasonPlanEligible               ReasonCode = "plan_eligible"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Decision is the admit/deny outcome of a rule evaluation. Denials are
// values, not errors: they are returned to the caller for display and are
// never logged as failures.
type Decision struct {
	CanBook      bool       `json:"can_book"`
	Reason       ReasonCode `json:"reason"`
	Message      string     `json:"message"`
	CurrentCount *int       `json:"current_count,omitempty"`
	Limit        *int       `json:"limit,omitempty"`
	Period       string     `json:"period,omitempty"`
}

func Admit(reason ReasonCode, message string) Decision {
	return Decision{CanBook: true, Reason: reason, Message: message}
}

func Deny(reason ReasonCode, message string) Decision {
	return Decision{CanBook: false, Reason: reason, Message: message}
}

// WithCounters attaches quota usage to a decision.
func (d Decision) WithCounters(current, limit int, period string) Decision {
	d.CurrentCount = &current
	d.Limit = &limit
	d.Period = period
	return d
}
