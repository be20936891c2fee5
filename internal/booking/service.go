package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojobook/internal/class"
	"dojobook/internal/eligibility"
	"dojobook/internal/email"
	"dojobook/internal/logger"
	"dojobook/internal/membership"
	"dojobook/internal/metrics"
	"dojobook/internal/period"
	"dojobook/internal/plan"
	"dojobook/internal/trial"
	"dojobook/internal/user"
)

var ErrCommitFailed = errors.New("booking commit failed")

type Service interface {
	// CanBook evaluates the eligibility rules without side effects.
	CanBook(ctx context.Context, userID, classID int) (eligibility.Decision, error)
	// Book evaluates eligibility and, on admit, commits the booking. A
	// denial comes back as a Decision with a nil Booking, not an error.
	Book(ctx context.Context, userID, classID int) (*Booking, eligibility.Decision, error)
	Cancel(ctx context.Context, userID, bookingID int, isAdmin bool) error
	ListMyBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	ListForClass(ctx context.Context, classID int) ([]BookingWithDetails, error)
}

type service struct {
	repo           Repository
	classRepo      class.Repository
	userRepo       user.Repository
	planRepo       plan.Repository
	membershipRepo membership.Repository
	trialService   trial.Service
	emailService   *email.Service
}

func NewService(
	repo Repository,
	classRepo class.Repository,
	userRepo user.Repository,
	planRepo plan.Repository,
	membershipRepo membership.Repository,
	trialService trial.Service,
	emailService *email.Service,
) Service {
	return &service{
		repo:           repo,
		classRepo:      classRepo,
		userRepo:       userRepo,
		planRepo:       planRepo,
		membershipRepo: membershipRepo,
		trialService:   trialService,
		emailService:   emailService,
	}
}

// evalContext carries everything the rules need, loaded once per request.
type evalContext struct {
	user     *user.User
	class    *class.Class
	settings trial.Settings
	// membership/plan are nil when the user has no active membership.
	membership *membership.Membership
	plan       *plan.Plan
	// hasHistory marks users with any prior membership record; they only
	// qualify for trials when the existing-users setting allows it.
	hasHistory bool
}

// rule returns a decision to stop the chain, or nil to pass to the next
// rule. Rules are pure over the evalContext except the quota rule, which
// reads the counters.
type rule func(ctx context.Context, ec *evalContext) (*eligibility.Decision, error)

func (s *service) rules() []rule {
	return []rule{
		s.ruleAgeRestriction,
		s.ruleFreeTrial,
		s.ruleMembershipRequired,
		s.ruleInvitationRequired,
		s.rulePlanClassType,
		s.ruleQuota,
	}
}

func (s *service) CanBook(ctx context.Context, userID, classID int) (eligibility.Decision, error) {
	decision, _, err := s.evaluate(ctx, userID, classID)
	return decision, err
}

func (s *service) evaluate(ctx context.Context, userID, classID int) (eligibility.Decision, *evalContext, error) {
	cl, err := s.classRepo.GetByID(ctx, classID)
	if errors.Is(err, class.ErrClassNotFound) {
		return eligibility.Deny(eligibility.ReasonClassNotFound, "Class not found"), nil, nil
	}
	if err != nil {
		return eligibility.Decision{}, nil, err
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return eligibility.Decision{}, nil, err
	}

	settings, err := s.trialService.Settings(ctx)
	if err != nil {
		return eligibility.Decision{}, nil, err
	}

	ec := &evalContext{user: u, class: cl, settings: settings}

	history, err := s.membershipRepo.ListForUser(ctx, userID)
	if err != nil {
		return eligibility.Decision{}, nil, err
	}
	ec.hasHistory = len(history) > 0

	active, err := s.membershipRepo.GetActiveForUser(ctx, userID, time.Now())
	if err != nil && !errors.Is(err, membership.ErrNoActiveMembership) {
		return eligibility.Decision{}, nil, err
	}
	if active != nil {
		p, err := s.planRepo.GetByID(ctx, active.PlanID)
		if err != nil {
			return eligibility.Decision{}, nil, err
		}
		ec.membership = active
		ec.plan = p
	}

	for _, r := range s.rules() {
		decision, err := r(ctx, ec)
		if err != nil {
			return eligibility.Decision{}, nil, err
		}
		if decision != nil {
			return *decision, ec, nil
		}
	}

	// The quota rule always decides; reaching here is a bug.
	return eligibility.Decision{}, nil, errors.New("eligibility rules reached no decision")
}

func (s *service) ruleAgeRestriction(_ context.Context, ec *evalContext) (*eligibility.Decision, error) {
	if ec.class.AgeMin == nil && ec.class.AgeMax == nil {
		return nil, nil
	}

	age := period.AgeAt(ec.user.DateOfBirth, time.Now())

	if ec.class.AgeMin != nil && age < *ec.class.AgeMin {
		d := eligibility.Deny(eligibility.ReasonAgeRestriction,
			fmt.Sprintf("This class requires a minimum age of %d (you are %d)", *ec.class.AgeMin, age))
		return &d, nil
	}
	if ec.class.AgeMax != nil && age > *ec.class.AgeMax {
		d := eligibility.Deny(eligibility.ReasonAgeRestriction,
			fmt.Sprintf("This class allows a maximum age of %d (you are %d)", *ec.class.AgeMax, age))
		return &d, nil
	}

	return nil, nil
}

// ruleFreeTrial runs before any membership requirement: a trial-eligible
// class is bookable while trial remains even without a membership.
func (s *service) ruleFreeTrial(_ context.Context, ec *evalContext) (*eligibility.Decision, error) {
	if !ec.class.TrialEligible {
		return nil, nil
	}

	allowance := ec.settings.Allowance()
	if allowance == 0 {
		return nil, nil
	}

	if ec.hasHistory && !ec.settings.EligibleForExistingUsers {
		return nil, nil
	}

	remaining := allowance - ec.user.TrialClassesUsed
	if remaining <= 0 {
		return nil, nil
	}

	d := eligibility.Admit(eligibility.ReasonFreeTrial,
		fmt.Sprintf("Free trial class available (%d remaining)", remaining))
	return &d, nil
}

// ruleMembershipRequired treats a membership as implicitly required once the
// trial path no longer applies, regardless of the per-class flag. That
// matches how the studio's catalog is actually used.
func (s *service) ruleMembershipRequired(_ context.Context, ec *evalContext) (*eligibility.Decision, error) {
	if ec.membership == nil {
		d := eligibility.Deny(eligibility.ReasonNoMembership,
			"An active membership is required to book this class")
		return &d, nil
	}
	return nil, nil
}

// ruleInvitationRequired is an unconditional deny: no redemption flow
// exists yet, so invitation-only classes cannot be booked online.
func (s *service) ruleInvitationRequired(_ context.Context, ec *evalContext) (*eligibility.Decision, error) {
	if ec.class.RequiresInvitation {
		d := eligibility.Deny(eligibility.ReasonInvitationRequired,
			"This class is by invitation only")
		return &d, nil
	}
	return nil, nil
}

func (s *service) rulePlanClassType(_ context.Context, ec *evalContext) (*eligibility.Decision, error) {
	if ec.plan == nil || ec.plan.ClassTypeRestriction == nil {
		return nil, nil
	}

	if ec.class.ClassType == nil || *ec.class.ClassType != *ec.plan.ClassTypeRestriction {
		d := eligibility.Deny(eligibility.ReasonPlanClassTypeMismatch,
			fmt.Sprintf("Your plan %q only covers %s classes", ec.plan.Name, *ec.plan.ClassTypeRestriction))
		return &d, nil
	}

	return nil, nil
}

// ruleQuota enforces the plan limit, weekly over monthly, against the
// bucket containing the class's date rather than the current one.
func (s *service) ruleQuota(ctx context.Context, ec *evalContext) (*eligibility.Decision, error) {
	p := ec.plan

	if p.WeeklyClassLimit != nil && !ec.class.QuotaExempt() {
		weekStart := period.WeekStart(ec.class.StartTime)
		used, err := s.repo.WeeklyUsed(ctx, ec.user.ID, weekStart)
		if err != nil {
			return nil, err
		}

		limit := *p.WeeklyClassLimit
		if used >= limit {
			d := eligibility.Deny(eligibility.ReasonWeeklyLimitReached,
				fmt.Sprintf("Weekly class limit reached (%d/%d for week of %s)",
					used, limit, weekStart.Format("2006-01-02"))).
				WithCounters(used, limit, eligibility.PeriodWeek)
			return &d, nil
		}

		d := eligibility.Admit(eligibility.ReasonMembershipValid,
			fmt.Sprintf("Within weekly limit (%d/%d for week of %s)",
				used, limit, weekStart.Format("2006-01-02"))).
			WithCounters(used, limit, eligibility.PeriodWeek)
		return &d, nil
	}

	if p.MonthlyClassLimit != nil {
		cycle := period.Cycle(ec.class.StartTime)
		used, err := s.repo.MonthlyUsed(ctx, ec.user.ID, cycle)
		if err != nil {
			return nil, err
		}

		limit := *p.MonthlyClassLimit
		if used >= limit {
			d := eligibility.Deny(eligibility.ReasonMonthlyLimitReached,
				fmt.Sprintf("Monthly class limit reached (%d/%d for %s)", used, limit, cycle)).
				WithCounters(used, limit, eligibility.PeriodMonth)
			return &d, nil
		}

		d := eligibility.Admit(eligibility.ReasonMembershipValid,
			fmt.Sprintf("Within monthly limit (%d/%d for %s)", used, limit, cycle)).
			WithCounters(used, limit, eligibility.PeriodMonth)
		return &d, nil
	}

	d := eligibility.Admit(eligibility.ReasonUnlimited, "Your plan has no class limit")
	return &d, nil
}

func (s *service) Book(ctx context.Context, userID, classID int) (*Booking, eligibility.Decision, error) {
	decision, ec, err := s.evaluate(ctx, userID, classID)
	if err != nil {
		return nil, eligibility.Decision{}, err
	}
	if !decision.CanBook {
		metrics.RecordBookingDenial(string(decision.Reason))
		return nil, decision, nil
	}

	isFreeTrial := decision.Reason == eligibility.ReasonFreeTrial
	b, err := s.repo.Commit(ctx, ec.user, ec.class, isFreeTrial, ec.settings.Allowance())
	if err != nil {
		switch {
		case errors.Is(err, ErrTrialExhausted), errors.Is(err, ErrClassFull), errors.Is(err, ErrAlreadyBooked):
			return nil, decision, err
		default:
			logger.Error("booking commit failed", "user_id", userID, "class_id", classID, "error", err)
			return nil, decision, fmt.Errorf("%w: %v", ErrCommitFailed, err)
		}
	}

	metrics.RecordBooking(string(decision.Reason))
	logger.Info("booking committed",
		"booking_id", b.ID, "user_id", userID, "class_id", classID,
		"reason", string(decision.Reason), "free_trial", isFreeTrial,
	)

	s.emailService.SendBookingConfirmation(ctx, ec.user.Email, ec.user.Name, ec.class.Name, ec.class.StartTime, isFreeTrial)

	return b, decision, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID int, isAdmin bool) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return ErrBookingNotFound
	}

	if !isAdmin && b.UserID != userID {
		return errors.New("can only cancel own bookings")
	}

	err = s.repo.Cancel(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFoundOrAlreadyCancelled) {
			return ErrBookingNotFound
		}
		return err
	}

	metrics.RecordBookingCancellation()
	return nil
}

func (s *service) ListMyBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) ListForClass(ctx context.Context, classID int) ([]BookingWithDetails, error) {
	return s.repo.ListForClass(ctx, classID)
}
