package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojobook/internal/eligibility"
	"dojobook/internal/email"
	"dojobook/internal/logger"
	"dojobook/internal/metrics"
	"dojobook/internal/period"
	"dojobook/internal/plan"
	"dojobook/internal/user"
)

var ErrPlanIneligible = errors.New("user is not eligible for this plan")

type Service interface {
	Create(ctx context.Context, userID int, req CreateMembershipRequest) (*Membership, *eligibility.Decision, error)
	Approve(ctx context.Context, membershipID int) (*Membership, error)
	Reject(ctx context.Context, membershipID int, reason string) error
	Cancel(ctx context.Context, userID, membershipID int, isAdmin bool) error
	ActiveMembership(ctx context.Context, userID int) (*Membership, error)
	ListForUser(ctx context.Context, userID int) ([]Membership, error)
	ListPending(ctx context.Context) ([]Membership, error)
	ProcessBeginnerUpgrades(ctx context.Context, now time.Time) (int, error)
	PlanEligibility(ctx context.Context, u *user.User, p *plan.Plan) (eligibility.Decision, error)
}

type service struct {
	repo         Repository
	planRepo     plan.Repository
	userRepo     user.Repository
	emailService *email.Service
}

func NewService(repo Repository, planRepo plan.Repository, userRepo user.Repository, emailService *email.Service) Service {
	return &service{
		repo:         repo,
		planRepo:     planRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// PlanEligibility checks the plan's age window and its add-on requirement.
// An unknown date of birth evaluates as age 0 and fails any nonzero
// age_min; that fail-closed reading is intentional.
func (s *service) PlanEligibility(ctx context.Context, u *user.User, p *plan.Plan) (eligibility.Decision, error) {
	age := period.AgeAt(u.DateOfBirth, time.Now())

	if p.AgeMin != nil && age < *p.AgeMin {
		return eligibility.Deny(eligibility.ReasonAgeTooLow,
			fmt.Sprintf("Plan %q requires a minimum age of %d (you are %d)", p.Name, *p.AgeMin, age)), nil
	}
	if p.AgeMax != nil && age > *p.AgeMax {
		return eligibility.Deny(eligibility.ReasonAgeTooHigh,
			fmt.Sprintf("Plan %q allows a maximum age of %d (you are %d)", p.Name, *p.AgeMax, age)), nil
	}

	if p.RequiresExistingMembership {
		_, err := s.repo.GetActiveForUser(ctx, u.ID, time.Now())
		if errors.Is(err, ErrNoActiveMembership) {
			return eligibility.Deny(eligibility.ReasonRequiresExistingMembership,
				fmt.Sprintf("Plan %q is an add-on and requires an active membership", p.Name)), nil
		}
		if err != nil {
			return eligibility.Decision{}, err
		}
	}

	return eligibility.Admit(eligibility.ReasonPlanEligible, fmt.Sprintf("Eligible for plan %q", p.Name)), nil
}

func (s *service) Create(ctx context.Context, userID int, req CreateMembershipRequest) (*Membership, *eligibility.Decision, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, nil, err
	}

	decision, err := s.PlanEligibility(ctx, u, p)
	if err != nil {
		return nil, nil, err
	}
	if !decision.CanBook {
		return nil, &decision, ErrPlanIneligible
	}

	m, err := s.repo.Create(ctx, userID, p, time.Now())
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordMembershipTransition("pending")
	logger.Info("membership requested", "user_id", userID, "plan_id", p.ID, "membership_id", m.ID)

	return m, &decision, nil
}

func (s *service) Approve(ctx context.Context, membershipID int) (*Membership, error) {
	current, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	// The approval window matches what was recorded at request time: plain
	// plans get a month from approval, beginner plans keep their mirrored
	// beginner window.
	now := time.Now()
	end := now.AddDate(0, 1, 0)
	if current.BeginnerEndDate != nil {
		end = *current.BeginnerEndDate
	}

	m, err := s.repo.Approve(ctx, membershipID, now, end)
	if err != nil {
		return nil, err
	}

	metrics.RecordMembershipTransition("active")

	if u, uerr := s.userRepo.FindByID(ctx, m.UserID); uerr == nil {
		s.emailService.SendMembershipApproved(ctx, u.Email, u.Name, m.EndDate)
	}

	return m, nil
}

func (s *service) Reject(ctx context.Context, membershipID int, reason string) error {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}

	if err := s.repo.Reject(ctx, membershipID, reason); err != nil {
		return err
	}

	metrics.RecordMembershipTransition("rejected")

	if u, uerr := s.userRepo.FindByID(ctx, m.UserID); uerr == nil {
		s.emailService.SendMembershipRejected(ctx, u.Email, u.Name, reason)
	}

	return nil
}

func (s *service) Cancel(ctx context.Context, userID, membershipID int, isAdmin bool) error {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}

	if !isAdmin && m.UserID != userID {
		return errors.New("can only cancel own membership")
	}

	if err := s.repo.Cancel(ctx, membershipID); err != nil {
		return err
	}

	metrics.RecordMembershipTransition("cancelled")
	return nil
}

func (s *service) ActiveMembership(ctx context.Context, userID int) (*Membership, error) {
	return s.repo.GetActiveForUser(ctx, userID, time.Now())
}

func (s *service) ListForUser(ctx context.Context, userID int) ([]Membership, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) ListPending(ctx context.Context) ([]Membership, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

// ProcessBeginnerUpgrades expires due beginner memberships and opens a
// pending request on each auto-upgrade plan. Lapsed ordinary memberships
// are expired in the same sweep.
func (s *service) ProcessBeginnerUpgrades(ctx context.Context, now time.Time) (int, error) {
	upgraded, err := s.repo.ProcessBeginnerUpgrades(ctx, now)
	if err != nil {
		return 0, err
	}

	expired, err := s.repo.ExpireLapsed(ctx, now)
	if err != nil {
		return upgraded, err
	}

	if upgraded > 0 || expired > 0 {
		logger.Info("membership sweep completed", "upgraded", upgraded, "expired", expired)
		metrics.RecordBeginnerUpgrades(upgraded)
	}

	return upgraded, nil
}
