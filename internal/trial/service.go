package trial

import (
	"context"

	"dojobook/internal/metrics"
	"dojobook/internal/user"
)

// Service is the trial ledger: it answers how many free classes a user has
// left and handles admin settings and resets. Consumption itself happens
// inside the booking commit transaction, not here.
type Service interface {
	Settings(ctx context.Context) (Settings, error)
	Allowance(ctx context.Context) (int, error)
	Remaining(ctx context.Context, u *user.User) (int, error)
	HasAvailable(ctx context.Context, u *user.User) (bool, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest, adminID int) (Settings, error)
	ResetTrial(ctx context.Context, userID, adminID int, notes string) error
	Audit(ctx context.Context, limit, offset int) ([]AuditEntry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Settings(ctx context.Context) (Settings, error) {
	return s.repo.GetSettings(ctx)
}

func (s *service) Allowance(ctx context.Context) (int, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	return settings.Allowance(), nil
}

func (s *service) Remaining(ctx context.Context, u *user.User) (int, error) {
	allowance, err := s.Allowance(ctx)
	if err != nil {
		return 0, err
	}
	remaining := allowance - u.TrialClassesUsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *service) HasAvailable(ctx context.Context, u *user.User) (bool, error) {
	remaining, err := s.Remaining(ctx, u)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

func (s *service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest, adminID int) (Settings, error) {
	settings := Settings{
		SystemEnabled:            req.SystemEnabled,
		ClassesPerUser:           req.ClassesPerUser,
		EligibleForExistingUsers: req.EligibleForExistingUsers,
		AutoResetEnabled:         req.AutoResetEnabled,
	}

	if err := s.repo.UpdateSettings(ctx, settings, adminID); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s *service) ResetTrial(ctx context.Context, userID, adminID int, notes string) error {
	if err := s.repo.ResetTrial(ctx, userID, adminID, notes); err != nil {
		return err
	}
	metrics.RecordTrialReset(userID == BulkResetUserID)
	return nil
}

func (s *service) Audit(ctx context.Context, limit, offset int) ([]AuditEntry, error) {
	return s.repo.ListAudit(ctx, limit, offset)
}
