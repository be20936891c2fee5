package trial

import "context"

type Repository interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, s Settings, adminID int) error
	ResetTrial(ctx context.Context, userID, adminID int, notes string) error
	ListAudit(ctx context.Context, limit, offset int) ([]AuditEntry, error)
}
