package plan

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int) (*Plan, error)
	List(ctx context.Context) ([]Plan, error)
	Create(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	Update(ctx context.Context, id int, req CreatePlanRequest) (*Plan, error)
}
