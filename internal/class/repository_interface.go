package class

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, req CreateClassRequest, start, end time.Time) (*Class, error)
	Update(ctx context.Context, id int, req CreateClassRequest, start, end time.Time) (*Class, error)
	GetByID(ctx context.Context, id int) (*Class, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]ClassWithAvailability, error)
}
