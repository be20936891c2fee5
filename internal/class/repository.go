package class

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrClassNotFound = errors.New("class not found")

const classColumns = `id, name, start_time, end_time, capacity, age_min, age_max,
		trial_eligible, class_type, requires_membership, requires_invitation, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, req CreateClassRequest, start, end time.Time) (*Class, error) {
	query := `
		INSERT INTO classes (name, start_time, end_time, capacity, age_min, age_max,
			trial_eligible, class_type, requires_membership, requires_invitation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + classColumns

	var cl Class
	err := r.db.QueryRowxContext(ctx, query,
		req.Name, start, end, req.Capacity, req.AgeMin, req.AgeMax,
		req.TrialEligible, req.ClassType, req.RequiresMembership, req.RequiresInvitation,
	).StructScan(&cl)
	if err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *repository) Update(ctx context.Context, id int, req CreateClassRequest, start, end time.Time) (*Class, error) {
	query := `
		UPDATE classes
		SET name = $1, start_time = $2, end_time = $3, capacity = $4, age_min = $5, age_max = $6,
			trial_eligible = $7, class_type = $8, requires_membership = $9, requires_invitation = $10
		WHERE id = $11
		RETURNING ` + classColumns

	var cl Class
	err := r.db.QueryRowxContext(ctx, query,
		req.Name, start, end, req.Capacity, req.AgeMin, req.AgeMax,
		req.TrialEligible, req.ClassType, req.RequiresMembership, req.RequiresInvitation, id,
	).StructScan(&cl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Class, error) {
	query := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`

	var cl Class
	err := r.db.GetContext(ctx, &cl, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	return &cl, nil
}

func (r *repository) ListUpcoming(ctx context.Context, from time.Time) ([]ClassWithAvailability, error) {
	query := `
		SELECT
			c.id, c.name, c.start_time, c.end_time, c.capacity, c.age_min, c.age_max,
			c.trial_eligible, c.class_type, c.requires_membership, c.requires_invitation, c.created_at,
			COUNT(b.id) FILTER (WHERE b.status = 'confirmed') AS booked_count
		FROM classes c
		LEFT JOIN bookings b ON b.class_id = c.id
		WHERE c.start_time >= $1
		GROUP BY c.id
		ORDER BY c.start_time ASC
	`

	rows, err := r.db.QueryxContext(ctx, query, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []ClassWithAvailability
	for rows.Next() {
		var cl ClassWithAvailability
		var booked int
		err := rows.Scan(
			&cl.ID, &cl.Name, &cl.StartTime, &cl.EndTime, &cl.Capacity, &cl.AgeMin, &cl.AgeMax,
			&cl.TrialEligible, &cl.ClassType, &cl.RequiresMembership, &cl.RequiresInvitation, &cl.CreatedAt,
			&booked,
		)
		if err != nil {
			return nil, err
		}
		cl.BookedCount = booked
		cl.Available = cl.Capacity - booked
		if cl.Available < 0 {
			cl.Available = 0
		}
		cl.IsFull = booked >= cl.Capacity
		classes = append(classes, cl)
	}

	return classes, rows.Err()
}
