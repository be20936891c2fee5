package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

const planColumns = `id, name, price_cents, currency, weekly_class_limit, monthly_class_limit,
		age_min, age_max, is_beginner_only, beginner_duration_weeks, auto_upgrade_plan_id,
		requires_existing_membership, class_type_restriction, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id = $1`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans ORDER BY price_cents ASC, id ASC`

	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	currency := req.Currency
	if currency == "" {
		currency = "NZD"
	}

	query := `
		INSERT INTO membership_plans (name, price_cents, currency, weekly_class_limit, monthly_class_limit,
			age_min, age_max, is_beginner_only, beginner_duration_weeks, auto_upgrade_plan_id,
			requires_existing_membership, class_type_restriction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + planColumns

	var p Plan
	err := r.db.QueryRowxContext(ctx, query,
		req.Name, req.PriceCents, currency, req.WeeklyClassLimit, req.MonthlyClassLimit,
		req.AgeMin, req.AgeMax, req.IsBeginnerOnly, req.BeginnerDurationWeeks, req.AutoUpgradePlanID,
		req.RequiresExistingMembership, req.ClassTypeRestriction,
	).StructScan(&p)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) Update(ctx context.Context, id int, req CreatePlanRequest) (*Plan, error) {
	currency := req.Currency
	if currency == "" {
		currency = "NZD"
	}

	query := `
		UPDATE membership_plans
		SET name = $1, price_cents = $2, currency = $3, weekly_class_limit = $4, monthly_class_limit = $5,
			age_min = $6, age_max = $7, is_beginner_only = $8, beginner_duration_weeks = $9,
			auto_upgrade_plan_id = $10, requires_existing_membership = $11, class_type_restriction = $12,
			updated_at = NOW()
		WHERE id = $13
		RETURNING ` + planColumns

	var p Plan
	err := r.db.QueryRowxContext(ctx, query,
		req.Name, req.PriceCents, currency, req.WeeklyClassLimit, req.MonthlyClassLimit,
		req.AgeMin, req.AgeMax, req.IsBeginnerOnly, req.BeginnerDurationWeeks, req.AutoUpgradePlanID,
		req.RequiresExistingMembership, req.ClassTypeRestriction, id,
	).StructScan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
