package plan

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

var planRowColumns = []string{
	"id", "name", "price_cents", "currency", "weekly_class_limit", "monthly_class_limit",
	"age_min", "age_max", "is_beginner_only", "beginner_duration_weeks", "auto_upgrade_plan_id",
	"requires_existing_membership", "class_type_restriction", "created_at", "updated_at",
}

func planRow(id int, name string, priceCents int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(planRowColumns).
		AddRow(id, name, priceCents, "NZD", nil, nil, nil, nil, false, nil, nil, false, nil, now, now)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM membership_plans WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(planRowColumns))

	p, err := repo.GetByID(context.Background(), 99)
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestList_OrderedByPrice(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY price_cents ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows(planRowColumns).
			AddRow(2, "Beginner Special", int64(9900), "NZD", nil, nil, nil, nil, true, 12, 1, false, nil, now, now).
			AddRow(1, "Unlimited Adults", int64(17900), "NZD", nil, nil, nil, nil, false, nil, nil, false, nil, now, now))

	plans, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, "Beginner Special", plans[0].Name)
	require.True(t, plans[0].IsBeginnerOnly)
	require.Equal(t, 12, *plans[0].BeginnerDurationWeeks)
}

func TestCreate_DefaultsCurrency(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO membership_plans")).
		WithArgs("Kids Judo", int64(9900), "NZD", nil, nil, nil, nil, false, nil, nil, false, nil).
		WillReturnRows(planRow(1, "Kids Judo", 9900))

	p, err := repo.Create(context.Background(), CreatePlanRequest{
		Name:       "Kids Judo",
		PriceCents: 9900,
	})
	require.NoError(t, err)
	require.Equal(t, "NZD", p.Currency)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE membership_plans")).
		WillReturnRows(sqlmock.NewRows(planRowColumns))

	p, err := repo.Update(context.Background(), 99, CreatePlanRequest{
		Name:       "Kids Judo",
		PriceCents: 9900,
	})
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrPlanNotFound)
}
