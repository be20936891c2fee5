package class

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

var classRowColumns = []string{
	"id", "name", "start_time", "end_time", "capacity", "age_min", "age_max",
	"trial_eligible", "class_type", "requires_membership", "requires_invitation", "created_at",
}

func TestGetByID(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(classRowColumns).
			AddRow(1, "Adults BJJ", now, now.Add(time.Hour), 20, nil, nil, true, "bjj", true, false, now))

	cl, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Adults BJJ", cl.Name)
	require.Nil(t, cl.AgeMin)

	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(classRowColumns))

	cl, err = repo.GetByID(context.Background(), 99)
	require.Nil(t, cl)
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestListUpcoming_ComputesAvailability(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	cols := append(append([]string{}, classRowColumns...), "booked_count")

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN bookings b ON b.class_id = c.id")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "Adults BJJ", now.Add(time.Hour), now.Add(2*time.Hour), 20, nil, nil, true, "bjj", true, false, now, 5).
			AddRow(2, "Kids Judo", now.Add(3*time.Hour), now.Add(4*time.Hour), 10, 6, 12, true, "judo", true, false, now, 10))

	classes, err := repo.ListUpcoming(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, classes, 2)

	require.Equal(t, 5, classes[0].BookedCount)
	require.Equal(t, 15, classes[0].Available)
	require.False(t, classes[0].IsFull)

	require.Equal(t, 0, classes[1].Available)
	require.True(t, classes[1].IsFull)
}
