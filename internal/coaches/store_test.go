package coaches

import (
	"context"
	"errors"
	"testing"
	"time"

	"coach-match-workers/internal/common/database"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/matching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{
	"id", "name", "specialties", "available_formats", "hourly_rate", "currency",
	"certifications", "languages", "coaching_hours", "average_rating", "total_reviews",
}

func profileRow() *sqlmock.Rows {
	return sqlmock.NewRows(profileColumns).AddRow(
		"coach-1", "Ada Lovelace",
		[]byte(`["Career Growth","Leadership"]`), []byte(`["Online"]`),
		180.0, "USD",
		[]byte(`["ICF PCC"]`), []byte(`["English","French"]`),
		int64(800), 4.9, int64(42),
	)
}

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(db, rdb, time.Minute, logger.NewNoOpLogger()), mock, mr
}

func TestStore_Profile_ReadThrough(t *testing.T) {
	store, mock, mr := newStore(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, specialties").
		WithArgs("coach-1").
		WillReturnRows(profileRow())

	p, err := store.Profile(ctx, "coach-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, []matching.Specialty{matching.SpecialtyCareerGrowth, matching.SpecialtyLeadership}, p.Specialties)
	assert.Equal(t, 180.0, p.Rate())
	assert.Equal(t, 800, p.Hours())
	assert.Equal(t, 42, p.Reviews())
	assert.True(t, mr.Exists(ProfileCacheKey("coach-1")))

	// served from Redis, no second query
	again, err := store.Profile(ctx, "coach-1")
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.NoError(t, mock.ExpectationsWereMet())

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(ProfileCacheKey("coach-1")))
}

func TestStore_Profile_NullColumns(t *testing.T) {
	store, mock, _ := newStore(t)

	mock.ExpectQuery("SELECT id, name, specialties").
		WithArgs("coach-2").
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow(
			"coach-2", "New Coach", nil, nil, nil, nil, nil, nil, nil, nil, nil,
		))

	p, err := store.Profile(context.Background(), "coach-2")
	require.NoError(t, err)
	assert.Nil(t, p.HourlyRate)
	assert.Nil(t, p.AverageRating)
	assert.Nil(t, p.TotalReviews)
	assert.Empty(t, p.Specialties)
	assert.Empty(t, p.Currency)
}

func TestStore_Profile_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		store, mock, _ := newStore(t)
		mock.ExpectQuery("SELECT id, name, specialties").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(profileColumns))

		_, err := store.Profile(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("database failure", func(t *testing.T) {
		store, mock, _ := newStore(t)
		mock.ExpectQuery("SELECT id, name, specialties").
			WithArgs("coach-1").
			WillReturnError(errors.New("connection reset"))

		_, err := store.Profile(context.Background(), "coach-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("cache down falls through to postgres", func(t *testing.T) {
		store, mock, mr := newStore(t)
		mr.Close()
		mock.ExpectQuery("SELECT id, name, specialties").
			WithArgs("coach-1").
			WillReturnRows(profileRow())

		p, err := store.Profile(context.Background(), "coach-1")
		require.NoError(t, err)
		assert.Equal(t, "coach-1", p.ID)
	})
}

func TestStore_Invalidate(t *testing.T) {
	store, _, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, database.SetJSON(ctx, store.redis, ProfileCacheKey("coach-1"), matching.CoachProfile{ID: "coach-1"}, time.Minute))
	require.NoError(t, store.Invalidate(ctx, "coach-1"))
	assert.False(t, mr.Exists(ProfileCacheKey("coach-1")))
}

func TestStore_Contact(t *testing.T) {
	store, mock, _ := newStore(t)

	mock.ExpectQuery("SELECT name, email, phone").
		WithArgs("coach-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email", "phone", "notifications_enabled"}).
			AddRow("Ada Lovelace", "ada@example.com", nil, true))

	c, err := store.Contact(context.Background(), "coach-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.Empty(t, c.Phone)
	assert.True(t, c.NotificationsEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
