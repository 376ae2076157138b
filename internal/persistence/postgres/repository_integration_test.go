//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/timeflow/internal/domain"
)

func TestRepositoryEnforcesDailyBudget(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepository(t, ctx)

	userID := uuid.NewString()
	sleep := newActivity(userID, "2024-01-01", "Sleep", 480)
	work := newActivity(userID, "2024-01-01", "Work", 960)

	sleep, err := repo.Create(ctx, sleep)
	require.NoError(t, err)
	work, err = repo.Create(ctx, work)
	require.NoError(t, err)

	_, err = repo.Create(ctx, newActivity(userID, "2024-01-01", "Lunch", 1))
	var budgetErr *domain.BudgetError
	require.ErrorAs(t, err, &budgetErr)
	require.Equal(t, 1440, budgetErr.UsedMinutes)

	sleep.DurationMin = 479
	sleep.UpdatedAt = time.Now().UTC()
	_, err = repo.Update(ctx, sleep)
	require.NoError(t, err)

	lunch, err := repo.Create(ctx, newActivity(userID, "2024-01-01", "Lunch", 1))
	require.NoError(t, err)

	listed, err := repo.ListByDate(ctx, userID, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, []int64{sleep.ID, work.ID, lunch.ID}, []int64{listed[0].ID, listed[1].ID, listed[2].ID})
	require.Equal(t, 479, listed[0].DurationMin)
}

func TestRepositorySerializesConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo, pool := setupRepository(t, ctx)

	userID := uuid.NewString()
	const attempts = 40

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, newActivity(userID, "2024-02-02", "Block", 60))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrBudgetExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 24, accepted)
	require.Equal(t, attempts-24, rejected)

	var total int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM activities WHERE user_id = $1`, userID).Scan(&total))
	require.Equal(t, domain.DailyBudgetMinutes, total)
}

func TestRepositoryIsolatesUsersAndRecordsOutbox(t *testing.T) {
	ctx := context.Background()
	repo, pool := setupRepository(t, ctx)

	owner := uuid.NewString()
	intruder := uuid.NewString()

	created, err := repo.Create(ctx, newActivity(owner, "2024-03-03", "Study", 90))
	require.NoError(t, err)

	foreign, err := repo.ListByDate(ctx, intruder, "2024-03-03")
	require.NoError(t, err)
	require.Empty(t, foreign)

	hijack := created
	hijack.UserID = intruder
	_, err = repo.Update(ctx, hijack)
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	deleted, err := repo.Delete(ctx, created.ID, intruder)
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID, owner)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID, owner)
	require.NoError(t, err)
	require.False(t, deleted)

	var eventTypes []string
	rows, err := pool.Query(ctx, `SELECT event_type FROM outbox WHERE user_id = $1 ORDER BY event_id`, owner)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var eventType string
		require.NoError(t, rows.Scan(&eventType))
		eventTypes = append(eventTypes, eventType)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"activity.created", "activity.deleted"}, eventTypes)
}

func TestRepositoryUpdateMovesActivityToAnotherDay(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepository(t, ctx)

	userID := uuid.NewString()
	_, err := repo.Create(ctx, newActivity(userID, "2024-04-02", "Work", 1400))
	require.NoError(t, err)
	moving, err := repo.Create(ctx, newActivity(userID, "2024-04-01", "Gym", 60))
	require.NoError(t, err)

	moving.Date = "2024-04-02"
	_, err = repo.Update(ctx, moving)
	require.ErrorIs(t, err, domain.ErrBudgetExceeded)

	unchanged, err := repo.ListByDate(ctx, userID, "2024-04-01")
	require.NoError(t, err)
	require.Len(t, unchanged, 1)

	moving.DurationMin = 40
	_, err = repo.Update(ctx, moving)
	require.NoError(t, err)

	target, err := repo.ListByDate(ctx, userID, "2024-04-02")
	require.NoError(t, err)
	require.Len(t, target, 2)
}

func newActivity(userID, date, name string, minutes int) domain.Activity {
	now := time.Now().UTC()
	return domain.Activity{
		UserID:      userID,
		Date:        date,
		Name:        name,
		DurationMin: minutes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func setupRepository(t *testing.T, ctx context.Context) (*Repository, *pgxpool.Pool) {
	t.Helper()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("timeflow"),
		postgrescontainer.WithUsername("timeflow"),
		postgrescontainer.WithPassword("timeflow"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, Migrate(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRepository(pool), pool
}
