//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"eventreg/internal/domain"
	"eventreg/internal/repository/postgres"
	"eventreg/internal/services"
)

// Run with: EVENTREG_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
const testDatabaseURLEnv = "EVENTREG_TEST_DATABASE_URL"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv(testDatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}
	db, err := postgres.Open(context.Background(), dsn, postgres.PoolConfig{MaxOpenConns: 20, MaxIdleConns: 20})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, postgres.Migrate(db, postgres.MigrateUp))
	return db
}

// createUsers inserts n users and removes them (and everything they own) on cleanup.
func createUsers(t *testing.T, db *sql.DB, n int) []string {
	t.Helper()
	ctx := context.Background()
	users := postgres.NewUserRepository(db)
	ids := make([]string, 0, n)
	now := time.Now().UTC()
	for range n {
		u := domain.NewUser(uuid.NewString()+"@integration.test", "load", "hash", "salt", now, now)
		require.NoError(t, users.Create(ctx, u))
		ids = append(ids, u.ID)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM users WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	})
	return ids
}

func createEvent(t *testing.T, db *sql.DB, owner string, capacity int) *domain.Event {
	t.Helper()
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	e := domain.NewEvent("Integration", "", "", start, start.Add(time.Hour), capacity, owner)
	require.NoError(t, postgres.NewEventRepository(db).Create(context.Background(), e))
	return e
}

func newService(db *sql.DB) domain.RegistrationService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewRegistrationService(
		postgres.NewEventRepository(db),
		postgres.NewRegistrationRepository(db),
		postgres.NewEventLocker(db),
		logger,
		10*time.Second,
	)
}

func TestIntegration_ConcurrentRegistrationsRespectCapacity(t *testing.T) {
	db := openTestDB(t)
	const capacity, attendees = 5, 40

	users := createUsers(t, db, attendees+1)
	event := createEvent(t, db, users[0], capacity)
	svc := newService(db)

	var ok, full atomic.Int32
	var g errgroup.Group
	for _, id := range users[1:] {
		g.Go(func() error {
			_, err := svc.Register(context.Background(), domain.Principal{UserID: id}, event.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrEventFull):
				full.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, capacity, ok.Load())
	assert.EqualValues(t, attendees-capacity, full.Load())

	n, err := postgres.NewEventRepository(db).CountRegistrations(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, n)

	left, err := svc.SpotsLeft(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestIntegration_ConcurrentDuplicatesCreateOneRow(t *testing.T) {
	db := openTestDB(t)
	users := createUsers(t, db, 2)
	event := createEvent(t, db, users[0], 10)
	svc := newService(db)
	alice := domain.Principal{UserID: users[1]}

	var ok, dup atomic.Int32
	var g errgroup.Group
	for range 20 {
		g.Go(func() error {
			_, err := svc.Register(context.Background(), alice, event.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrAlreadyRegistered):
				dup.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 19, dup.Load())

	n, err := postgres.NewEventRepository(db).CountRegistrations(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Cancel(context.Background(), alice, event.ID))
	assert.ErrorIs(t, svc.Cancel(context.Background(), alice, event.ID), domain.ErrNotRegistered)
}
