//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/privacypulse/pulse-server/internal/model"
	repo "github.com/privacypulse/pulse-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "pulse_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/pulse_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func registerProfile(t *testing.T, ctx context.Context, pr *repo.ProfileRepository, handle string) model.Profile {
	t.Helper()

	saved, err := pr.Create(ctx, model.Profile{
		AccountID:   uuid.New(),
		Handle:      handle,
		DisplayName: handle,
	})
	require.NoError(t, err)
	return saved
}

func TestProfileRepository_Integration(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pr := repo.NewProfileRepository(conn)

	t.Run("create and resolve", func(t *testing.T) {
		saved := registerProfile(t, ctx, pr, "mira")
		assert.False(t, saved.CreatedAt.IsZero())

		got, err := pr.GetByAccountID(ctx, saved.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "mira", got.Handle)

		handle, err := pr.ResolveHandle(ctx, saved.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "mira", handle)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		_, err := pr.ResolveHandle(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("handle uniqueness ignores case", func(t *testing.T) {
		registerProfile(t, ctx, pr, "casefold")

		_, err := pr.Create(ctx, model.Profile{AccountID: uuid.New(), Handle: "CaseFold"})
		assert.ErrorIs(t, err, model.ErrHandleTaken)
	})

	t.Run("account links at most one profile", func(t *testing.T) {
		saved := registerProfile(t, ctx, pr, "firstlink")

		_, err := pr.Create(ctx, model.Profile{AccountID: saved.AccountID, Handle: "secondlink"})
		assert.ErrorIs(t, err, model.ErrAccountAlreadyLinked)
	})

	t.Run("search matches substring and excludes one account", func(t *testing.T) {
		wren := registerProfile(t, ctx, pr, "wren")
		registerProfile(t, ctx, pr, "wrench")

		found, err := pr.Search(ctx, model.SearchParams{
			Query:            "wren",
			ExcludeAccountID: wren.AccountID,
			Limit:            10,
		})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "wrench", found[0].Handle)
	})
}

func TestViewEventRepository_Integration(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	vr := repo.NewViewEventRepository(conn)

	t.Run("record assigns id and timestamp", func(t *testing.T) {
		event, err := vr.Record(ctx, uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.NotZero(t, event.ID)
		assert.False(t, event.OccurredAt.IsZero())
	})

	t.Run("self view rejected by the store", func(t *testing.T) {
		accountID := uuid.New()
		_, err := vr.Record(ctx, accountID, accountID)
		assert.ErrorIs(t, err, model.ErrSelfView)
	})

	t.Run("list recent is scoped and newest first", func(t *testing.T) {
		subjectID := uuid.New()
		otherID := uuid.New()

		first, err := vr.Record(ctx, uuid.New(), subjectID)
		require.NoError(t, err)
		second, err := vr.Record(ctx, uuid.New(), subjectID)
		require.NoError(t, err)
		_, err = vr.Record(ctx, uuid.New(), otherID)
		require.NoError(t, err)

		events, err := vr.ListRecent(ctx, subjectID, model.FeedLimitMax)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, second.ID, events[0].ID)
		assert.Equal(t, first.ID, events[1].ID)
		for _, event := range events {
			assert.Equal(t, subjectID, event.SubjectID)
		}
	})

	t.Run("list recent honors the limit", func(t *testing.T) {
		subjectID := uuid.New()
		for i := 0; i < 3; i++ {
			_, err := vr.Record(ctx, uuid.New(), subjectID)
			require.NoError(t, err)
		}

		events, err := vr.ListRecent(ctx, subjectID, 2)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("record raises a notification with the subject id", func(t *testing.T) {
		poolConn, err := conn.Acquire(ctx)
		require.NoError(t, err)
		defer poolConn.Release()

		_, err = poolConn.Exec(ctx, "LISTEN "+repo.NotifyChannel)
		require.NoError(t, err)

		subjectID := uuid.New()
		_, err = vr.Record(ctx, uuid.New(), subjectID)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		notification, err := poolConn.Conn().WaitForNotification(waitCtx)
		require.NoError(t, err)
		assert.Equal(t, repo.NotifyChannel, notification.Channel)
		assert.Equal(t, subjectID.String(), notification.Payload)
	})
}

func TestEraseRepository_Integration(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pr := repo.NewProfileRepository(conn)
	vr := repo.NewViewEventRepository(conn)
	er := repo.NewEraseRepository(conn)

	t.Run("erase removes both event roles and the profile", func(t *testing.T) {
		erased := registerProfile(t, ctx, pr, "leaving")
		witness := registerProfile(t, ctx, pr, "witness")

		_, err := vr.Record(ctx, erased.AccountID, witness.AccountID)
		require.NoError(t, err)
		_, err = vr.Record(ctx, witness.AccountID, erased.AccountID)
		require.NoError(t, err)

		result, err := er.EraseAccount(ctx, erased.AccountID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.EventsDeleted)
		assert.True(t, result.ProfileDeleted)

		_, err = pr.GetByAccountID(ctx, erased.AccountID)
		assert.ErrorIs(t, err, model.ErrNotFound)

		remaining, err := vr.ListByAccount(ctx, erased.AccountID)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		witnessFeed, err := vr.ListRecent(ctx, witness.AccountID, model.FeedLimitMax)
		require.NoError(t, err)
		assert.Empty(t, witnessFeed)
	})

	t.Run("erase without a profile still succeeds", func(t *testing.T) {
		accountID := uuid.New()
		_, err := vr.Record(ctx, accountID, uuid.New())
		require.NoError(t, err)

		result, err := er.EraseAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.EventsDeleted)
		assert.False(t, result.ProfileDeleted)
	})

	t.Run("erase is idempotent", func(t *testing.T) {
		accountID := uuid.New()

		result, err := er.EraseAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Zero(t, result.EventsDeleted)
		assert.False(t, result.ProfileDeleted)
	})
}
