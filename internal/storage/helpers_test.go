package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/trading-academy/internal/migrations"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	t.Cleanup(func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return storage
}

// testFactory создаёт связанные записи для тестов.
type testFactory struct {
	t *testing.T
	s *Storage
}

func (f testFactory) user(role models.Role) models.User {
	id := uuid.NewString()
	u := models.User{
		ID:                 id,
		Email:              id[:8] + "@example.com",
		Username:           "u" + id[:8],
		PasswordHash:       "hash",
		Role:               role,
		SubscriptionStatus: models.EffectiveNone,
	}
	_, err := f.s.CreateUser(context.Background(), u)
	require.NoError(f.t, err)
	return u
}

func (f testFactory) plan(days int) models.SubscriptionPlan {
	id := uuid.NewString()
	p := models.SubscriptionPlan{
		ID:           id,
		Name:         "Pro " + id[:4],
		Slug:         "pro-" + id[:8],
		Price:        4900,
		DurationDays: days,
		Features:     models.Features{"signals", "webinars"},
	}
	_, err := f.s.CreatePlan(context.Background(), p)
	require.NoError(f.t, err)
	return p
}

func (f testFactory) subscription(userID, planID string) models.Subscription {
	sub := models.Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		PlanID: planID,
		Status: models.SubscriptionPending,
	}
	_, err := f.s.CreateSubscription(context.Background(), sub)
	require.NoError(f.t, err)
	return sub
}

func (f testFactory) payment(sub models.Subscription) models.Payment {
	p := models.Payment{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Amount:         4900,
		Method:         models.MethodCrypto,
		ProofKey:       "proofs/" + sub.ID + ".png",
	}
	_, err := f.s.CreatePayment(context.Background(), p)
	require.NoError(f.t, err)
	return p
}
