package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/database"
	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/metrics"
	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := live.NewBroker(logger)
	return New(
		store.NewUserStore(db, broker),
		store.NewListStore(db, broker),
		store.NewItemStore(db, broker),
		auth.BcryptHasher{Cost: bcrypt.MinCost},
		metrics.New(prometheus.NewRegistry()),
		logger,
	)
}

func registerUser(t *testing.T, s *Service, email string) *model.User {
	t.Helper()
	u, err := s.Register(context.Background(), "Ana", "Ruiz", email, "secreto1")
	require.NoError(t, err)
	return u
}

func createList(t *testing.T, s *Service, userID int64, name string) int64 {
	t.Helper()
	id, err := s.CreateList(context.Background(), name, userID)
	require.NoError(t, err)
	return id
}

func addItem(t *testing.T, s *Service, listID int64, name, category string) int64 {
	t.Helper()
	id, err := s.AddItem(context.Background(), NewItem{ListID: listID, Name: name, Category: category})
	require.NoError(t, err)
	return id
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
	var zero T
	return zero
}

// recvUntil reads snapshots until one satisfies match.
func recvUntil[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "channel closed")
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timeout waiting for matching snapshot")
		}
	}
}
