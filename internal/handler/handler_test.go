package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/database"
	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/metrics"
	"github.com/dukerupert/mercando/internal/service"
	"github.com/dukerupert/mercando/internal/store"
	"github.com/dukerupert/mercando/internal/websocket"
)

type testEnv struct {
	svc      *service.Service
	sessions *store.SessionStore
	prefs    *store.PreferenceStore
	hub      *websocket.Hub
	authH    *AuthHandler
	listH    *ListHandler
	itemH    *ItemHandler
	prefH    *PreferenceHandler
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := live.NewBroker(logger)
	svc := service.New(
		store.NewUserStore(db, broker),
		store.NewListStore(db, broker),
		store.NewItemStore(db, broker),
		auth.BcryptHasher{Cost: bcrypt.MinCost},
		metrics.New(prometheus.NewRegistry()),
		logger,
	)
	sessions := store.NewSessionStore(db, time.Hour)
	prefs := store.NewPreferenceStore(db)
	hub := websocket.NewHub(logger)

	return &testEnv{
		svc:      svc,
		sessions: sessions,
		prefs:    prefs,
		hub:      hub,
		authH:    NewAuthHandler(svc, sessions, time.Hour, false, logger),
		listH:    NewListHandler(svc, hub, logger),
		itemH:    NewItemHandler(svc, hub, logger),
		prefH:    NewPreferenceHandler(prefs, logger),
	}
}

// newUser registers a user directly through the service.
func (e *testEnv) newUser(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.svc.Register(context.Background(), "Ana", "Ruiz", email, "secreto1")
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) newList(t *testing.T, uid int64, name string) int64 {
	t.Helper()
	id, err := e.svc.CreateList(context.Background(), name, uid)
	require.NoError(t, err)
	return id
}

// request builds a request authenticated as uid (0 for anonymous) with an
// optional JSON body and id path value.
func request(t *testing.T, method, path string, uid int64, id int64, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if id != 0 {
		req.SetPathValue("id", strconv.FormatInt(id, 10))
	}
	if uid != 0 {
		req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: uid}))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func authCtx(ctx context.Context, uid, sessionID int64) context.Context {
	return auth.WithAuth(ctx, auth.AuthContext{UserID: uid, SessionID: sessionID})
}
