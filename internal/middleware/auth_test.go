package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/database"
	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T, ttl time.Duration) (*store.SessionStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db, nil)
	uid, err := users.InsertUser(context.Background(), &model.User{
		Name: "Ana", LastName: "Ruiz", Email: "ana@example.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return store.NewSessionStore(db, ttl), uid
}

func unreachable(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	})
}

func TestRequireAuthNoToken(t *testing.T) {
	ss, _ := setupAuthMiddlewareDB(t, time.Hour)

	req := httptest.NewRequest("GET", "/api/lists", nil)
	rec := httptest.NewRecorder()
	RequireAuth(ss)(unreachable(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, _ := setupAuthMiddlewareDB(t, time.Hour)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	RequireAuth(ss)(unreachable(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthExpiredSession(t *testing.T) {
	ss, uid := setupAuthMiddlewareDB(t, -time.Minute)
	sess, err := ss.Create(context.Background(), uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	RequireAuth(ss)(unreachable(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, uid := setupAuthMiddlewareDB(t, time.Hour)
	sess, err := ss.Create(context.Background(), uid)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	for _, withCookie := range []bool{true, false} {
		var gotAC auth.AuthContext
		handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := auth.FromContext(r.Context())
			if !ok {
				t.Fatal("expected AuthContext in request context")
			}
			gotAC = ac
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		if withCookie {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
		} else {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("cookie=%v: status = %d, want %d", withCookie, rec.Code, http.StatusOK)
		}
		if gotAC.UserID != uid {
			t.Errorf("cookie=%v: UserID = %d, want %d", withCookie, gotAC.UserID, uid)
		}
		if gotAC.SessionID != sess.ID {
			t.Errorf("cookie=%v: SessionID = %d, want %d", withCookie, gotAC.SessionID, sess.ID)
		}
	}
}
