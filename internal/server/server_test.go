package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/database"
	"github.com/dukerupert/mercando/internal/metrics"
	"github.com/dukerupert/mercando/internal/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, auth.BcryptHasher{Cost: bcrypt.MinCost}, metrics.New(reg), Options{
		SessionTTL:      time.Hour,
		AuthRateLimit:   5,
		AuthRateWindow:  time.Minute,
		MetricsGatherer: reg,
	}, logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func register(t *testing.T, ts *httptest.Server, c *http.Client, email string) {
	t.Helper()
	resp := do(t, c, "POST", ts.URL+"/api/auth/register", map[string]string{
		"name": "Ana", "last_name": "Ruiz", "email": email, "password": "secreto1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.DefaultClient, "GET", ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody[healthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Zero(t, health.WebSocketClients)
	assert.Zero(t, health.LiveSubscribers)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/lists", "/api/trash", "/api/me", "/api/preferences", "/ws"} {
		resp := do(t, http.DefaultClient, "GET", ts.URL+path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestCategoriesArePublic(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.DefaultClient, "GET", ts.URL+"/api/categories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]string](t, resp), 11)
}

func TestShoppingFlow(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	register(t, ts, c, "ana@example.com")

	resp := do(t, c, "POST", ts.URL+"/api/lists", map[string]string{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[struct {
		List struct {
			ID int64 `json:"id"`
		} `json:"list"`
	}](t, resp)
	listURL := ts.URL + "/api/lists/" + strconv.FormatInt(created.List.ID, 10)

	resp = do(t, c, "POST", listURL+"/items", map[string]string{"name": "Milk", "category": "Lácteos"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decodeBody[struct {
		Item struct {
			ID int64 `json:"id"`
		} `json:"item"`
	}](t, resp)

	resp = do(t, c, "POST", ts.URL+"/api/items/"+strconv.FormatInt(item.Item.ID, 10)+"/purchased", map[string]bool{"purchased": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, "GET", listURL+"/stats", nil)
	stats := decodeBody[map[string]int](t, resp)
	assert.Equal(t, 100, stats["progress_percent"])

	resp = do(t, c, "DELETE", listURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, "GET", ts.URL+"/api/trash", nil)
	assert.Len(t, decodeBody[[]map[string]any](t, resp), 1)
	resp = do(t, c, "GET", ts.URL+"/api/lists", nil)
	assert.Len(t, decodeBody[[]map[string]any](t, resp), 0)

	resp = do(t, c, "POST", ts.URL+"/api/trash/"+strconv.FormatInt(created.List.ID, 10)+"/restore", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, c, "GET", listURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decodeBody[struct {
		Items []struct {
			Name      string `json:"name"`
			Purchased bool   `json:"purchased"`
		} `json:"items"`
	}](t, resp)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Milk", detail.Items[0].Name)
	assert.True(t, detail.Items[0].Purchased)

	resp = do(t, c, "POST", ts.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, c, "GET", ts.URL+"/api/lists", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]string{"email": "nadie@example.com", "password": "secreto1"}

	for i := 0; i < 5; i++ {
		resp := do(t, http.DefaultClient, "POST", ts.URL+"/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp := do(t, http.DefaultClient, "POST", ts.URL+"/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestAuthRateLimitKeysOnPeerAddress(t *testing.T) {
	ts := newTestServer(t)
	body, err := json.Marshal(map[string]string{"email": "nadie@example.com", "password": "secreto1"})
	require.NoError(t, err)

	statuses := make([]int, 0, 6)
	for i := range 6 {
		req, err := http.NewRequest("POST", ts.URL+"/api/auth/login", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, http.StatusTooManyRequests, statuses[5], "statuses: %v", statuses)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	register(t, ts, c, "ana@example.com")

	resp := do(t, http.DefaultClient, "GET", ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "mercando_users_registered_total 1")
	assert.Contains(t, string(b), "mercando_http_requests_total")
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	register(t, ts, c, "ana@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, ck := range c.Jar.Cookies(u) {
		header.Add("Cookie", ck.String())
	}
	conn, _, err := ws.Dial(ctx, wsURL, &ws.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer conn.CloseNow()

	type frame struct {
		Type    string            `json:"type"`
		Payload []json.RawMessage `json:"payload"`
	}
	readUntil := func(match func(frame) bool) frame {
		for {
			_, data, err := conn.Read(ctx)
			require.NoError(t, err)
			var f frame
			if json.Unmarshal(data, &f) == nil && match(f) {
				return f
			}
		}
	}

	readUntil(func(f frame) bool { return f.Type == "lists_snapshot" && len(f.Payload) == 0 })

	health := decodeBody[healthResponse](t, do(t, http.DefaultClient, "GET", ts.URL+"/health", nil))
	assert.Equal(t, 1, health.WebSocketClients)
	assert.GreaterOrEqual(t, health.LiveSubscribers, 2)

	resp := do(t, c, "POST", ts.URL+"/api/lists", map[string]string{"name": "Mercado"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	readUntil(func(f frame) bool { return f.Type == "lists_snapshot" && len(f.Payload) == 1 })
	conn.Close(ws.StatusNormalClosure, "")
}
