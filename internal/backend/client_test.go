package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/reminder"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.BackendConfig)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.BackendConfig{BaseURL: srv.URL + "/api/", Timeout: 5, Retry: config.RetryConfig{MaxAttempts: 1, InitialIntervalMS: 1, MaxIntervalMS: 2}}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewClient(cfg, nil), srv
}

func TestList_SendsHeadersAndCacheBuster(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/reminders/list" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer opaque-token" {
			t.Errorf("unexpected authorization %q", got)
		}
		if r.URL.Query().Get("_t") != "1748768400000" {
			t.Errorf("expected cache buster, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected request id")
		}
		w.Write([]byte(`[
			{"reminder_id": 1, "category": "manual", "reminder_title": "pay rent", "is_read": false, "reminder_date_start": "2025-06-01", "reminder_time": "09:00:00"},
			{"reminder_id": 2, "category": "budget", "reminder_title": "food", "is_read": true}
		]`))
	}, func(cfg *config.BackendConfig) { cfg.Token = "opaque-token" })
	c.now = func() time.Time { return time.UnixMilli(1748768400000) }

	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(list))
	}
	want := reminder.Reminder{ID: 1, Category: "manual", Title: "pay rent", DateStart: "2025-06-01", Time: "09:00:00"}
	if list[0] != want {
		t.Errorf("expected %+v, got %+v", want, list[0])
	}
	if !list[1].IsRead {
		t.Error("expected second reminder read")
	}
}

func TestCreate_PostsPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reminders/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Has("_t") {
			t.Error("cache buster is only for GET")
		}
		var req reminder.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Title != "pay rent" || req.DateStart != "2025-06-01" || req.Time != "18:00:00" {
			t.Errorf("unexpected payload %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"reminder_id": 5, "category": "manual", "reminder_title": "pay rent", "reminder_date_start": "2025-06-01", "reminder_time": "18:00:00"}`))
	})

	created, err := c.Create(context.Background(), reminder.CreateRequest{Title: "pay rent", Category: "manual", DateStart: "2025-06-01", Time: "18:00:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 5 {
		t.Errorf("expected id 5, got %d", created.ID)
	}
}

func TestCreate_RejectsMissingID(t *testing.T) {
	for _, body := range []string{"", "{}"} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(body))
		})

		created, err := c.Create(context.Background(), reminder.CreateRequest{Title: "pay rent", DateStart: "2025-06-01", Time: "18:00:00"})
		if !errors.Is(err, ErrNoReminderID) || created != nil {
			t.Errorf("body %q: expected ErrNoReminderID, got %v, %v", body, created, err)
		}
	}
}

func TestWriteEndpoints(t *testing.T) {
	var seen []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	for _, err := range []error{c.MarkRead(ctx, 3), c.MarkAllRead(ctx), c.Delete(ctx, 4), c.DeleteAll(ctx)} {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}

	want := []string{
		"PATCH /api/reminders/3/read",
		"PATCH /api/reminders/read-all",
		"DELETE /api/reminders/4",
		"DELETE /api/reminders/delete-all",
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("expected %s, got %s", want[i], seen[i])
		}
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		message string
	}{
		{http.StatusForbidden, ``, "access denied"},
		{http.StatusNotFound, ``, "requested resource does not exist"},
		{http.StatusInternalServerError, `{"detail":"boom"}`, "internal server error"},
		{http.StatusBadRequest, `{"detail":"date is in the past"}`, "date is in the past"},
		{http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","reminder_time"]}]}`, `[{"loc":["body","reminder_time"]}]`},
		{http.StatusConflict, `not json`, "system error"},
	}

	for _, tt := range tests {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		})

		err := c.Delete(context.Background(), 1)
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *Error, got %v", tt.status, err)
		}
		if apiErr.Status != tt.status || apiErr.Message() != tt.message {
			t.Errorf("status %d: expected message %q, got %q", tt.status, tt.message, apiErr.Message())
		}
		if !c.Online() {
			t.Errorf("status %d: an HTTP error still means the server is reachable", tt.status)
		}
	}
}

func TestUnauthorizedDropsSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, func(cfg *config.BackendConfig) { cfg.Token = "opaque-token" })

	dropped := false
	c.OnUnauthorized(func() { dropped = true })

	err := c.MarkAllRead(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if c.Token() != "" || !dropped {
		t.Error("expected token cleared and hook called")
	}
}

func TestExpiredJWTRejectedLocally(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test"))
	if err != nil {
		t.Fatal(err)
	}
	c.SetToken(expired)

	if _, err := c.List(context.Background()); !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("expected no request with an expired token")
	}
	if c.Token() != "" {
		t.Error("expected token cleared")
	}
}

func TestValidJWTIsSent(t *testing.T) {
	valid, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test"))

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+valid {
			t.Error("expected token to be sent")
		}
		w.Write([]byte(`[]`))
	}, func(cfg *config.BackendConfig) { cfg.Token = valid })

	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}, func(cfg *config.BackendConfig) { cfg.Retry.MaxAttempts = 3 })

	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestNoRetryByDefaultOrForClientErrorsOrPost(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}, func(cfg *config.BackendConfig) { cfg.Retry.MaxAttempts = 3 })

	c.Delete(context.Background(), 1)
	c.Create(context.Background(), reminder.CreateRequest{Title: "x"})
	if calls.Load() != 2 {
		t.Errorf("expected one attempt each, got %d", calls.Load())
	}
}

func TestConnectivitySignal(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	var changes []bool
	c.OnConnectivityChange(func(online bool) { changes = append(changes, online) })

	srv.Close()
	_, err := c.List(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if c.Online() {
		t.Error("expected offline")
	}

	// Same state again does not re-fire.
	c.List(context.Background())

	if len(changes) != 1 || changes[0] != false {
		t.Errorf("expected a single offline change, got %v", changes)
	}
}
