package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
)

type memoryStore struct {
	replies map[string]string
	ttls    map[string]time.Duration
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{replies: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.replies[scope+"#"+key]
	return v, ok, nil
}

func (m *memoryStore) Remember(_ context.Context, scope, key, payload string, ttl time.Duration) error {
	if _, ok := m.replies[scope+"#"+key]; !ok {
		m.replies[scope+"#"+key] = payload
		m.ttls[scope+"#"+key] = ttl
	}
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func orderRequest(body, key string) *http.Request {
	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestReplayWindow(t *testing.T) {
	ttl, ok := replayWindow(http.MethodPost, "/api/v1/orders")
	require.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, ttl)

	ttl, ok = replayWindow(http.MethodPost, "/api/v1/admin/orders/sweep")
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, ttl)

	_, ok = replayWindow(http.MethodGet, "/api/v1/orders/{orderId}")
	assert.False(t, ok)
	_, ok = replayWindow(http.MethodPatch, "/api/v1/admin/orders/{orderId}/status")
	assert.False(t, ok)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	called := false
	handler := Idempotency(newMemoryStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(`{"orderNumber":"IDC-1"}`, ""))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.False(t, called)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"orderNumber":"IDC-1"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"orderId":"abc"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest(`{"orderNumber":"IDC-1"}`, "k1"))
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, orderRequest(`{"orderNumber":"IDC-1"}`, "k1"))
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, `{"data":{"orderId":"abc"}}`, strings.TrimSpace(replay.Body.String()))
	assert.Equal(t, 1, calls)

	require.Len(t, store.ttls, 1)
	for _, ttl := range store.ttls {
		assert.Equal(t, 7*24*time.Hour, ttl)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	handler := Idempotency(newMemoryStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), orderRequest(`{"orderNumber":"IDC-1"}`, "k2"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(`{"orderNumber":"IDC-2"}`, "k2"))
	require.Equal(t, http.StatusConflict, resp.Code)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest(`{}`, "k3"))
	assert.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Empty(t, store.replies)

	retry := httptest.NewRecorder()
	handler.ServeHTTP(retry, orderRequest(`{}`, "k3"))
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyScopesKeysByUser(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	guest := orderRequest(`{}`, "shared")
	handler.ServeHTTP(httptest.NewRecorder(), guest)

	member := orderRequest(`{}`, "shared")
	member = member.WithContext(WithActor(member.Context(), "user-1", "customer"))
	handler.ServeHTTP(httptest.NewRecorder(), member)

	assert.Equal(t, 2, calls)
	assert.Len(t, store.replies, 2)
}

func TestIdempotencyStoreOutageIsDependencyError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	called := false
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(`{}`, "k4"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.False(t, called)
}

func TestIdempotencyPassesUnguardedRoutes(t *testing.T) {
	store := newMemoryStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := requestWithPattern(http.MethodPatch, "/api/v1/admin/orders/x/status", "/api/v1/admin/orders/{orderId}/status", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, store.replies)
}
