package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BanSimplified567/isladelcafe2025-sub000/api/responses"
	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/redis"
)

const IdempotencyHeader = "Idempotency-Key"

// replayWindows lists the routes that require an Idempotency-Key, keyed by
// method and chi route pattern. A retried order must not charge stock twice,
// so order creation keeps its replies for a week.
var replayWindows = map[string]time.Duration{
	"POST /api/v1/orders":             7 * 24 * time.Hour,
	"POST /api/v1/admin/orders/sweep": 24 * time.Hour,
}

type storedReply struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency answers a repeated Idempotency-Key with the first reply. The
// same key with a different body is a conflict. 5xx replies are not kept so
// the caller can retry.
func Idempotency(store redis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := replayWindow(r.Method, routePattern(r))
			if !guarded || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, IdempotencyHeader+" header required"))
				return
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			fingerprint := hex.EncodeToString(sum[:])
			scope := strings.Join([]string{UserIDFromContext(ctx), r.Method, r.URL.Path}, "|")

			raw, found, err := store.Recall(ctx, scope, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup"))
				return
			}
			if found {
				var prior storedReply
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "idempotency record unreadable"))
					return
				}
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				prior.writeTo(w)
				return
			}

			tee := &teeWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(tee, r)
			if tee.status >= http.StatusInternalServerError {
				return
			}
			reply, _ := json.Marshal(storedReply{
				Status:      tee.status,
				ContentType: tee.Header().Get("Content-Type"),
				Body:        tee.buf.Bytes(),
				Fingerprint: fingerprint,
			})
			if err := store.Remember(ctx, scope, key, string(reply), ttl); err != nil && logg != nil {
				logg.Error(ctx, "idempotency record not saved", err)
			}
		})
	}
}

func replayWindow(method, pattern string) (time.Duration, bool) {
	ttl, ok := replayWindows[method+" "+pattern]
	return ttl, ok
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func (s storedReply) writeTo(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

// teeWriter copies the reply so it can be stored after the handler returns.
type teeWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (t *teeWriter) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeWriter) Write(b []byte) (int, error) {
	t.buf.Write(b)
	return t.ResponseWriter.Write(b)
}
