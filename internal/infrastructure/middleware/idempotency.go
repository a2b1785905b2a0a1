// internal/infrastructure/middleware/idempotency.go
package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/cache"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
)

// IdempotencyKeyHeader carries the client-supplied token identifying a
// logical request attempt.
const IdempotencyKeyHeader = "X-Idempotency-Key"

// IdempotencyMiddleware deduplicates retried mutating requests.
//
// Requests without a key, and non-mutating requests, pass through untouched.
// A key with a cached record short-circuits to the original response; a key
// without one runs the downstream handler against a buffered writer and, if
// the outcome is success-class, caches status and body under the key before
// the response reaches the client. Non-2xx outcomes are never cached, so a
// genuinely failed attempt stays retryable under the same key.
//
// Two concurrent requests with the same fresh key can both reach the
// downstream handler; the store's unique insert picks one winner and the
// loser's write is discarded. The loser still returns its own response.
func IdempotencyMiddleware(repo repository.IdempotencyRepository, replay *cache.ReplayCache, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if key == "" || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := GetRequestID(r.Context())

			record := replay.Get(key)
			if record == nil {
				stored, err := repo.Find(r.Context(), key)
				switch {
				case err == nil:
					record = stored
					replay.Put(stored)
				case errors.Is(err, repository.ErrNotFound):
					// first attempt, fall through
				default:
					log.Error("Idempotency lookup failed", map[string]interface{}{
						"request_id": requestID,
						"key":        key,
						"error":      err.Error(),
					})
					// Running the handler without dedup could double-charge;
					// refuse instead.
					writeStoreUnavailable(w)
					return
				}
			}

			if record != nil {
				log.Info("Replaying cached response", map[string]interface{}{
					"request_id": requestID,
					"key":        key,
					"status":     record.ResponseCode,
				})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(record.ResponseCode)
				if _, err := w.Write([]byte(record.ResponsePayload)); err != nil {
					log.Error("Failed to write replayed response", map[string]interface{}{
						"request_id": requestID,
						"key":        key,
						"error":      err.Error(),
					})
				}
				return
			}

			buffered := newBufferedResponseWriter(w)
			next.ServeHTTP(buffered, r)

			if buffered.statusCode >= 200 && buffered.statusCode < 300 {
				rec := &entity.IdempotencyRecord{
					Key:             key,
					ResponseCode:    buffered.statusCode,
					ResponsePayload: buffered.body.String(),
				}

				if err := repo.Save(r.Context(), rec); err != nil {
					if errors.Is(err, repository.ErrDuplicateKey) {
						log.Debug("Concurrent attempt already cached this key", map[string]interface{}{
							"request_id": requestID,
							"key":        key,
						})
					} else {
						log.Error("Failed to cache idempotent response", map[string]interface{}{
							"request_id": requestID,
							"key":        key,
							"error":      err.Error(),
						})
					}
				} else {
					replay.Put(rec)
					log.Debug("Cached idempotent response", map[string]interface{}{
						"request_id": requestID,
						"key":        key,
						"status":     buffered.statusCode,
					})
				}
			}

			buffered.flush(log, requestID)
		})
	}
}

// isMutating reports whether the verb changes state and is therefore
// subject to idempotency handling.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func writeStoreUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Idempotency store unavailable",
		"status": http.StatusServiceUnavailable,
	})
}

// bufferedResponseWriter holds back status and body until the downstream
// handler finishes, so the response can be cached before it is sent.
// Headers pass straight through to the underlying writer.
type bufferedResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the status code without sending it
func (b *bufferedResponseWriter) WriteHeader(statusCode int) {
	b.statusCode = statusCode
}

// Write buffers the body without sending it
func (b *bufferedResponseWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

// flush sends the buffered status and body to the client
func (b *bufferedResponseWriter) flush(log logger.Logger, requestID string) {
	b.ResponseWriter.WriteHeader(b.statusCode)
	if _, err := b.ResponseWriter.Write(b.body.Bytes()); err != nil {
		log.Error("Failed to flush buffered response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}
