package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "evcharge/pkg/errors"
	httputil "evcharge/pkg/http"
	"evcharge/pkg/logger"
)

const DefaultIdempotencyHeader = "Idempotency-Key"

// IdempotencyStore holds replayable responses keyed by idempotency key.
// Begin claims a key for an in-flight request and fails if it is already claimed or completed.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, bool, error)
	Begin(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, response *CachedResponse) error
	Abort(ctx context.Context, key string) error
	Stop()
}

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

type memoryEntry struct {
	response  *CachedResponse // nil while in flight
	createdAt time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	store    map[string]*memoryEntry
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		store:  make(map[string]*memoryEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*CachedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.store[key]
	if !exists {
		return nil, false, nil
	}
	if time.Since(entry.createdAt) > s.ttl {
		delete(s.store, key)
		return nil, false, nil
	}
	if entry.response == nil {
		return nil, false, nil
	}
	return entry.response, true, nil
}

func (s *InMemoryIdempotencyStore) Begin(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.store[key]; exists && time.Since(entry.createdAt) <= s.ttl {
		return false, nil
	}
	s.store[key] = &memoryEntry{createdAt: time.Now()}
	return true, nil
}

func (s *InMemoryIdempotencyStore) Set(_ context.Context, key string, response *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = time.Now()
	s.store[key] = &memoryEntry{response: response, createdAt: response.CreatedAt}
	return nil
}

func (s *InMemoryIdempotencyStore) Abort(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.store[key]; exists && entry.response == nil {
		delete(s.store, key)
	}
	return nil
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.store {
				if time.Since(entry.createdAt) > s.ttl {
					delete(s.store, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated key. Keys are
// scoped by caller, method and path so one client's key never replays another's response.
func Idempotency(store IdempotencyStore, headerName string, log *logger.Logger) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = DefaultIdempotencyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := r.Header.Get(headerName)
			if rawKey == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			if len(rawKey) > 255 {
				_ = httputil.WriteError(w, apperrors.InvalidInput(headerName+" is too long"))
				return
			}

			ctx := r.Context()
			key := scopedKey(r, rawKey)

			cached, found, err := store.Get(ctx, key)
			if err != nil {
				log.Error("Idempotency store lookup failed", "request_id", RequestIDFromContext(ctx), "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if found {
				replayCachedResponse(w, cached)
				return
			}

			claimed, err := store.Begin(ctx, key)
			if err != nil {
				log.Error("Idempotency store claim failed", "request_id", RequestIDFromContext(ctx), "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				_ = httputil.WriteError(w, apperrors.Conflict("A request with this "+headerName+" is already in progress"))
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
			next.ServeHTTP(capture, r)

			// The request context may already be done; finish bookkeeping regardless.
			storeCtx := context.WithoutCancel(ctx)
			if capture.statusCode >= 200 && capture.statusCode < 300 {
				err = store.Set(storeCtx, key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    w.Header().Clone(),
					Body:       capture.body.Bytes(),
				})
			} else {
				err = store.Abort(storeCtx, key)
			}
			if err != nil {
				log.Error("Idempotency store update failed", "request_id", RequestIDFromContext(ctx), "error", err)
			}
		})
	}
}

func scopedKey(r *http.Request, key string) string {
	return ClientKey(r) + "|" + r.Method + "|" + r.URL.Path + "|" + key
}

func replayCachedResponse(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		w.Header().Del(key)
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}
