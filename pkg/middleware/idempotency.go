package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	idempotencySweepInterval = 10 * time.Minute
)

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	storedAt   time.Time
}

// InMemoryIdempotencyStore keeps replayable responses for ttl. Entries are
// dropped lazily on read and by a background sweep.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	responses map[string]*CachedResponse
	ttl       time.Duration
	now       func() time.Time
	done      chan struct{}
	stopOnce  sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		responses: make(map[string]*CachedResponse),
		ttl:       ttl,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	go s.sweepLoop(idempotencySweepInterval)
	return s
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, ok := s.responses[key]
	if !ok {
		return nil, false
	}
	if s.expired(resp) {
		delete(s.responses, key)
		return nil, false
	}
	return resp, true
}

func (s *InMemoryIdempotencyStore) Set(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.storedAt = s.now()
	s.responses[key] = response
}

func (s *InMemoryIdempotencyStore) expired(resp *CachedResponse) bool {
	return s.now().Sub(resp.storedAt) > s.ttl
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, resp := range s.responses {
		if s.expired(resp) {
			delete(s.responses, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	headers    http.Header
	body       bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.headers = rc.ResponseWriter.Header().Clone()
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	if rc.headers == nil {
		rc.WriteHeader(http.StatusOK)
	}
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

func (rc *responseCapture) cached() *CachedResponse {
	headers := rc.headers
	if headers == nil {
		headers = rc.ResponseWriter.Header().Clone()
	}
	headers.Del("Set-Cookie")

	return &CachedResponse{
		StatusCode: rc.statusCode,
		Headers:    headers,
		Body:       bytes.Clone(rc.body.Bytes()),
	}
}

// IdempotencyScope returns the caller identity a key is bound to, usually the
// signed in user's ID. An empty scope shares keys between anonymous callers.
type IdempotencyScope func(r *http.Request) string

// Idempotency replays the first successful response for a repeated key on
// mutating requests. Concurrent requests with the same key run the handler
// once; the others wait and receive the same response.
func Idempotency(store IdempotencyStore, headerName string, scope IdempotencyScope) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}
	var inflight singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			key := idempotencyKey(r, headerName, scope)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if cached, ok := store.Get(key); ok {
				replay(w, cached)
				return
			}

			leader := false
			v, _, _ := inflight.Do(key, func() (any, error) {
				leader = true
				capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
				next.ServeHTTP(capture, r)

				resp := capture.cached()
				if isSuccess(resp.StatusCode) {
					store.Set(key, resp)
				}
				return resp, nil
			})
			if !leader {
				replay(w, v.(*CachedResponse))
			}
		})
	}
}

// Keys are bound to method, path and scope so one key cannot replay another
// route or another user's response.
func idempotencyKey(r *http.Request, headerName string, scope IdempotencyScope) string {
	key := strings.TrimSpace(r.Header.Get(headerName))
	if key == "" {
		return ""
	}

	owner := ""
	if scope != nil {
		owner = scope(r)
	}
	return strings.Join([]string{owner, r.Method, r.URL.Path, key}, " ")
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
