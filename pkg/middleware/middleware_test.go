package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"petcare/pkg/logger"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(r.Method))
	})
}

func storedResponses(s *InMemoryIdempotencyStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, nil, logger.Discard())
	defer rl.Stop()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "window slid past the earlier hits")
	assert.True(t, rl.Allow(""), "unidentified callers are not limited")
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 15*time.Minute, nil, logger.Discard())
	defer rl.Stop()
	handler := rl.Middleware()(okHandler())

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/owners", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "900", second.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"`+DefaultRateLimitMessage+`"}`, second.Body.String())
}

func TestRequestTimeout_InTime(t *testing.T) {
	handler := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/appointments")
		w.WriteHeader(http.StatusFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/appointments", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/appointments", rec.Header().Get("Location"))

	silent := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "abc")
	}))
	rec = httptest.NewRecorder()
	silent.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
}

func TestRequestTimeout_LateHandlerCannotTouchResponse(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan error, 1)
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		<-release
		w.Header().Set("X-Late", "1")
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusCreated)
		_, err := w.Write([]byte("late"))
		finished <- err
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/owners", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"error":"Request timeout"}`, rec.Body.String())

	close(release)
	assert.ErrorIs(t, <-finished, http.ErrHandlerTimeout)
	assert.Empty(t, rec.Header().Get("X-Late"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Request timeout"}`, rec.Body.String())
}

func TestRequestTimeout_PlainTextForPages(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	handler := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/owners", nil)
	req.Header.Set("Accept", "text/html")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "Request timeout", rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", ClientIP(req))
}

func TestMethodOverride(t *testing.T) {
	handler := MethodOverride()(okHandler())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   string
	}{
		{"form field", http.MethodPost, "/owners/1", "_method=PUT&firstName=Ann", http.MethodPut},
		{"query", http.MethodPost, "/appointments/1?_method=DELETE", "", http.MethodDelete},
		{"lowercase", http.MethodPost, "/pets/1", "_method=delete", http.MethodDelete},
		{"unsupported", http.MethodPost, "/pets/1", "_method=TRACE", http.MethodPost},
		{"only from POST", http.MethodGet, "/pets/1?_method=DELETE", "", http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestMethodOverride_FormStillReadable(t *testing.T) {
	var firstName string
	handler := MethodOverride()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		firstName = r.Form.Get("firstName")
	}))

	form := url.Values{"_method": {"PUT"}, "firstName": {"Ann"}}
	req := httptest.NewRequest(http.MethodPost, "/owners/1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "Ann", firstName)
}

func TestContentTypeValidation(t *testing.T) {
	handler := ContentTypeValidation(logger.Discard())(okHandler())

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{"form", "application/x-www-form-urlencoded", "a=1", http.StatusOK},
		{"json", "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"xml", "application/xml", "<a/>", http.StatusUnsupportedMediaType},
		{"empty body", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cart/add", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, "", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	req := httptest.NewRequest(http.MethodPut, "/cart/update", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "same key on another route is a new request")
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	scope := func(r *http.Request) string { return r.Header.Get("X-User") }
	handler := Idempotency(store, "", scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(r.Header.Get("X-User")))
	}))

	for _, user := range []string{"alice", "bob", "alice"} {
		req := httptest.NewRequest(http.MethodPost, "/cart/add", nil)
		req.Header.Set(IdempotencyHeader, "same-key")
		req.Header.Set("X-User", user)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, user, rec.Body.String())
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 2, storedResponses(store))
}

func TestIdempotency_SkipsFailuresAndSafeMethods(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls int32
	handler := Idempotency(store, "", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
		req.Header.Set(IdempotencyHeader, "key-2")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		get := httptest.NewRequest(http.MethodGet, "/cart", nil)
		get.Header.Set(IdempotencyHeader, "key-2")
		handler.ServeHTTP(httptest.NewRecorder(), get)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Zero(t, storedResponses(store))
}

func TestIdempotencyStore_Expires(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.Set("k", &CachedResponse{StatusCode: http.StatusOK})

	_, ok := store.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	store.sweep()
	_, ok = store.Get("k")
	assert.False(t, ok)
	assert.Zero(t, storedResponses(store))
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRecovery_RendersByAudience(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/owners", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/owners", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestMaxRequestSize(t *testing.T) {
	handler := MaxRequestSize(8)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/owners", strings.NewReader("this body is too long"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRoute_AppliesMiddlewareInOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := httprouter.New()
	router.GET("/pets/:id", Route(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		order = append(order, "handler:"+ps.ByName("id"))
	}, mark("outer"), mark("inner")))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pets/42", nil))
	assert.Equal(t, []string{"outer", "inner", "handler:42"}, order)
}
