// Package sessiontest serves handlers behind a real session manager with a
// chosen user already signed in.
package sessiontest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/sealer"
	"petcare/pkg/session"

	"github.com/stretchr/testify/require"
)

var (
	Admin = &session.User{ID: "64b0000000000000000000f1", Username: "admin", FirstName: "Asha", LastName: "Naidoo", Role: "admin"}
	Staff = &session.User{ID: "64b0000000000000000000f2", Username: "frontdesk", FirstName: "Kavi", LastName: "Pillay", Role: "staff"}
	Vet   = &session.User{ID: "64b0000000000000000000e1", Username: "drramsamy", FirstName: "Priya", LastName: "Ramsamy", Role: "veterinarian"}
)

// Response is the recorded reply plus the flash messages still pending when the
// handler returned. Flashes a page already rendered are not included.
type Response struct {
	*httptest.ResponseRecorder
	Flashes map[string][]string
}

func (r *Response) Flash(kind string) []string {
	return r.Flashes[kind]
}

// Cookie returns the session cookie set by the response, or nil.
func (r *Response) Cookie() *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func NewManager(t testing.TB) *session.Manager {
	t.Helper()

	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(store.Stop)

	s, err := sealer.New("sessiontest-secret")
	require.NoError(t, err)

	return session.NewManager(store, s, time.Hour, false, logger.Discard())
}

// Serve runs req through the session middleware and method override, signs in
// user when it is not nil and hands the request to next.
func Serve(m *session.Manager, next http.Handler, user *session.User, req *http.Request) *Response {
	resp := &Response{ResponseRecorder: httptest.NewRecorder()}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != nil {
			session.Login(r, user)
		}
		next.ServeHTTP(w, r)
		resp.Flashes = session.Flashes(r)
	})

	var h http.Handler = inner
	h = m.Middleware()(h)
	h = middleware.MethodOverride()(h)
	h.ServeHTTP(resp.ResponseRecorder, req)
	return resp
}
