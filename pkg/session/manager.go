package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/sealer"

	"github.com/google/uuid"
)

const (
	CookieName = "petcare_sid"

	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"

	MsgLoginRequired = "Please login to access this page"
	MsgAdminRequired = "Access denied. Admin privileges required."
)

type contextKey struct{}

// Manager loads the session named by the cookie into the request context and writes
// it back just before the response headers go out.
type Manager struct {
	store  Store
	sealer *sealer.Sealer
	ttl    time.Duration
	secure bool
	log    *logger.Logger
	now    func() time.Time
}

func NewManager(store Store, s *sealer.Sealer, ttl time.Duration, secure bool, log *logger.Logger) *Manager {
	return &Manager{
		store:  store,
		sealer: s,
		ttl:    ttl,
		secure: secure,
		log:    log,
		now:    time.Now,
	}
}

type state struct {
	mu         sync.Mutex
	sess       *Session
	isNew      bool
	modified   bool
	destroyed  bool
	previousID string
}

func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := m.load(r)
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, st))

			sw := &sessionWriter{ResponseWriter: w}
			sw.commit = func() { m.commit(r, w, st) }

			next.ServeHTTP(sw, r)

			sw.once.Do(sw.commit)
		})
	}
}

func (m *Manager) load(r *http.Request) *state {
	now := m.now()

	if cookie, err := r.Cookie(CookieName); err == nil {
		if id, err := m.sealer.Open(cookie.Value); err == nil {
			sess, err := m.store.Get(r.Context(), id)
			switch {
			case err == nil:
				return &state{
					sess:     sess,
					modified: sess.ExpiresAt.Sub(now) < m.ttl/2,
				}
			case !errors.Is(err, ErrNotFound):
				m.log.Warn("Failed to load session, starting a new one", "error", err)
			}
		}
	}

	return &state{
		sess:  &Session{ID: uuid.NewString(), ExpiresAt: now.Add(m.ttl)},
		isNew: true,
	}
}

func (m *Manager) commit(r *http.Request, w http.ResponseWriter, st *state) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ctx := context.WithoutCancel(r.Context())

	if st.destroyed {
		if !st.isNew {
			if err := m.store.Delete(ctx, st.sess.ID); err != nil {
				m.log.Error("Failed to delete session", "error", err)
			}
		}
		m.clearCookie(w)
		return
	}

	if !st.modified || (st.isNew && st.sess.empty()) {
		return
	}

	st.sess.ExpiresAt = m.now().Add(m.ttl)
	if err := m.store.Save(ctx, st.sess); err != nil {
		m.log.Error("Failed to save session", "error", err)
		return
	}

	if st.previousID != "" {
		if err := m.store.Delete(ctx, st.previousID); err != nil {
			m.log.Warn("Failed to delete rotated session", "error", err)
		}
		st.previousID = ""
	}

	if err := m.setCookie(w, st.sess); err != nil {
		m.log.Error("Failed to seal session cookie", "error", err)
		return
	}

	st.isNew = false
	st.modified = false
}

func (m *Manager) setCookie(w http.ResponseWriter, sess *Session) error {
	value, err := m.sealer.Seal(sess.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth lets only logged-in users through. Pages redirect to the login form,
// JSON callers get a 401.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			m.denyAnonymous(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			m.denyAnonymous(w, r)
			return
		}

		if !user.IsAdmin() {
			if httputil.WantsJSON(r) {
				if err := httputil.WriteError(w, apperrors.Forbidden(MsgAdminRequired)); err != nil {
					m.log.Error("failed to write error response", "handler", "RequireAdmin", "operation", "WriteError", "error", err)
				}
				return
			}
			AddFlash(r, FlashError, MsgAdminRequired)
			httputil.Redirect(w, r, DashboardPath)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Manager) denyAnonymous(w http.ResponseWriter, r *http.Request) {
	if httputil.WantsJSON(r) {
		if err := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); err != nil {
			m.log.Error("failed to write error response", "handler", "RequireAuth", "operation", "WriteError", "error", err)
		}
		return
	}

	AddFlash(r, FlashError, MsgLoginRequired)
	httputil.Redirect(w, r, LoginPath)
}

type sessionWriter struct {
	http.ResponseWriter
	once   sync.Once
	commit func()
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.once.Do(sw.commit)
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.once.Do(sw.commit)
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func fromRequest(r *http.Request) *state {
	st, _ := r.Context().Value(contextKey{}).(*state)
	return st
}

func CurrentUser(r *http.Request) *User {
	st := fromRequest(r)
	if st == nil {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.destroyed || st.sess.User == nil {
		return nil
	}
	u := *st.sess.User
	return &u
}

func IsAuthenticated(r *http.Request) bool {
	return CurrentUser(r) != nil
}

func AddFlash(r *http.Request, kind, message string) {
	st := fromRequest(r)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.sess.Flashes == nil {
		st.sess.Flashes = make(map[string][]string)
	}
	st.sess.Flashes[kind] = append(st.sess.Flashes[kind], message)
	st.modified = true
}

// Flashes returns the pending flash messages by kind and removes them from the session.
func Flashes(r *http.Request) map[string][]string {
	st := fromRequest(r)
	if st == nil {
		return map[string][]string{}
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	flashes := st.sess.Flashes
	if len(flashes) == 0 {
		return map[string][]string{}
	}

	st.sess.Flashes = nil
	st.modified = true
	return flashes
}

// Login stores user in the session under a fresh id. The old id is deleted on commit.
func Login(r *http.Request, user *User) {
	st := fromRequest(r)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.isNew && st.previousID == "" {
		st.previousID = st.sess.ID
	}
	u := *user
	st.sess.ID = uuid.NewString()
	st.sess.User = &u
	st.destroyed = false
	st.modified = true
}

// SetUser refreshes the user snapshot without rotating the session, e.g. after a profile edit.
func SetUser(r *http.Request, user *User) {
	st := fromRequest(r)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	u := *user
	st.sess.User = &u
	st.modified = true
}

func Logout(r *http.Request) {
	st := fromRequest(r)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.destroyed = true
	st.sess.User = nil
	st.sess.Flashes = nil
}
