package session

import (
	"context"
	"errors"
	"time"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

var ErrNotFound = errors.New("session not found")

// User is the snapshot of the logged-in user kept in the session.
type User struct {
	ID        string `json:"id" bson:"id"`
	Username  string `json:"username" bson:"username"`
	Email     string `json:"email" bson:"email"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Role      string `json:"role" bson:"role"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

type Session struct {
	ID        string              `json:"id" bson:"_id"`
	User      *User               `json:"user,omitempty" bson:"user,omitempty"`
	Flashes   map[string][]string `json:"flashes,omitempty" bson:"flashes,omitempty"`
	ExpiresAt time.Time           `json:"expires_at" bson:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s *Session) empty() bool {
	return s.User == nil && len(s.Flashes) == 0
}

// Store persists sessions. Get returns ErrNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
