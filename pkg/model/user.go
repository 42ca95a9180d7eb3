package model

import "time"

const (
	RoleAdmin        = "admin"
	RoleVeterinarian = "veterinarian"
	RoleStaff        = "staff"
)

type User struct {
	ID                   string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Username             string     `json:"username" bson:"username" validate:"required,min=3,max=30,username"`
	Email                string     `json:"email" bson:"email" validate:"required,email,max=254"`
	PasswordHash         string     `json:"-" bson:"password_hash" validate:"required"`
	FirstName            string     `json:"first_name" bson:"first_name" validate:"required,max=50"`
	LastName             string     `json:"last_name" bson:"last_name" validate:"required,max=50"`
	Role                 string     `json:"role" bson:"role" validate:"required,oneof=admin veterinarian staff"`
	IsActive             bool       `json:"is_active" bson:"is_active"`
	LastLogin            *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	PasswordResetToken   string     `json:"-" bson:"password_reset_token,omitempty"`
	PasswordResetExpires *time.Time `json:"-" bson:"password_reset_expires,omitempty"`
	CreatedAt            time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" bson:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanTreat is true for users that can be booked for appointments.
func (u *User) CanTreat() bool {
	return u.Role == RoleVeterinarian || u.Role == RoleAdmin
}

// UserProfileUpdate carries the self-service profile form.
type UserProfileUpdate struct {
	FirstName string `validate:"required,max=50"`
	LastName  string `validate:"required,max=50"`
	Email     string `validate:"required,email,max=254"`
}

type Registration struct {
	Username        string `validate:"required,min=3,max=30,username"`
	Email           string `validate:"required,email,max=254"`
	Password        string `validate:"required,min=6,max=72"`
	ConfirmPassword string `validate:"required"`
	FirstName       string `validate:"required,max=50"`
	LastName        string `validate:"required,max=50"`
	Role            string `validate:"omitempty,oneof=veterinarian staff"`
}
