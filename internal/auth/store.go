package auth

import (
	"context"
	"time"
)

// User is an account able to authenticate against the API.
type User struct {
	ID           string `json:"id"`
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Sanitized returns a copy safe to hand to API responses: identity and role
// only, never the password hash.
func (u *User) Sanitized() *User {
	return &User{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// UserStore is the minimal credential-store surface the auth subsystem
// consumes. Duplicate emails surface as ErrEmailTaken, missing rows as
// ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
