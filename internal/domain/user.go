package domain

import (
	"time"

	"github.com/google/uuid"
)

// User identity created once at onboarding completion.
// Identity fields are immutable afterwards except the verification flags.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	IsKycVerified bool      `json:"isKycVerified"`
	Is2faEnabled  bool      `json:"is2faEnabled"`
	Country       string    `json:"country"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewUser creates a user record for a freshly onboarded account.
func NewUser(email, country string) *User {
	return &User{
		ID:        uuid.New().String(),
		Email:     email,
		Country:   country,
		CreatedAt: time.Now(),
	}
}
