package auth

import (
	"github.com/ortnersoft/crm-backend/internal/users"
)

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput carries the data for a new employee account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TokenPairDTO is returned by login and refresh.
type TokenPairDTO struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user,omitempty"`
}
