package domain

import "time"

// UserSettings are per-account preferences
type UserSettings struct {
	Notifications bool   `json:"notifications"`
	AutoPost      bool   `json:"autoPost"`
	DefaultStyle  string `json:"defaultStyle"`
}

// DefaultUserSettings returns the settings a new account starts with
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Notifications: true,
		AutoPost:      false,
		DefaultStyle:  "moderne",
	}
}

// User is a registered account
type User struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"`
	Website       string       `json:"website,omitempty"`
	AccountNumber int          `json:"accountNumber"`
	IsActive      bool         `json:"isActive"`
	Settings      UserSettings `json:"settings"`
	CreatedAt     time.Time    `json:"createdAt"`
	LastLogin     time.Time    `json:"lastLogin"`
}

// PublicUser is the subset of a User returned to clients
type PublicUser struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	AccountNumber int           `json:"accountNumber"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastLogin     *time.Time    `json:"lastLogin,omitempty"`
	Settings      *UserSettings `json:"settings,omitempty"`
}

// Public strips credentials from the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		AccountNumber: u.AccountNumber,
		CreatedAt:     u.CreatedAt,
	}
}

// TokenClaims is what a session token asserts about its bearer
type TokenClaims struct {
	UserID        string
	Email         string
	AccountNumber int
	ExpiresAt     time.Time
}

// SignupRequest represents an account creation request
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Website  string `json:"website,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
