package auth

import "codeberg.org/tasklist/server/tasklist/users"

// RegisterRequest for email/password sign up
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest for email/password sign in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ExchangeRequest redeems the one-time code from the OAuth redirect
type ExchangeRequest struct {
	Code string `json:"code"`
}

// GoogleVerifyRequest carries an ID token obtained by the frontend
type GoogleVerifyRequest struct {
	Credential string `json:"credential"`
}

// AuthResponse returned by every successful sign in
type AuthResponse struct {
	Message     string      `json:"message"`
	AccessToken string      `json:"access_token"`
	User        *users.User `json:"user"`
}

// AuthorizationURLResponse points the browser at the provider consent screen
type AuthorizationURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// VerifyTokenResponse for bearer token introspection
type VerifyTokenResponse struct {
	Valid bool        `json:"valid"`
	User  *users.User `json:"user"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}
