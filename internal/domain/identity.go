package domain

import "github.com/google/uuid"

// Identity is the user resolved from a valid access token. It is scoped to a
// single request and never cached across requests.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// TokenPair carries replacement credentials after a silent renewal. The API
// never persists these; they are relayed back to the caller as response headers.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
