package domain

import "time"

// User is the signed-in user's profile
type User struct {
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Token holds bearer token material returned by sign-in. The backend
// delivers it via response headers, merged into this shape by the client.
type Token struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expirationTime"`
}

// Valid reports whether the token can still be attached to requests.
// A zero expiry means the server did not report one and the token is
// assumed usable until the backend says otherwise.
func (t Token) Valid() bool {
	if t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || time.Now().Before(t.ExpiresAt)
}
