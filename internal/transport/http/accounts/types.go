package accounts

// SignUpPayload is the registration request body.
type SignUpPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInPayload is the credential login request body.
type SignInPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshPayload carries the refresh token for rotation and sign-out.
type RefreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// SessionView is the token triple handed to clients. Field names match what
// the client credential store persists.
type SessionView struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}
