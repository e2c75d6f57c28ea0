package client

import (
	"context"

	"inventory-server-go/internal/client/credentials"
	"inventory-server-go/internal/platform/errors"
)

// Session is the token set the auth endpoints return.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Account is the signed-in account view.
type Account struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type signUpPayload struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type signInPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// SignUp registers an account. The server signs the new account in, so the
// returned session is stored just like after SignIn.
func (c *Client) SignUp(ctx context.Context, username, email, password string) (Session, error) {
	var session Session
	payload := signUpPayload{Username: username, Email: email, Password: password}
	if err := c.call(ctx, "POST", "/auth/signup", payload, &session); err != nil {
		return Session{}, err
	}
	if err := c.saveSession(session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// SignIn exchanges credentials for a session and stores the triple.
func (c *Client) SignIn(ctx context.Context, username, password string) (Session, error) {
	var session Session
	payload := signInPayload{Username: username, Password: password}
	if err := c.call(ctx, "POST", "/auth/signin", payload, &session); err != nil {
		return Session{}, err
	}
	if err := c.saveSession(session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// RefreshSession rotates the stored refresh token into a new triple.
func (c *Client) RefreshSession(ctx context.Context) (Session, error) {
	tokens, err := c.credentials.Load()
	if err != nil {
		return Session{}, err
	}
	if tokens.RefreshToken == "" {
		return Session{}, errors.New(errors.KindAuth, "client.refresh", "no stored session to refresh")
	}

	var session Session
	if err := c.call(ctx, "POST", "/auth/refresh", refreshPayload{RefreshToken: tokens.RefreshToken}, &session); err != nil {
		return Session{}, err
	}
	if err := c.saveSession(session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// SignOut revokes the stored session server-side. Local credentials are
// cleared regardless of the server outcome.
func (c *Client) SignOut(ctx context.Context) error {
	tokens, err := c.credentials.Load()
	if err != nil {
		return err
	}
	if tokens.RefreshToken == "" {
		_, err := c.credentials.Clear()
		return err
	}

	callErr := c.call(ctx, "POST", "/auth/signout", refreshPayload{RefreshToken: tokens.RefreshToken}, nil)
	if _, err := c.credentials.Clear(); err != nil {
		return err
	}
	return callErr
}

// WhoAmI returns the account behind the stored token.
func (c *Client) WhoAmI(ctx context.Context) (Account, error) {
	var account Account
	if err := c.call(ctx, "GET", "/auth/whoami", nil, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (c *Client) saveSession(session Session) error {
	return c.credentials.Save(credentials.Tokens{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		IDToken:      session.IDToken,
	})
}
