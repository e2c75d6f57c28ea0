// Package credentials persists the session token triple used by the API
// client between requests and between CLI invocations.
package credentials

// Tokens is the credential triple returned by the auth endpoints. The JSON
// field names match the session payload on the wire, so a response body can
// be saved as-is.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
}

// Empty reports whether no credential is present at all.
func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == "" && t.IDToken == ""
}

// Store persists the triple as a unit: implementations never save or clear
// the tokens partially.
type Store interface {
	// Save replaces the stored triple.
	Save(tokens Tokens) error
	// Load returns the stored triple. An empty store yields zero Tokens
	// and a nil error.
	Load() (Tokens, error)
	// Clear removes the triple and reports whether a live set was
	// actually removed. Concurrent callers observe true at most once per
	// stored set.
	Clear() (bool, error)
	// Close releases any underlying resources.
	Close() error
}
