package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inventory-server-go/internal/platform/errors"
)

// Token type discriminators carried in the typ claim.
const (
	TokenTypeAccess   = "access"
	TokenTypeIdentity = "id"
	TokenTypeRefresh  = "refresh"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 168 * time.Hour
)

// TokenSet is the triple handed to a signed-in client.
type TokenSet struct {
	AccessToken      string
	IdentityToken    string
	RefreshToken     string
	ExpiresIn        int64
	RefreshJTI       string
	RefreshExpiresAt time.Time
}

// Claims carries the verified identity extracted from a token.
type Claims struct {
	AccountID uint
	Username  string
	Email     string
	JTI       string
	TokenType string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies the HS256 token triple. The identity
// token shares the access TTL and adds the email profile claim.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds an issuer from the shared signing secret.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New(errors.KindConfig, "auth.issuer", "jwt secret must not be empty")
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}, nil
}

// WithAccessTTL customises the access and identity token lifetime.
func (ti *TokenIssuer) WithAccessTTL(ttl time.Duration) *TokenIssuer {
	if ttl > 0 {
		ti.accessTTL = ttl
	}
	return ti
}

// WithRefreshTTL customises the refresh token lifetime.
func (ti *TokenIssuer) WithRefreshTTL(ttl time.Duration) *TokenIssuer {
	if ttl > 0 {
		ti.refreshTTL = ttl
	}
	return ti
}

// RefreshTTL exposes the refresh lifetime so the session store TTL can
// be kept in lockstep.
func (ti *TokenIssuer) RefreshTTL() time.Duration {
	return ti.refreshTTL
}

// Issue signs a fresh token triple for the given account.
func (ti *TokenIssuer) Issue(accountID uint, username, email string) (*TokenSet, error) {
	now := time.Now()
	accessExpiry := now.Add(ti.accessTTL)
	refreshExpiry := now.Add(ti.refreshTTL)
	refreshJTI := uuid.NewString()

	access, err := ti.sign(jwt.MapClaims{
		"sub":      fmt.Sprint(accountID),
		"uid":      accountID,
		"username": username,
		"typ":      TokenTypeAccess,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      accessExpiry.Unix(),
	})
	if err != nil {
		return nil, err
	}

	identity, err := ti.sign(jwt.MapClaims{
		"sub":      fmt.Sprint(accountID),
		"uid":      accountID,
		"username": username,
		"email":    email,
		"typ":      TokenTypeIdentity,
		"iat":      now.Unix(),
		"exp":      accessExpiry.Unix(),
	})
	if err != nil {
		return nil, err
	}

	refresh, err := ti.sign(jwt.MapClaims{
		"sub":      fmt.Sprint(accountID),
		"uid":      accountID,
		"username": username,
		"typ":      TokenTypeRefresh,
		"jti":      refreshJTI,
		"iat":      now.Unix(),
		"exp":      refreshExpiry.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &TokenSet{
		AccessToken:      access,
		IdentityToken:    identity,
		RefreshToken:     refresh,
		ExpiresIn:        int64(ti.accessTTL.Seconds()),
		RefreshJTI:       refreshJTI,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// VerifyAccess validates an access token.
func (ti *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return ti.verify(token, TokenTypeAccess)
}

// VerifyIdentity validates an identity token.
func (ti *TokenIssuer) VerifyIdentity(token string) (*Claims, error) {
	return ti.verify(token, TokenTypeIdentity)
}

// VerifyRefresh validates a refresh token.
func (ti *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return ti.verify(token, TokenTypeRefresh)
}

func (ti *TokenIssuer) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", errors.Wrap(errors.KindPlatform, "auth.sign", "failed to sign token", err)
	}
	return signed, nil
}

func (ti *TokenIssuer) verify(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindAuth, "auth.verify", "failed to parse token", err)
	}
	if !token.Valid {
		return nil, errors.New(errors.KindAuth, "auth.verify", "invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errors.KindAuth, "auth.verify", "invalid claims")
	}

	typ, _ := mapClaims["typ"].(string)
	if typ != wantType {
		return nil, errors.New(errors.KindAuth, "auth.verify",
			fmt.Sprintf("token type mismatch: want %s, got %s", wantType, typ))
	}

	claims := &Claims{TokenType: typ}
	if uid, ok := mapClaims["uid"].(float64); ok {
		claims.AccountID = uint(uid)
	}
	if claims.AccountID == 0 {
		return nil, errors.New(errors.KindAuth, "auth.verify", "missing uid claim")
	}
	claims.Username, _ = mapClaims["username"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.JTI, _ = mapClaims["jti"].(string)
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}
