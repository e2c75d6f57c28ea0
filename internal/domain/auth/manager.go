package auth

import (
	"context"
	"sync"
	"time"

	"inventory-server-go/internal/domain/auth/model"
	"inventory-server-go/internal/domain/auth/store"
	"inventory-server-go/internal/domain/eventbus"
	"inventory-server-go/internal/platform/errors"
)

type (
	// SessionRecord re-exports the shared session entity for callers.
	SessionRecord = model.SessionRecord
	// Logger re-exports the logging interface used across the domain.
	Logger = model.Logger
)

const (
	defaultCleanupInterval = 10 * time.Minute
	minCleanupInterval     = 30 * time.Second
)

// Options encapsulates the dependencies required to construct a Manager.
type Options struct {
	Store           store.Store
	Logger          Logger
	Issuer          *TokenIssuer
	CleanupInterval time.Duration
}

// Manager coordinates token issuance and the server-side session
// registry. Refresh tokens are rotated: each refresh kills the old jti,
// so a replayed token is rejected.
type Manager struct {
	store  store.Store
	logger Logger
	issuer *TokenIssuer

	cleanupInterval time.Duration
	cleanupStop     chan struct{}
	cleanupOnce     sync.Once

	// rotateMu serializes rotation so a replayed refresh token cannot
	// race its own replacement.
	rotateMu sync.Mutex
}

// NewManager wires a Manager using the supplied options.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.manager", "auth manager requires a store")
	}
	if opts.Logger == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.manager", "auth manager requires a logger")
	}
	if opts.Issuer == nil {
		return nil, errors.New(errors.KindBootstrap, "auth.manager", "auth manager requires a token issuer")
	}

	cleanupInterval := opts.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	} else if cleanupInterval < minCleanupInterval {
		opts.Logger.Warn("cleanup interval too small, adjusting to %s", minCleanupInterval)
		cleanupInterval = minCleanupInterval
	}

	mgr := &Manager{
		store:           opts.Store,
		logger:          opts.Logger,
		issuer:          opts.Issuer,
		cleanupInterval: cleanupInterval,
		cleanupStop:     make(chan struct{}),
	}

	go mgr.runCleanup()
	return mgr, nil
}

func (m *Manager) runCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.store.CleanupExpired(context.Background()); err != nil {
				m.logger.Warn("session store cleanup failed: %v", err)
			}
		case <-m.cleanupStop:
			return
		}
	}
}

// BeginSession issues a token triple and registers the refresh session.
func (m *Manager) BeginSession(ctx context.Context, accountID uint, username, email, remoteAddr string) (*TokenSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := m.issuer.Issue(accountID, username, email)
	if err != nil {
		return nil, err
	}

	record := model.SessionRecord{
		JTI:        set.RefreshJTI,
		AccountID:  accountID,
		Username:   username,
		RemoteAddr: remoteAddr,
		IssuedAt:   time.Now(),
		ExpiresAt:  set.RefreshExpiresAt,
	}
	if email != "" {
		record.Metadata = map[string]any{"email": email}
	}

	if err := m.store.Put(ctx, record); err != nil {
		m.logger.Error("failed to register session for account %d: %v", accountID, err)
		return nil, errors.Wrap(errors.KindStorage, "auth.begin", "failed to persist session", err)
	}

	m.logger.Debug("session started: account=%d jti=%s", accountID, set.RefreshJTI)
	eventbus.PublishAsync(eventbus.EventSessionStarted, eventbus.SessionEventData{
		JTI:       set.RefreshJTI,
		AccountID: accountID,
		Username:  username,
	})
	return set, nil
}

// Refresh rotates a refresh token: the presented token must verify AND
// its jti must still be registered. The old session is removed before
// the replacement is issued.
func (m *Manager) Refresh(ctx context.Context, refreshToken, remoteAddr string) (*TokenSet, error) {
	claims, err := m.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.JTI == "" {
		return nil, errors.New(errors.KindAuth, "auth.refresh", "refresh token missing jti")
	}

	m.rotateMu.Lock()
	defer m.rotateMu.Unlock()

	record, err := m.store.Get(ctx, claims.JTI)
	if err != nil {
		if store.IsInvalidSession(err) {
			m.logger.Warn("refresh rejected for revoked or rotated session: %s", claims.JTI)
			return nil, errors.New(errors.KindAuth, "auth.refresh", "refresh token no longer valid")
		}
		return nil, errors.Wrap(errors.KindStorage, "auth.refresh", "failed to load session", err)
	}

	if err := m.store.Remove(ctx, claims.JTI); err != nil {
		return nil, errors.Wrap(errors.KindStorage, "auth.refresh", "failed to retire session", err)
	}

	email, _ := record.Metadata["email"].(string)
	set, err := m.issuer.Issue(record.AccountID, record.Username, email)
	if err != nil {
		return nil, err
	}

	next := model.SessionRecord{
		JTI:        set.RefreshJTI,
		AccountID:  record.AccountID,
		Username:   record.Username,
		RemoteAddr: remoteAddr,
		IssuedAt:   time.Now(),
		ExpiresAt:  set.RefreshExpiresAt,
		Metadata:   record.Metadata,
	}
	if err := m.store.Put(ctx, next); err != nil {
		return nil, errors.Wrap(errors.KindStorage, "auth.refresh", "failed to persist rotated session", err)
	}

	m.logger.Debug("session rotated: account=%d old=%s new=%s", record.AccountID, claims.JTI, set.RefreshJTI)
	return set, nil
}

// Revoke removes the session behind a refresh token. Revoking an already
// dead session is not an error.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := m.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}

	m.rotateMu.Lock()
	defer m.rotateMu.Unlock()

	if err := m.store.Remove(ctx, claims.JTI); err != nil {
		return errors.Wrap(errors.KindStorage, "auth.revoke", "failed to remove session", err)
	}

	m.logger.Info("session revoked: account=%d jti=%s", claims.AccountID, claims.JTI)
	eventbus.PublishAsync(eventbus.EventSessionRevoked, eventbus.SessionEventData{
		JTI:       claims.JTI,
		AccountID: claims.AccountID,
		Username:  claims.Username,
		Reason:    "signout",
	})
	return nil
}

// RevokeAccount removes every live session of an account.
func (m *Manager) RevokeAccount(ctx context.Context, accountID uint) error {
	m.rotateMu.Lock()
	defer m.rotateMu.Unlock()

	records, err := m.store.ListByAccount(ctx, accountID)
	if err != nil {
		return errors.Wrap(errors.KindStorage, "auth.revoke_account", "failed to list sessions", err)
	}

	for _, record := range records {
		if err := m.store.Remove(ctx, record.JTI); err != nil {
			return errors.Wrap(errors.KindStorage, "auth.revoke_account", "failed to remove session", err)
		}
		eventbus.PublishAsync(eventbus.EventSessionRevoked, eventbus.SessionEventData{
			JTI:       record.JTI,
			AccountID: record.AccountID,
			Username:  record.Username,
			Reason:    "account",
		})
	}

	m.logger.Info("revoked %d sessions for account %d", len(records), accountID)
	return nil
}

// VerifyAccess validates a bearer access token.
func (m *Manager) VerifyAccess(token string) (*Claims, error) {
	return m.issuer.VerifyAccess(token)
}

// VerifyBearer accepts either an access or an identity token. Cognito
// style callers attach whichever of the two they hold.
func (m *Manager) VerifyBearer(token string) (*Claims, error) {
	claims, accessErr := m.issuer.VerifyAccess(token)
	if accessErr == nil {
		return claims, nil
	}
	if claims, idErr := m.issuer.VerifyIdentity(token); idErr == nil {
		return claims, nil
	}
	return nil, accessErr
}

// Sessions returns the live session identifiers.
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Stats returns debug information from the store backend.
func (m *Manager) Stats(ctx context.Context) (map[string]any, error) {
	return m.store.Stats(ctx)
}

// Close releases underlying resources.
func (m *Manager) Close() error {
	m.cleanupOnce.Do(func() {
		close(m.cleanupStop)
	})

	if err := m.store.Close(context.Background()); err != nil {
		m.logger.Error("failed closing session store: %v", err)
		return err
	}
	return nil
}
