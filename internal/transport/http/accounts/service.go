package accounts

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	accountservice "inventory-server-go/internal/domain/account/service"
	"inventory-server-go/internal/domain/auth"
	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/platform/logging"
	httptransport "inventory-server-go/internal/transport/http"
	"inventory-server-go/internal/transport/http/envelope"
)

// Service is the HTTP transport for registration and session management.
type Service struct {
	config   *config.Config
	logger   *logging.Logger
	envelope *envelope.Builder
	accounts *accountservice.AccountService
	sessions *auth.Manager
}

// NewService creates the account HTTP service.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	env *envelope.Builder,
	accounts *accountservice.AccountService,
	sessions *auth.Manager,
) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "accounts.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "accounts.new", "logger is required")
	}
	if env == nil {
		return nil, errors.New(errors.KindConfig, "accounts.new", "envelope builder is required")
	}
	if accounts == nil {
		return nil, errors.New(errors.KindConfig, "accounts.new", "account service is required")
	}
	if sessions == nil {
		return nil, errors.New(errors.KindConfig, "accounts.new", "session manager is required")
	}

	return &Service{
		config:   cfg,
		logger:   logger,
		envelope: env,
		accounts: accounts,
		sessions: sessions,
	}, nil
}

// Register mounts signup, signin and refresh on the public group and
// signout plus whoami behind the auth middleware.
func (s *Service) Register(ctx context.Context, public, secured *gin.RouterGroup) error {
	public.POST("/auth/signup", s.handleSignUp)
	public.POST("/auth/signin", s.handleSignIn)
	public.POST("/auth/refresh", s.handleRefresh)

	secured.POST("/auth/signout", s.handleSignOut)
	secured.GET("/auth/whoami", s.handleWhoAmI)

	s.logger.InfoTag("HTTP", "account routes registered")
	return nil
}

// handleSignUp registers an account and starts its first session.
// @Summary Sign up
// @Description Registers a new account and returns a fresh token set
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpPayload true "registration fields"
// @Success 200 {object} SessionView
// @Failure 400 {object} envelope.ErrorBody
// @Failure 409 {object} envelope.ErrorBody
// @Router /auth/signup [post]
func (s *Service) handleSignUp(c *gin.Context) {
	var payload SignUpPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	account, err := s.accounts.Register(c.Request.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		s.fail(c, "signup", err)
		return
	}

	tokens, err := s.sessions.BeginSession(c.Request.Context(), account.ID, account.Username, account.Email, c.ClientIP())
	if err != nil {
		s.fail(c, "signup", err)
		return
	}

	s.logger.InfoTag("AUTH", "account registered: %s", account.Username)
	envelope.Write(c, s.envelope.Success(sessionView(tokens)))
}

// handleSignIn authenticates credentials and starts a session.
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignInPayload true "credentials"
// @Success 200 {object} SessionView
// @Failure 401 {object} envelope.ErrorBody
// @Router /auth/signin [post]
func (s *Service) handleSignIn(c *gin.Context) {
	var payload SignInPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	account, err := s.accounts.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		s.fail(c, "signin", err)
		return
	}

	tokens, err := s.sessions.BeginSession(c.Request.Context(), account.ID, account.Username, account.Email, c.ClientIP())
	if err != nil {
		s.fail(c, "signin", err)
		return
	}

	envelope.Write(c, s.envelope.Success(sessionView(tokens)))
}

// handleRefresh rotates a refresh token into a new token set.
// @Summary Refresh session
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshPayload true "refresh token"
// @Success 200 {object} SessionView
// @Failure 401 {object} envelope.ErrorBody
// @Router /auth/refresh [post]
func (s *Service) handleRefresh(c *gin.Context) {
	var payload RefreshPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.RefreshToken == "" {
		s.badRequest(c, "refresh token is required")
		return
	}

	tokens, err := s.sessions.Refresh(c.Request.Context(), payload.RefreshToken, c.ClientIP())
	if err != nil {
		s.fail(c, "refresh", err)
		return
	}

	envelope.Write(c, s.envelope.Success(sessionView(tokens)))
}

// handleSignOut revokes the caller's refresh token. Revoking an already
// removed session still succeeds.
// @Summary Sign out
// @Tags auth
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param body body RefreshPayload true "refresh token"
// @Success 200
// @Failure 401 {object} envelope.ErrorBody
// @Router /auth/signout [post]
func (s *Service) handleSignOut(c *gin.Context) {
	var payload RefreshPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.RefreshToken == "" {
		s.badRequest(c, "refresh token is required")
		return
	}

	if err := s.sessions.Revoke(c.Request.Context(), payload.RefreshToken); err != nil {
		s.fail(c, "signout", err)
		return
	}

	envelope.Write(c, s.envelope.Success(nil))
}

// handleWhoAmI returns the authenticated account's profile.
// @Summary Who am I
// @Tags auth
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} object
// @Failure 401 {object} envelope.ErrorBody
// @Router /auth/whoami [get]
func (s *Service) handleWhoAmI(c *gin.Context) {
	accountID, ok := httptransport.AccountID(c)
	if !ok {
		envelope.Write(c, s.envelope.FailureStatus(http.StatusUnauthorized, "unauthorized", "missing account identity"))
		return
	}

	account, err := s.accounts.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		s.fail(c, "whoami", err)
		return
	}

	envelope.Write(c, s.envelope.Success(account))
}

func sessionView(tokens *auth.TokenSet) SessionView {
	return SessionView{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IdentityToken,
		TokenType:    "Bearer",
		ExpiresIn:    tokens.ExpiresIn,
	}
}

func (s *Service) badRequest(c *gin.Context, message string) {
	envelope.Write(c, s.envelope.FailureStatus(http.StatusBadRequest, "bad_request", message))
}

func (s *Service) fail(c *gin.Context, op string, err error) {
	switch errors.KindOf(err) {
	case errors.KindAuth, errors.KindConflict, errors.KindDomain, errors.KindNotFound:
		s.logger.DebugTag("AUTH", "%s rejected: %v", op, err)
	default:
		s.logger.ErrorTag("AUTH", "%s failed: %v", op, err)
	}
	httptransport.WriteError(c, s.envelope, err)
}
