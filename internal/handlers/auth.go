package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/middleware"
	"github.com/dimitrije/folio-api/internal/services"
	"github.com/dimitrije/folio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type AuthHandler struct {
	provider   auth.Provider
	consent    ConsentProviderInterface
	jwtService JWTServiceInterface
	logger     *zap.Logger
}

// NewAuthHandler wires the login endpoints. consent may be nil when no
// OAuth provider is configured.
func NewAuthHandler(
	provider auth.Provider,
	consent ConsentProviderInterface,
	jwtService JWTServiceInterface,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:   provider,
		consent:    consent,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := c.Request.Context()

	session, err := h.provider.Verify(ctx, auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Provider: req.Provider,
		Code:     req.Code,
		State:    req.State,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownProvider):
			c.BadRequest("unsupported provider: " + req.Provider)
		case errors.Is(err, auth.ErrInvalidState):
			c.Unauthorized("invalid or expired state")
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.logger.Info("login rejected", zap.String("provider", req.Provider), zap.Error(err))
			c.Unauthorized("invalid credentials")
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.InternalServerError("failed to verify credentials")
		}
		return
	}

	h.issueTokens(c, session)
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	if h.consent == nil {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	url, state, err := h.consent.ConsentURL(provider)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownProvider) {
			c.BadRequest("unsupported provider: " + provider)
			return
		}
		h.logger.Error("failed to create consent url", zap.String("provider", provider), zap.Error(err))
		c.InternalServerError("failed to generate state")
		return
	}

	_ = c.JSON(http.StatusOK, dto.ConsentURLResponse{URL: url, State: state})
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	h.issueTokens(c, claims.Session())
}

func (h *AuthHandler) Me(c *drift.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(http.StatusOK, dto.SessionResponse{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Provider: claims.Provider,
		Role:     string(claims.Role),
	})
}

// issueTokens resolves the current role for session and answers with a
// fresh token pair. Only admins get tokens.
func (h *AuthHandler) issueTokens(c *drift.Context, session *auth.Session) {
	role, err := h.provider.GetRole(c.Request.Context(), session)
	if err != nil {
		h.logger.Error("failed to resolve role", zap.String("subject", session.Subject), zap.Error(err))
		c.InternalServerError("failed to resolve role")
		return
	}
	if role != auth.RoleAdmin {
		h.logger.Warn("non-admin sign in refused", zap.String("subject", session.Subject), zap.String("provider", session.Provider))
		c.Forbidden("admin access required")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(session, role)
	if err != nil {
		h.logger.Error("failed to generate tokens", zap.Error(err))
		c.InternalServerError("failed to generate tokens")
		return
	}

	h.logger.Info("admin signed in", zap.String("subject", session.Subject), zap.String("provider", session.Provider))

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		Role:         string(role),
	})
}

var _ JWTServiceInterface = (*services.JWTService)(nil)
