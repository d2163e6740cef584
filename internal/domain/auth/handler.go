package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	platformauth "github.com/radbridge/radbridge/internal/platform/auth"
)

const refreshCookieName = "refreshToken"

type Handler struct {
	svc    *Service
	secure bool
}

// NewHandler wires the auth routes. secure controls the Secure flag on the
// refresh cookie and is false only in development over plain HTTP.
func NewHandler(svc *Service, secure bool) *Handler {
	return &Handler{svc: svc, secure: secure}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/auth")
	g.GET("/health", h.Health)
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout, platformauth.RequireAuthenticated())
	g.GET("/me", h.Me, platformauth.RequireAuthenticated())
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cred, profile, err := h.svc.Register(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateUsername), errors.Is(err, ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"userId":   profile.ID,
		"username": cred.Username,
		"email":    profile.Email,
		"role":     cred.Role,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if in.Username == "" || in.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	ctx := c.Request().Context()
	result, err := h.svc.Login(ctx, in)
	switch {
	case errors.Is(err, ErrAccountLocked), errors.Is(err, ErrAccountLockedNow):
		return echo.NewHTTPError(http.StatusUnauthorized, "account is locked, please try again later")
	case errors.Is(err, ErrAccountDeactivated):
		return echo.NewHTTPError(http.StatusUnauthorized, "account is deactivated")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	tokens, err := h.svc.IssueTokens(ctx, result.Identity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	h.setRefreshCookie(c, tokens.RefreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"accessToken": tokens.AccessToken,
		"user": map[string]interface{}{
			"userId":   result.Identity.UserID,
			"username": result.Identity.Username,
			"role":     result.Identity.Role,
			"profile":  result.Profile,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) Refresh(c echo.Context) error {
	var in refreshRequest
	_ = c.Bind(&in)
	if in.RefreshToken == "" {
		// Browser clients carry the token in the cookie instead of the body.
		if cookie, err := c.Cookie(refreshCookieName); err == nil {
			in.RefreshToken = cookie.Value
		}
	}
	if in.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token is required")
	}

	access, err := h.svc.Refresh(c.Request().Context(), in.RefreshToken)
	if errors.Is(err, ErrInvalidRefreshToken) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "token refresh failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"accessToken": access})
}

func (h *Handler) Logout(c echo.Context) error {
	credID, err := callerCredentialID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Logout(c.Request().Context(), credID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) Me(c echo.Context) error {
	credID, err := callerCredentialID(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.VerifyUser(c.Request().Context(), credID)
	if errors.Is(err, ErrInvalidUser) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(platformauth.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// callerCredentialID resolves the authenticated credential id.
func callerCredentialID(c echo.Context) (uuid.UUID, error) {
	id, ok := platformauth.IdentityFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	credID, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return credID, nil
}
