package user

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radbridge/radbridge/internal/platform/auth"
	"github.com/radbridge/radbridge/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	me := api.Group("/users/me", auth.RequireAuthenticated())
	me.GET("", h.GetMyProfile)
	me.PUT("", h.UpdateMyProfile)

	admin := api.Group("/users", auth.RequireRole("admin"))
	admin.GET("", h.ListUsers)
	admin.GET("/:id", h.GetUser)
}

func (h *Handler) GetMyProfile(c echo.Context) error {
	loginID, err := callerLoginID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProfile(c.Request().Context(), loginID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateMyProfile(c echo.Context) error {
	loginID, err := callerLoginID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), loginID, in)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	if companyID := c.QueryParam("company_id"); companyID != "" {
		cid, err := uuid.Parse(companyID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid company_id")
		}
		items, total, err := h.svc.ListCompanyUsers(c.Request().Context(), cid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	items, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}
	return c.JSON(http.StatusOK, u)
}

// callerLoginID resolves the authenticated credential id from the request.
func callerLoginID(c echo.Context) (uuid.UUID, error) {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	loginID, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return loginID, nil
}
