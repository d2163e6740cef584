package usercompany

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/radbridge/radbridge/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/user-companies", auth.RequireAuthenticated())
	g.POST("", h.Add, auth.RequireRole("admin"))
	g.DELETE("/:id", h.Remove, auth.RequireRole("admin"))
	g.POST("/:id/activate", h.Activate, auth.RequireRole("admin"))
	g.POST("/:id/deactivate", h.Deactivate, auth.RequireRole("admin"))
	g.PUT("/:id", h.UpdateRole, auth.RequireRole("admin"))
	g.GET("/users/:userId", h.UserCompanies)
	g.GET("/users/:userId/active", h.ActiveUserCompanies)
	g.GET("/users/:userId/detail", h.UserWithCompanies)
	g.GET("/companies/:companyId", h.CompanyUsers)
	g.GET("/companies/:companyId/active", h.ActiveCompanyUsers)
	g.GET("/companies/:companyId/managers", h.CompanyManagers)
	g.GET("/companies/:companyId/detail", h.CompanyWithUsers)
}

func (h *Handler) Add(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Add(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCompanyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyMember):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add user to company")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Remove(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	err = h.svc.Remove(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "relationship not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove user from company")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user removed from company"})
}

func (h *Handler) Activate(c echo.Context) error {
	return h.setActive(c, h.svc.Activate)
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.setActive(c, h.svc.Deactivate)
}

func (h *Handler) setActive(c echo.Context, op func(context.Context, uuid.UUID) (*Affiliation, error)) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := op(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "relationship not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update relationship")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateRole(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.UpdateRole(c.Request().Context(), id, in)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "relationship not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update relationship")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UserCompanies(c echo.Context) error {
	return h.listForUser(c, false)
}

func (h *Handler) ActiveUserCompanies(c echo.Context) error {
	return h.listForUser(c, true)
}

func (h *Handler) listForUser(c echo.Context, activeOnly bool) error {
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.svc.UserCompanies(c.Request().Context(), userID, activeOnly)
	if errors.Is(err, ErrUserNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list companies")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CompanyUsers(c echo.Context) error {
	return h.listForCompany(c, false)
}

func (h *Handler) ActiveCompanyUsers(c echo.Context) error {
	return h.listForCompany(c, true)
}

func (h *Handler) listForCompany(c echo.Context, activeOnly bool) error {
	companyID, err := pathUUID(c, "companyId")
	if err != nil {
		return err
	}
	items, err := h.svc.CompanyUsers(c.Request().Context(), companyID, activeOnly)
	if errors.Is(err, ErrCompanyNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CompanyManagers(c echo.Context) error {
	companyID, err := pathUUID(c, "companyId")
	if err != nil {
		return err
	}
	items, err := h.svc.CompanyManagers(c.Request().Context(), companyID)
	if errors.Is(err, ErrCompanyNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list managers")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UserWithCompanies(c echo.Context) error {
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return err
	}
	detail, err := h.svc.UserWithCompanies(c.Request().Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user companies")
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) CompanyWithUsers(c echo.Context) error {
	companyID, err := pathUUID(c, "companyId")
	if err != nil {
		return err
	}
	detail, err := h.svc.CompanyWithUsers(c.Request().Context(), companyID)
	if errors.Is(err, ErrCompanyNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load company users")
	}
	return c.JSON(http.StatusOK, detail)
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
