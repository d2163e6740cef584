package company

import (
	"errors"
	"net/http"
	"strconv"

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
	g := api.Group("/companies", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics, auth.RequireRole("admin"))
	g.GET("/expiring-licenses", h.ExpiringLicenses, auth.RequireRole("admin"))
	g.GET("/expiring-contracts", h.ExpiringContracts, auth.RequireRole("admin"))
	g.GET("/code/:code", h.GetByCode)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireRole("admin"))
	g.PUT("/:id", h.Update, auth.RequireRole("admin"))
	g.DELETE("/:id", h.Delete, auth.RequireRole("admin"))
	g.POST("/:id/restore", h.Restore, auth.RequireRole("admin"))
	g.DELETE("/:id/permanent", h.PermanentlyDelete, auth.RequireRole("admin"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		Status:       c.QueryParam("status"),
		LicenseType:  c.QueryParam("license_type"),
		ServiceLevel: c.QueryParam("service_level"),
		City:         c.QueryParam("city"),
		Country:      c.QueryParam("country"),
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list companies")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	company, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load company")
	}
	return c.JSON(http.StatusOK, company)
}

func (h *Handler) GetByCode(c echo.Context) error {
	company, err := h.svc.GetByCode(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load company")
	}
	return c.JSON(http.StatusOK, company)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	callerID, err := callerID(c)
	if err != nil {
		return err
	}
	company, err := h.svc.Create(c.Request().Context(), in, callerID)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrDuplicateTaxNumber):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create company")
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	callerID, err := callerID(c)
	if err != nil {
		return err
	}
	company, err := h.svc.Update(c.Request().Context(), id, in, callerID)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateTaxNumber):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update company")
	}
	return c.JSON(http.StatusOK, company)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete company")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "company deleted"})
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	company, err := h.svc.Restore(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to restore company")
	}
	return c.JSON(http.StatusOK, company)
}

func (h *Handler) PermanentlyDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.PermanentlyDelete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "company not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete company")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "company permanently deleted"})
}

func (h *Handler) ExpiringLicenses(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	items, err := h.svc.ExpiringLicenses(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list expiring licenses")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ExpiringContracts(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	items, err := h.svc.ExpiringContracts(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list expiring contracts")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetStatistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func callerID(c echo.Context) (uuid.UUID, error) {
	identity, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(identity.UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
