package institution

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
	g := api.Group("/institutions", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/type/:type", h.ListByType)
	g.GET("/code/:code", h.GetByCode)
	g.GET("/:id", h.Get)
	g.GET("/:id/statistics", h.GetStatistics)
	g.POST("", h.Create, auth.RequireRole("admin"))
	g.PUT("/:id", h.Update, auth.RequireRole("admin"))
	g.DELETE("/:id", h.Delete, auth.RequireRole("admin"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		Type:    c.QueryParam("institution_type"),
		City:    c.QueryParam("city"),
		Country: c.QueryParam("country"),
		Search:  c.QueryParam("search"),
	}
	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list institutions")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByType(c echo.Context) error {
	items, err := h.svc.ListByType(c.Request().Context(), c.Param("type"))
	if errors.Is(err, ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list institutions")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	inst, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "institution not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load institution")
	}
	return c.JSON(http.StatusOK, inst)
}

func (h *Handler) GetByCode(c echo.Context) error {
	inst, err := h.svc.GetByCode(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "institution not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load institution")
	}
	return c.JSON(http.StatusOK, inst)
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
	inst, err := h.svc.Create(c.Request().Context(), in, callerID)
	if errors.Is(err, ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create institution")
	}
	return c.JSON(http.StatusCreated, inst)
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
	inst, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "institution not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update institution")
	}
	return c.JSON(http.StatusOK, inst)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "institution not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete institution")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "institution deleted"})
}

func (h *Handler) GetStatistics(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.Statistics(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "institution not found")
	}
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
