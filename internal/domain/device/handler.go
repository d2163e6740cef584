package device

import (
	"context"
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
	g := api.Group("/devices", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/maintenance-due", h.MaintenanceDue)
	g.GET("/maintenance-overdue", h.MaintenanceOverdue)
	g.GET("/recent", h.RecentlyAdded)
	g.GET("/code/:code", h.GetByCode)
	g.GET("/institution/:institutionId", h.ListByInstitution)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireRole("admin"))
	g.PUT("/:id", h.Update, auth.RequireRole("admin"))
	g.PATCH("/:id/activate", h.Activate, auth.RequireRole("admin"))
	g.PATCH("/:id/deactivate", h.Deactivate, auth.RequireRole("admin"))
	g.PATCH("/:id/online", h.SetOnline)
	g.PATCH("/:id/offline", h.SetOffline)
	g.DELETE("/:id", h.Delete, auth.RequireRole("admin"))
	g.POST("/:id/restore", h.Restore, auth.RequireRole("admin"))
	g.DELETE("/:id/permanent", h.PermanentlyDelete, auth.RequireRole("admin"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		DeviceType: c.QueryParam("device_type"),
		Modality:   c.QueryParam("modality"),
		Search:     c.QueryParam("search"),
	}
	if v := c.QueryParam("institution_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid institution_id")
		}
		f.InstitutionID = &id
	}
	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}
	if v := c.QueryParam("is_online"); v != "" {
		online := v == "true"
		f.IsOnline = &online
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list devices")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByInstitution(c echo.Context) error {
	id, err := uuid.Parse(c.Param("institutionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid institutionId")
	}
	items, err := h.svc.ListByInstitution(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list devices")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load device")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) GetByCode(c echo.Context) error {
	d, err := h.svc.GetByCode(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load device")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := h.svc.Create(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrDuplicateAETitle):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create device")
	}
	return c.JSON(http.StatusCreated, d)
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
	d, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrDuplicateAETitle):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update device")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Activate(c echo.Context) error   { return h.patchFlag(c, h.svc.Activate) }
func (h *Handler) Deactivate(c echo.Context) error { return h.patchFlag(c, h.svc.Deactivate) }
func (h *Handler) SetOnline(c echo.Context) error  { return h.patchFlag(c, h.svc.SetOnline) }
func (h *Handler) SetOffline(c echo.Context) error { return h.patchFlag(c, h.svc.SetOffline) }

func (h *Handler) patchFlag(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Device, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := op(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update device")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) MaintenanceDue(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	items, err := h.svc.MaintenanceDue(c.Request().Context(), days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list devices")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MaintenanceOverdue(c echo.Context) error {
	items, err := h.svc.MaintenanceOverdue(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list devices")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) RecentlyAdded(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.svc.RecentlyAdded(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list devices")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete device")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "device deleted"})
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Restore(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to restore device")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) PermanentlyDelete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.PermanentlyDelete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete device")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "device permanently deleted"})
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
