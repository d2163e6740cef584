package template

import (
	"context"
	"errors"
	"net/http"
	"strings"

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
	g := api.Group("/templates", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/defaults", h.ListDefaults)
	g.GET("/code/:code", h.GetByCode)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/activate", h.Activate, auth.RequireRole("admin"))
	g.PATCH("/:id/deactivate", h.Deactivate, auth.RequireRole("admin"))
	g.PATCH("/:id/default", h.SetDefault, auth.RequireRole("admin"))
	g.DELETE("/:id/default", h.UnsetDefault, auth.RequireRole("admin"))
	g.POST("/:id/usage", h.RecordUsage)
	g.DELETE("/:id", h.Delete, auth.RequireRole("admin"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		Category: c.QueryParam("category"),
		Modality: c.QueryParam("modality"),
		BodyPart: c.QueryParam("body_part"),
		Language: c.QueryParam("language"),
		Search:   c.QueryParam("search"),
	}
	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}
	if v := c.QueryParam("is_default"); v != "" {
		def := v == "true"
		f.IsDefault = &def
	}
	if v := c.QueryParam("created_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid created_by")
		}
		f.CreatedBy = &id
	}
	if v := c.QueryParam("tags"); v != "" {
		f.Tags = strings.Split(v, ",")
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list templates")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load template")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) GetByCode(c echo.Context) error {
	t, err := h.svc.GetByCode(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load template")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListDefaults(c echo.Context) error {
	items, err := h.svc.Defaults(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list default templates")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	createdBy, err := callerID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Create(c.Request().Context(), in, createdBy)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateCode):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create template")
	}
	return c.JSON(http.StatusCreated, t)
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
	t, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateCode):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update template")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Activate(c echo.Context) error {
	return h.patch(c, h.svc.Activate)
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.patch(c, h.svc.Deactivate)
}

func (h *Handler) SetDefault(c echo.Context) error {
	return h.patch(c, h.svc.SetDefault)
}

func (h *Handler) UnsetDefault(c echo.Context) error {
	return h.patch(c, h.svc.UnsetDefault)
}

func (h *Handler) RecordUsage(c echo.Context) error {
	return h.patch(c, h.svc.RecordUsage)
}

func (h *Handler) patch(c echo.Context, op func(context.Context, uuid.UUID) (*Template, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := op(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update template")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete template")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "template deleted"})
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
