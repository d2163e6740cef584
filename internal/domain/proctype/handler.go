package proctype

import (
	"context"
	"errors"
	"net/http"
	"strconv"
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
	g := api.Group("/procedure-types", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/emergency", h.ListEmergency)
	g.GET("/code/:code", h.GetByCode)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireRole("admin"))
	g.PUT("/:id", h.Update, auth.RequireRole("admin"))
	g.PATCH("/:id/activate", h.Activate, auth.RequireRole("admin"))
	g.PATCH("/:id/deactivate", h.Deactivate, auth.RequireRole("admin"))
	g.POST("/:id/usage", h.RecordUsage)
	g.DELETE("/:id", h.Delete, auth.RequireRole("admin"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		Modality:      c.QueryParam("modality"),
		BodyPart:      c.QueryParam("body_part"),
		Category:      c.QueryParam("category"),
		RadiationDose: c.QueryParam("radiation_dose"),
		Search:        c.QueryParam("search"),
	}
	if v := c.QueryParam("is_emergency"); v != "" {
		emergency := v == "true"
		f.IsEmergency = &emergency
	}
	if v := c.QueryParam("is_contrast"); v != "" {
		contrast := v == "true"
		f.IsContrast = &contrast
	}
	if v := c.QueryParam("requires_preparation"); v != "" {
		prep := v == "true"
		f.RequiresPreparation = &prep
	}
	if v := c.QueryParam("is_active"); v != "" {
		active := v == "true"
		f.IsActive = &active
	}
	if v := c.QueryParam("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_price")
		}
		f.MinPrice = &price
	}
	if v := c.QueryParam("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
		f.MaxPrice = &price
	}
	if v := c.QueryParam("tags"); v != "" {
		f.Tags = strings.Split(v, ",")
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list procedure types")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pt, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "procedure type not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load procedure type")
	}
	return c.JSON(http.StatusOK, pt)
}

func (h *Handler) GetByCode(c echo.Context) error {
	pt, err := h.svc.GetByCode(c.Request().Context(), c.Param("code"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "procedure type not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load procedure type")
	}
	return c.JSON(http.StatusOK, pt)
}

func (h *Handler) ListEmergency(c echo.Context) error {
	items, err := h.svc.Emergency(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list emergency procedures")
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
	pt, err := h.svc.Create(c.Request().Context(), in, createdBy)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateCode):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create procedure type")
	}
	return c.JSON(http.StatusCreated, pt)
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
	pt, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "procedure type not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateCode):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update procedure type")
	}
	return c.JSON(http.StatusOK, pt)
}

func (h *Handler) Activate(c echo.Context) error {
	return h.patch(c, h.svc.Activate)
}

func (h *Handler) Deactivate(c echo.Context) error {
	return h.patch(c, h.svc.Deactivate)
}

func (h *Handler) RecordUsage(c echo.Context) error {
	return h.patch(c, h.svc.RecordUsage)
}

func (h *Handler) patch(c echo.Context, op func(context.Context, uuid.UUID) (*ProcedureType, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pt, err := op(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "procedure type not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update procedure type")
	}
	return c.JSON(http.StatusOK, pt)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "procedure type not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete procedure type")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "procedure type deleted"})
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
