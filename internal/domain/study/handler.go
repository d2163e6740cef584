package study

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	g := api.Group("/studies", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/urgent", h.ListUrgent)
	g.GET("/worklist", h.Worklist)
	g.GET("/patient/:patientId", h.PatientHistory)
	g.GET("/uid/:uid", h.GetByUID)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.POST("/:id/assign", h.Assign)
	g.PATCH("/:id/status", h.SetStatus)
	g.DELETE("/:id", h.Delete, auth.RequireRole("admin"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		Status:    c.QueryParam("status"),
		Priority:  c.QueryParam("priority"),
		Modality:  c.QueryParam("modality"),
		PatientID: c.QueryParam("patient_id"),
		Search:    c.QueryParam("search"),
	}
	if v := c.QueryParam("institution_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid institution_id")
		}
		f.InstitutionID = &id
	}
	if v := c.QueryParam("device_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid device_id")
		}
		f.DeviceID = &id
	}
	if v := c.QueryParam("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid assigned_to")
		}
		f.AssignedTo = &id
	}
	if v := c.QueryParam("date_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
		}
		f.DateFrom = &d
	}
	if v := c.QueryParam("date_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
		}
		f.DateTo = &d
	}
	if v := c.QueryParam("is_urgent"); v != "" {
		urgent, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_urgent")
		}
		f.IsUrgent = &urgent
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list studies")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	st, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load study")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) GetByUID(c echo.Context) error {
	st, err := h.svc.GetByStudyInstanceUID(c.Request().Context(), c.Param("uid"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load study")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) PatientHistory(c echo.Context) error {
	items, err := h.svc.PatientHistory(c.Request().Context(), c.Param("patientId"))
	if errors.Is(err, ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load patient history")
	}
	return c.JSON(http.StatusOK, items)
}

// Worklist returns the studies assigned to the calling radiologist, or with
// ?radiologist_id= the worklist of another user.
func (h *Handler) Worklist(c echo.Context) error {
	radiologistID, err := callerID(c)
	if err != nil {
		return err
	}
	if v := c.QueryParam("radiologist_id"); v != "" {
		radiologistID, err = uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radiologist_id")
		}
	}
	items, err := h.svc.Worklist(c.Request().Context(), radiologistID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load worklist")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListUrgent(c echo.Context) error {
	items, err := h.svc.UrgentOpen(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list urgent studies")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.Create(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateUID):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create study")
	}
	return c.JSON(http.StatusCreated, st)
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
	st, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update study")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Assign(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		RadiologistID uuid.UUID `json:"radiologist_id"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.RadiologistID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "radiologist_id is required")
	}
	st, err := h.svc.Assign(c.Request().Context(), id, body.RadiologistID)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to assign study")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	st, err := h.svc.SetStatus(c.Request().Context(), id, body.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update study status")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete study")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "study deleted"})
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
