package studyreport

import (
	"context"
	"errors"
	"net/http"
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
	g := api.Group("/reports", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/drafts", h.ListDrafts)
	g.GET("/pending-approval", h.ListPendingApproval)
	g.GET("/study/:studyId", h.ListByStudy)
	g.GET("/study/:studyId/latest", h.GetLatestForStudy)
	g.GET("/study/:studyId/final", h.GetFinalForStudy)
	g.GET("/radiologist/:radiologistId", h.ListByRadiologist)
	g.GET("/radiologist/:radiologistId/statistics", h.GetRadiologistStatistics)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.POST("/:id/submit", h.Submit)
	g.POST("/:id/approve", h.Approve, auth.RequireRole("admin", "radiologist"))
	g.POST("/:id/reject", h.Reject, auth.RequireRole("admin", "radiologist"))
	g.POST("/:id/finalize", h.MarkFinal, auth.RequireRole("admin", "radiologist"))
	g.POST("/:id/sign", h.Sign)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		Type:   c.QueryParam("report_type"),
		Status: c.QueryParam("report_status"),
	}
	if v := c.QueryParam("study_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid study_id")
		}
		f.StudyID = &id
	}
	if v := c.QueryParam("radiologist_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radiologist_id")
		}
		f.RadiologistID = &id
	}
	if v := c.QueryParam("reviewer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid reviewer_id")
		}
		f.ReviewerID = &id
	}
	if v := c.QueryParam("is_final"); v != "" {
		final := v == "true"
		f.IsFinal = &final
	}
	if v := c.QueryParam("is_signed"); v != "" {
		signed := v == "true"
		f.IsSigned = &signed
	}
	if v := c.QueryParam("reported_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid reported_from")
		}
		f.ReportedFrom = &d
	}
	if v := c.QueryParam("reported_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid reported_to")
		}
		f.ReportedTo = &d
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reports")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rpt, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) ListByStudy(c echo.Context) error {
	studyID, err := parseParamID(c, "studyId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByStudy(c.Request().Context(), studyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list study reports")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetLatestForStudy(c echo.Context) error {
	studyID, err := parseParamID(c, "studyId")
	if err != nil {
		return err
	}
	rpt, err := h.svc.LatestForStudy(c.Request().Context(), studyID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no report for study")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) GetFinalForStudy(c echo.Context) error {
	studyID, err := parseParamID(c, "studyId")
	if err != nil {
		return err
	}
	rpt, err := h.svc.FinalForStudy(c.Request().Context(), studyID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no final report for study")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) ListByRadiologist(c echo.Context) error {
	radiologistID, err := parseParamID(c, "radiologistId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByRadiologist(c.Request().Context(), radiologistID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reports")
	}
	return c.JSON(http.StatusOK, items)
}

// ListDrafts returns the caller's drafts, or every draft with ?all=true.
func (h *Handler) ListDrafts(c echo.Context) error {
	var radiologistID *uuid.UUID
	if c.QueryParam("all") != "true" {
		id, err := callerID(c)
		if err != nil {
			return err
		}
		radiologistID = &id
	}
	items, err := h.svc.Drafts(c.Request().Context(), radiologistID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list drafts")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListPendingApproval(c echo.Context) error {
	items, err := h.svc.PendingApproval(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list pending reports")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	radiologistID, err := callerID(c)
	if err != nil {
		return err
	}
	rpt, err := h.svc.Create(c.Request().Context(), in, radiologistID)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrStudyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create report")
	}
	return c.JSON(http.StatusCreated, rpt)
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
	rpt, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) Submit(c echo.Context) error {
	return h.lifecycle(c, func(ctx echo.Context, id uuid.UUID) (*Report, error) {
		return h.svc.Submit(ctx.Request().Context(), id)
	})
}

func (h *Handler) Approve(c echo.Context) error {
	return h.review(c, h.svc.Approve)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.review(c, h.svc.Reject)
}

func (h *Handler) MarkFinal(c echo.Context) error {
	return h.lifecycle(c, func(ctx echo.Context, id uuid.UUID) (*Report, error) {
		return h.svc.MarkFinal(ctx.Request().Context(), id)
	})
}

func (h *Handler) Sign(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Signature string `json:"signature"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rpt, err := h.svc.Sign(c.Request().Context(), id, body.Signature)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadySigned), errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	case errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete report")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "report deleted"})
}

func (h *Handler) GetStatistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetRadiologistStatistics(c echo.Context) error {
	radiologistID, err := parseParamID(c, "radiologistId")
	if err != nil {
		return err
	}
	stats, err := h.svc.RadiologistStatistics(c.Request().Context(), radiologistID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) lifecycle(c echo.Context, op func(echo.Context, uuid.UUID) (*Report, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rpt, err := op(c, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	case errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func (h *Handler) review(c echo.Context, op func(ctx context.Context, id, reviewerID uuid.UUID) (*Report, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	reviewerID, err := callerID(c)
	if err != nil {
		return err
	}
	rpt, err := op(c.Request().Context(), id, reviewerID)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	case errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update report")
	}
	return c.JSON(http.StatusOK, rpt)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	return parseParamID(c, "id")
}

func parseParamID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
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
