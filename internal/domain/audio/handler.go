package audio

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
	g := api.Group("/audio-recordings", auth.RequireAuthenticated())
	g.GET("", h.List)
	g.GET("/statistics", h.GetStatistics)
	g.GET("/pending-transcription", h.ListPendingTranscription)
	g.GET("/study/:studyId", h.ListByStudy)
	g.GET("/:id", h.Get)
	g.GET("/:id/download", h.Download)
	g.POST("", h.Upload)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/transcription-status", h.SetTranscriptionStatus)
	g.PUT("/:id/transcription", h.SetTranscription)
	g.PATCH("/:id/archive", h.Archive)
	g.PATCH("/:id/unarchive", h.Unarchive)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filters{
		RecordingType:       c.QueryParam("recording_type"),
		TranscriptionStatus: c.QueryParam("transcription_status"),
		Language:            c.QueryParam("language"),
	}
	if v := c.QueryParam("study_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid study_id")
		}
		f.StudyID = &id
	}
	if v := c.QueryParam("recorded_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid recorded_by")
		}
		f.RecordedBy = &id
	}
	if v := c.QueryParam("is_processed"); v != "" {
		processed := v == "true"
		f.IsProcessed = &processed
	}
	if v := c.QueryParam("is_archived"); v != "" {
		archived := v == "true"
		f.IsArchived = &archived
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list recordings")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load recording")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListByStudy(c echo.Context) error {
	studyID, err := uuid.Parse(c.Param("studyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid studyId")
	}
	items, err := h.svc.ListByStudy(c.Request().Context(), studyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list recordings")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListPendingTranscription(c echo.Context) error {
	items, err := h.svc.PendingTranscription(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list recordings")
	}
	return c.JSON(http.StatusOK, items)
}

// Upload takes a multipart form: an "audio" file part plus metadata fields.
func (h *Handler) Upload(c echo.Context) error {
	recordedBy, err := callerID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read audio file")
	}
	defer file.Close()

	in := CreateInput{
		RecordingType: c.FormValue("recording_type"),
		FileName:      fileHeader.Filename,
		MimeType:      fileHeader.Header.Get("Content-Type"),
		Language:      c.FormValue("language"),
	}
	if v := c.FormValue("study_id"); v != "" {
		studyID, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid study_id")
		}
		in.StudyID = studyID
	}
	if v := c.FormValue("report_id"); v != "" {
		reportID, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid report_id")
		}
		in.ReportID = &reportID
	}
	if v := c.FormValue("duration_seconds"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid duration_seconds")
		}
		in.DurationSeconds = seconds
	}
	if v := c.FormValue("notes"); v != "" {
		in.Notes = &v
	}

	rec, err := h.svc.Upload(c.Request().Context(), in, file, fileHeader.Size, recordedBy)
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrStudyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "study not found")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store recording")
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Download(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	url, err := h.svc.DownloadURL(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to presign download")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
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
	rec, err := h.svc.Update(c.Request().Context(), id, in)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update recording")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SetTranscriptionStatus(c echo.Context) error {
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
	rec, err := h.svc.SetTranscriptionStatus(c.Request().Context(), id, body.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update recording")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SetTranscription(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Transcription string `json:"transcription"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, err := h.svc.SetTranscription(c.Request().Context(), id, body.Transcription)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update recording")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Archive(c echo.Context) error {
	return h.patch(c, h.svc.Archive)
}

func (h *Handler) Unarchive(c echo.Context) error {
	return h.patch(c, h.svc.Unarchive)
}

func (h *Handler) patch(c echo.Context, op func(context.Context, uuid.UUID) (*Recording, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := op(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update recording")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "recording not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete recording")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "recording deleted"})
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
