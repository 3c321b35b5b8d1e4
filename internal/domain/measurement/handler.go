package measurement

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tavorabr/avaliacao-fisica-api/internal/platform/auth"
	"github.com/tavorabr/avaliacao-fisica-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "clinician"))
	g.GET("/patients/:id/measurements", h.ListMeasurements)
	g.GET("/patients/:id/measurements/first", h.FirstMeasurement)
	g.GET("/patients/:id/measurements/last", h.LastMeasurement)
	g.GET("/patients/:id/measurements/previous", h.PreviousMeasurement)
	g.GET("/patients/:id/measurements/watch", h.WatchMeasurements)
	g.POST("/patients/:id/measurements", h.SaveMeasurement)
	g.GET("/measurements/:id", h.GetMeasurement)
	g.PUT("/measurements/:id", h.UpdateMeasurement)
	g.DELETE("/measurements/:id", h.DeleteMeasurement)
}

// measurementResponse decorates a Measurement with its derived figures.
type measurementResponse struct {
	*Measurement
	BMI                 *float64 `json:"bmi,omitempty"`
	ReportedSkinfoldSum float64  `json:"reported_skinfold_sum"`
}

func respond(m *Measurement) measurementResponse {
	return measurementResponse{
		Measurement:         m,
		BMI:                 m.BMI(),
		ReportedSkinfoldSum: m.ReportedSkinfoldSum(),
	}
}

func (h *Handler) SaveMeasurement(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var m Measurement
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.PatientID = patientID
	if err := h.svc.SaveMeasurement(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, respond(&m))
}

func (h *Handler) GetMeasurement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetMeasurement(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "measurement not found")
	}
	return c.JSON(http.StatusOK, respond(m))
}

func (h *Handler) ListMeasurements(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]measurementResponse, len(items))
	for i, m := range items {
		out[i] = respond(m)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
}

func (h *Handler) FirstMeasurement(c echo.Context) error {
	return h.single(c, h.svc.FirstMeasurement)
}

func (h *Handler) LastMeasurement(c echo.Context) error {
	return h.single(c, h.svc.LastMeasurement)
}

func (h *Handler) single(c echo.Context, fetch func(ctx context.Context, patientID uuid.UUID) (*Measurement, error)) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	m, err := fetch(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "measurement not found")
	}
	return c.JSON(http.StatusOK, respond(m))
}

func (h *Handler) PreviousMeasurement(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	before, err := time.Parse("2006-01-02", c.QueryParam("before"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "before must be a date (YYYY-MM-DD)")
	}
	m, err := h.svc.MeasurementBefore(c.Request().Context(), patientID, before)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no earlier measurement")
	}
	return c.JSON(http.StatusOK, respond(m))
}

func (h *Handler) UpdateMeasurement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetMeasurement(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "measurement not found")
	}
	var m Measurement
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id
	m.PatientID = existing.PatientID
	if err := h.svc.UpdateMeasurement(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, respond(&m))
}

func (h *Handler) DeleteMeasurement(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteMeasurement(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "measurement not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// WatchMeasurements streams the patient's measurement list as server-sent
// events. The current snapshot is sent immediately, then again on every
// change, until the client disconnects.
func (h *Handler) WatchMeasurements(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	changes, cancel := h.svc.Watch(patientID)
	defer cancel()

	ctx := c.Request().Context()
	for {
		items, _, err := h.svc.ListByPatient(ctx, patientID, pagination.MaxLimit, 0)
		if err != nil {
			return nil
		}
		out := make([]measurementResponse, len(items))
		for i, m := range items {
			out[i] = respond(m)
		}
		payload, err := json.Marshal(out)
		if err != nil {
			return nil
		}
		if _, err := fmt.Fprintf(res, "event: measurements\ndata: %s\n\n", payload); err != nil {
			return nil
		}
		res.Flush()

		select {
		case <-ctx.Done():
			return nil
		case <-changes:
		}
	}
}
