package evaluation

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tavorabr/avaliacao-fisica-api/internal/domain/measurement"
	"github.com/tavorabr/avaliacao-fisica-api/internal/platform/auth"
)

// ChangeNotifier wakes live-view subscribers after the orchestrator writes a
// measurement through its own path.
type ChangeNotifier interface {
	NotifyChanged(patientID uuid.UUID)
}

type Handler struct {
	svc      *Service
	tracker  *Tracker
	notifier ChangeNotifier
	logger   zerolog.Logger
}

func NewHandler(svc *Service, tracker *Tracker, notifier ChangeNotifier, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, tracker: tracker, notifier: notifier, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "clinician"))
	g.POST("/patients/:id/evaluations", h.StartEvaluation)
	g.GET("/evaluations/:id", h.GetEvaluationState)
}

type stateResponse struct {
	EvaluationID uuid.UUID `json:"evaluation_id"`
	Status       Status    `json:"status"`
	Result       *Result   `json:"result,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// StartEvaluation kicks off one evaluation run. The run's state is Loading
// before this handler returns; the computation and store write then proceed
// on a context detached from the request, so a client that disconnects never
// interrupts the write. With ?wait=true the handler blocks until the run
// settles and returns the terminal state directly.
func (h *Handler) StartEvaluation(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var m measurement.Measurement
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, st := h.tracker.Start()

	go func() {
		// Detached from the request: persistence must finish (or cleanly
		// fail) even if the requesting client goes away, and always before
		// success is signaled.
		ctx := context.Background()
		result, err := h.svc.PerformAndSave(ctx, patientID, &m)
		if err != nil {
			h.logger.Warn().Err(err).Str("patient_id", patientID.String()).Msg("evaluation failed")
			st.Fail(err)
			return
		}
		if h.notifier != nil {
			h.notifier.NotifyChanged(patientID)
		}
		st.Succeed(result)
	}()

	if c.QueryParam("wait") == "true" {
		select {
		case <-st.Done():
		case <-c.Request().Context().Done():
			// Client gave up; the run keeps going. Report it as in flight.
			return c.JSON(http.StatusAccepted, stateResponse{EvaluationID: id, Status: StatusLoading})
		}
		return h.respondState(c, id, st)
	}

	return c.JSON(http.StatusAccepted, stateResponse{EvaluationID: id, Status: StatusLoading})
}

func (h *Handler) GetEvaluationState(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	st, ok := h.tracker.Get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "evaluation not found")
	}
	return h.respondState(c, id, st)
}

func (h *Handler) respondState(c echo.Context, id uuid.UUID, st *ResultState) error {
	status, result, ferr := st.Snapshot()
	resp := stateResponse{EvaluationID: id, Status: status, Result: result}
	switch status {
	case StatusError:
		resp.Error = ferr.Error()
		if errors.Is(ferr, ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, resp)
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	case StatusSuccess:
		return c.JSON(http.StatusOK, resp)
	default:
		return c.JSON(http.StatusAccepted, resp)
	}
}
