package measurement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *Service, *echo.Echo) {
	svc := NewService(newMockRepo())
	return NewHandler(svc), svc, echo.New()
}

func patientRequest(e *echo.Echo, method, path string, patientID uuid.UUID, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(patientID.String())
	return c, rec
}

func TestHandler_SaveMeasurement(t *testing.T) {
	h, _, e := newTestHandler()

	patientID := uuid.New()
	body := `{"evaluation_date":"2024-06-01T00:00:00Z","protocol":"three_fold","weight_kg":80,"height_cm":180,"chest_mm":10,"abdomen_mm":15,"thigh_mm":12}`
	c, rec := patientRequest(e, http.MethodPost, "/api/v1/patients/x/measurements", patientID, body)

	if err := h.SaveMeasurement(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp measurementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.PatientID != patientID {
		t.Errorf("patient id = %s, want %s (path wins over body)", resp.PatientID, patientID)
	}
	if resp.BMI == nil {
		t.Error("expected derived bmi in response")
	}
	if resp.ReportedSkinfoldSum != 37 {
		t.Errorf("reported sum = %v, want 37", resp.ReportedSkinfoldSum)
	}
}

func TestHandler_SaveMeasurement_BadProtocol(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"evaluation_date":"2024-06-01T00:00:00Z","protocol":"five_fold"}`
	c, _ := patientRequest(e, http.MethodPost, "/api/v1/patients/x/measurements", uuid.New(), body)

	err := h.SaveMeasurement(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_GetMeasurement_NotFound(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/measurements/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.GetMeasurement(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandler_ListMeasurements(t *testing.T) {
	h, svc, e := newTestHandler()

	patientID := uuid.New()
	for _, d := range []time.Time{date(2024, 2, 1), date(2024, 1, 1)} {
		m := validMeasurement(patientID)
		m.EvaluationDate = d
		if err := svc.SaveMeasurement(context.Background(), m); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	c, rec := patientRequest(e, http.MethodGet, "/api/v1/patients/x/measurements", patientID, "")
	if err := h.ListMeasurements(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data  []measurementResponse `json:"data"`
		Total int                   `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Total != 2 || len(resp.Data) != 2 {
		t.Fatalf("total = %d, items = %d", resp.Total, len(resp.Data))
	}
	if !resp.Data[0].EvaluationDate.Before(resp.Data[1].EvaluationDate) {
		t.Error("expected ascending order")
	}
}

func TestHandler_PreviousMeasurement_BadDate(t *testing.T) {
	h, _, e := newTestHandler()

	c, _ := patientRequest(e, http.MethodGet, "/api/v1/patients/x/measurements/previous?before=junk", uuid.New(), "")

	err := h.PreviousMeasurement(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_FirstAndLast(t *testing.T) {
	h, svc, e := newTestHandler()

	patientID := uuid.New()
	for _, d := range []time.Time{date(2024, 1, 5), date(2024, 4, 5)} {
		m := validMeasurement(patientID)
		m.EvaluationDate = d
		if err := svc.SaveMeasurement(context.Background(), m); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	c, rec := patientRequest(e, http.MethodGet, "/api/v1/patients/x/measurements/first", patientID, "")
	if err := h.FirstMeasurement(c); err != nil {
		t.Fatalf("first: %v", err)
	}
	var first measurementResponse
	json.Unmarshal(rec.Body.Bytes(), &first)
	if !first.EvaluationDate.Equal(date(2024, 1, 5)) {
		t.Errorf("first date = %v", first.EvaluationDate)
	}

	c, rec = patientRequest(e, http.MethodGet, "/api/v1/patients/x/measurements/last", patientID, "")
	if err := h.LastMeasurement(c); err != nil {
		t.Fatalf("last: %v", err)
	}
	var last measurementResponse
	json.Unmarshal(rec.Body.Bytes(), &last)
	if !last.EvaluationDate.Equal(date(2024, 4, 5)) {
		t.Errorf("last date = %v", last.EvaluationDate)
	}
}

func TestHandler_DeleteMeasurement(t *testing.T) {
	h, svc, e := newTestHandler()

	m := validMeasurement(uuid.New())
	if err := svc.SaveMeasurement(context.Background(), m); err != nil {
		t.Fatalf("save: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/measurements/"+m.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(m.ID.String())

	if err := h.DeleteMeasurement(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_WatchMeasurements(t *testing.T) {
	h, svc, e := newTestHandler()

	patientID := uuid.New()
	if err := svc.SaveMeasurement(context.Background(), validMeasurement(patientID)); err != nil {
		t.Fatalf("save: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/x/measurements/watch", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(patientID.String())

	done := make(chan error, 1)
	go func() { done <- h.WatchMeasurements(c) }()

	// Give the handler time to flush the initial snapshot, then disconnect.
	// The body is only inspected after the handler has returned.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watch did not stop on disconnect")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: measurements") {
		t.Errorf("missing SSE event line in %q", body)
	}
	if !strings.Contains(body, patientID.String()) {
		t.Error("snapshot should contain the measurement")
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}
}
