package measurement

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	measurements map[uuid.UUID]*Measurement
}

func newMockRepo() *mockRepo {
	return &mockRepo{measurements: make(map[uuid.UUID]*Measurement)}
}

func (m *mockRepo) InsertOrReplace(_ context.Context, mm *Measurement) error {
	if mm.ID == uuid.Nil {
		mm.ID = uuid.New()
	}
	cp := *mm
	m.measurements[mm.ID] = &cp
	return nil
}

func (m *mockRepo) Update(_ context.Context, mm *Measurement) error {
	if _, ok := m.measurements[mm.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *mm
	m.measurements[mm.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.measurements[id]; !ok {
		return fmt.Errorf("not found")
	}
	delete(m.measurements, id)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Measurement, error) {
	mm, ok := m.measurements[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return mm, nil
}

func (m *mockRepo) byPatient(patientID uuid.UUID) []*Measurement {
	var result []*Measurement
	for _, mm := range m.measurements {
		if mm.PatientID == patientID {
			result = append(result, mm)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EvaluationDate.Before(result[j].EvaluationDate)
	})
	return result
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Measurement, int, error) {
	all := m.byPatient(patientID)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) First(_ context.Context, patientID uuid.UUID) (*Measurement, error) {
	all := m.byPatient(patientID)
	if len(all) == 0 {
		return nil, fmt.Errorf("not found")
	}
	return all[0], nil
}

func (m *mockRepo) Last(_ context.Context, patientID uuid.UUID) (*Measurement, error) {
	all := m.byPatient(patientID)
	if len(all) == 0 {
		return nil, fmt.Errorf("not found")
	}
	return all[len(all)-1], nil
}

func (m *mockRepo) Before(_ context.Context, patientID uuid.UUID, date time.Time) (*Measurement, error) {
	all := m.byPatient(patientID)
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].EvaluationDate.Before(date) {
			return all[i], nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func validMeasurement(patientID uuid.UUID) *Measurement {
	return &Measurement{
		PatientID:      patientID,
		EvaluationDate: date(2024, 6, 1),
		Protocol:       ProtocolThreeFold,
		WeightKg:       fptr(80),
		HeightCm:       fptr(180),
		Chest:          fptr(10),
		Abdomen:        fptr(15),
		Thigh:          fptr(12),
	}
}

func TestSaveMeasurement(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientID := uuid.New()
	m := validMeasurement(patientID)
	if err := svc.SaveMeasurement(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.measurements) != 1 {
		t.Errorf("expected 1 stored measurement, got %d", len(repo.measurements))
	}
}

func TestSaveMeasurement_Validation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	cases := []struct {
		name   string
		mutate func(*Measurement)
	}{
		{"missing patient", func(m *Measurement) { m.PatientID = uuid.Nil }},
		{"missing date", func(m *Measurement) { m.EvaluationDate = time.Time{} }},
		{"bad protocol", func(m *Measurement) { m.Protocol = "five_fold" }},
		{"empty protocol", func(m *Measurement) { m.Protocol = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMeasurement(uuid.New())
			tc.mutate(m)
			if err := svc.SaveMeasurement(context.Background(), m); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if len(repo.measurements) != 0 {
		t.Errorf("nothing should have been stored, got %d", len(repo.measurements))
	}
}

func TestSaveMeasurement_UpsertIdempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientID := uuid.New()
	m := validMeasurement(patientID)
	m.ID = uuid.New()

	if err := svc.SaveMeasurement(context.Background(), m); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := svc.SaveMeasurement(context.Background(), m); err != nil {
		t.Fatalf("second save: %v", err)
	}

	if len(repo.measurements) != 1 {
		t.Errorf("replay must not duplicate, got %d rows", len(repo.measurements))
	}
}

func TestListByPatient_Ordering(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientID := uuid.New()
	dates := []time.Time{date(2024, 3, 1), date(2024, 1, 1), date(2024, 2, 1)}
	for _, d := range dates {
		m := validMeasurement(patientID)
		m.EvaluationDate = d
		if err := svc.SaveMeasurement(context.Background(), m); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	items, total, err := svc.ListByPatient(context.Background(), patientID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total = %d, len = %d", total, len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].EvaluationDate.Before(items[i-1].EvaluationDate) {
			t.Error("expected ascending evaluation dates")
		}
	}
}

func TestFirstLastBefore(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientID := uuid.New()
	for _, d := range []time.Time{date(2024, 1, 10), date(2024, 2, 10), date(2024, 3, 10)} {
		m := validMeasurement(patientID)
		m.EvaluationDate = d
		if err := svc.SaveMeasurement(context.Background(), m); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	first, err := svc.FirstMeasurement(context.Background(), patientID)
	if err != nil || !first.EvaluationDate.Equal(date(2024, 1, 10)) {
		t.Errorf("first = %v, %v", first, err)
	}
	last, err := svc.LastMeasurement(context.Background(), patientID)
	if err != nil || !last.EvaluationDate.Equal(date(2024, 3, 10)) {
		t.Errorf("last = %v, %v", last, err)
	}

	prev, err := svc.MeasurementBefore(context.Background(), patientID, date(2024, 3, 10))
	if err != nil || !prev.EvaluationDate.Equal(date(2024, 2, 10)) {
		t.Errorf("before = %v, %v", prev, err)
	}

	// Strictly earlier: a measurement on the boundary date is excluded.
	if _, err := svc.MeasurementBefore(context.Background(), patientID, date(2024, 1, 10)); err == nil {
		t.Error("expected no measurement before the first date")
	}
}

func TestWatch_SignalsOnWrite(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientID := uuid.New()
	changes, cancel := svc.Watch(patientID)
	defer cancel()

	if err := svc.SaveMeasurement(context.Background(), validMeasurement(patientID)); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal after save")
	}
}

func TestWatch_OtherPatientDoesNotSignal(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	changes, cancel := svc.Watch(uuid.New())
	defer cancel()

	if err := svc.SaveMeasurement(context.Background(), validMeasurement(uuid.New())); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case <-changes:
		t.Fatal("signal leaked across patients")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeleteMeasurement_Signals(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	patientID := uuid.New()
	m := validMeasurement(patientID)
	if err := svc.SaveMeasurement(context.Background(), m); err != nil {
		t.Fatalf("save: %v", err)
	}

	changes, cancel := svc.Watch(patientID)
	defer cancel()

	if err := svc.DeleteMeasurement(context.Background(), m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal after delete")
	}
	if len(repo.measurements) != 0 {
		t.Error("measurement should be gone")
	}
}
