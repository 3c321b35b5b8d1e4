package measurement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo     MeasurementRepository
	notifier *Notifier
}

func NewService(repo MeasurementRepository) *Service {
	return &Service{repo: repo, notifier: NewNotifier()}
}

func (s *Service) validate(m *Measurement) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient id is required")
	}
	if m.EvaluationDate.IsZero() {
		return fmt.Errorf("evaluation date is required")
	}
	if !m.Protocol.Valid() {
		return fmt.Errorf("invalid protocol: %s", m.Protocol)
	}
	return nil
}

// SaveMeasurement upserts keyed by identity and signals live-view subscribers.
func (s *Service) SaveMeasurement(ctx context.Context, m *Measurement) error {
	if err := s.validate(m); err != nil {
		return err
	}
	if err := s.repo.InsertOrReplace(ctx, m); err != nil {
		return err
	}
	s.notifier.Notify(m.PatientID)
	return nil
}

func (s *Service) UpdateMeasurement(ctx context.Context, m *Measurement) error {
	if err := s.validate(m); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}
	s.notifier.Notify(m.PatientID)
	return nil
}

func (s *Service) DeleteMeasurement(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.Notify(m.PatientID)
	return nil
}

func (s *Service) GetMeasurement(ctx context.Context, id uuid.UUID) (*Measurement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Measurement, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) FirstMeasurement(ctx context.Context, patientID uuid.UUID) (*Measurement, error) {
	return s.repo.First(ctx, patientID)
}

func (s *Service) LastMeasurement(ctx context.Context, patientID uuid.UUID) (*Measurement, error) {
	return s.repo.Last(ctx, patientID)
}

func (s *Service) MeasurementBefore(ctx context.Context, patientID uuid.UUID, date time.Time) (*Measurement, error) {
	return s.repo.Before(ctx, patientID, date)
}

// Watch subscribes to change signals for one patient's measurements.
func (s *Service) Watch(patientID uuid.UUID) (<-chan struct{}, func()) {
	return s.notifier.Subscribe(patientID)
}

// NotifyChanged lets collaborators that write measurements through their own
// path (the evaluation orchestrator) wake this service's subscribers.
func (s *Service) NotifyChanged(patientID uuid.UUID) {
	s.notifier.Notify(patientID)
}
