package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tavorabr/avaliacao-fisica-api/internal/domain/measurement"
	"github.com/tavorabr/avaliacao-fisica-api/internal/domain/patient"
)

// ErrInvalidInput marks a caller contract violation (weight or height absent
// or non-positive). It is distinct from "insufficient data for body fat",
// which yields a partial result rather than a failure.
var ErrInvalidInput = errors.New("invalid input")

// PatientStore is the slice of the patient collaborator the orchestrator
// needs: the patient's birth date and sex drive the formulas.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// MeasurementStore persists the input measurement. InsertOrReplace is
// idempotent on measurement identity.
type MeasurementStore interface {
	InsertOrReplace(ctx context.Context, m *measurement.Measurement) error
}

// Service orchestrates a full evaluation: validation, BMI, body composition
// via the Engine, the fat/lean mass split, and persistence of the input
// measurement. The measurement is written only after all computation has
// succeeded, and before success is signaled to any observer.
type Service struct {
	engine       *Engine
	patients     PatientStore
	measurements MeasurementStore
	now          func() time.Time
}

func NewService(engine *Engine, patients PatientStore, measurements MeasurementStore) *Service {
	return &Service{
		engine:       engine,
		patients:     patients,
		measurements: measurements,
		now:          time.Now,
	}
}

// PerformAndSave runs one evaluation for the given patient and persists the
// input measurement. The patient's age is derived from the stored birth date;
// callers never supply it.
func (s *Service) PerformAndSave(ctx context.Context, patientID uuid.UUID, m *measurement.Measurement) (*Result, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient %s: %w", patientID, err)
	}

	if m.WeightKg == nil || *m.WeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight must be greater than zero", ErrInvalidInput)
	}
	if m.HeightCm == nil || *m.HeightCm <= 0 {
		return nil, fmt.Errorf("%w: height must be greater than zero", ErrInvalidInput)
	}

	weight := *m.WeightKg
	heightM := *m.HeightCm / 100.0
	bmi := weight / (heightM * heightM)

	density := s.engine.BodyDensity(m, p)
	bodyFat := s.engine.BodyFatPercent(m, p)

	var fatMass, leanMass *float64
	if bodyFat != nil {
		fm := weight * (*bodyFat) / 100.0
		lm := weight - fm
		fatMass, leanMass = &fm, &lm
	}

	m.PatientID = patientID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.EvaluationDate.IsZero() {
		m.EvaluationDate = s.now()
	}
	if err := s.measurements.InsertOrReplace(ctx, m); err != nil {
		return nil, fmt.Errorf("save measurement: %w", err)
	}

	return &Result{
		EvaluationID:        uuid.New(),
		PatientID:           patientID,
		EvaluationDate:      s.now().Format("2006-01-02"),
		BMI:                 bmi,
		BMIClass:            ClassifyBMI(bmi),
		BodyDensity:         density,
		BodyFatPercent:      bodyFat,
		FatMassKg:           fatMass,
		LeanMassKg:          leanMass,
		ReportedSkinfoldSum: m.ReportedSkinfoldSum(),
		Protocol:            m.Protocol.Label(),
	}, nil
}
