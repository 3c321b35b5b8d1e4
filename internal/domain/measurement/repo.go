package measurement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MeasurementRepository interface {
	// InsertOrReplace upserts keyed by measurement identity. Calling it twice
	// with the same row leaves the store in the same observable state.
	InsertOrReplace(ctx context.Context, m *Measurement) error
	Update(ctx context.Context, m *Measurement) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Measurement, error)
	// ListByPatient returns the patient's measurements ascending by
	// evaluation date.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Measurement, int, error)
	First(ctx context.Context, patientID uuid.UUID) (*Measurement, error)
	Last(ctx context.Context, patientID uuid.UUID) (*Measurement, error)
	// Before returns the most recent measurement strictly earlier than date.
	Before(ctx context.Context, patientID uuid.UUID, date time.Time) (*Measurement, error)
}
