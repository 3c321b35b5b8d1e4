package measurement

import (
	"time"

	"github.com/google/uuid"
)

// Protocol selects which skinfold sites were collected for an evaluation and
// which density formula family applies.
type Protocol string

const (
	ProtocolThreeFold Protocol = "three_fold"
	ProtocolSevenFold Protocol = "seven_fold"
	ProtocolUndefined Protocol = "undefined"
)

func (p Protocol) Valid() bool {
	return p == ProtocolThreeFold || p == ProtocolSevenFold || p == ProtocolUndefined
}

// Label returns the display string for the protocol.
func (p Protocol) Label() string {
	switch p {
	case ProtocolThreeFold:
		return "3 Dobras (Jackson/Pollock)"
	case ProtocolSevenFold:
		return "7 Dobras (Jackson/Pollock)"
	default:
		return "Sem Protocolo"
	}
}

// Measurement maps to the measurements table. One row is an immutable
// snapshot of a single evaluation's raw inputs for one patient.
//
// Weight is in kilograms, height in centimeters, skinfolds in millimeters.
// Every numeric field is nullable: an evaluation may record only the three
// sites its protocol needs, or arrive with partial data entry. Absence is kept
// explicit; only ReportedSkinfoldSum ever coerces it to zero.
type Measurement struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	EvaluationDate time.Time `db:"evaluation_date" json:"evaluation_date"`
	WeightKg       *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCm       *float64  `db:"height_cm" json:"height_cm,omitempty"`
	Protocol       Protocol  `db:"protocol" json:"protocol"`
	Chest          *float64  `db:"chest_mm" json:"chest_mm,omitempty"`
	Abdomen        *float64  `db:"abdomen_mm" json:"abdomen_mm,omitempty"`
	Triceps        *float64  `db:"triceps_mm" json:"triceps_mm,omitempty"`
	Midaxillary    *float64  `db:"midaxillary_mm" json:"midaxillary_mm,omitempty"`
	Subscapular    *float64  `db:"subscapular_mm" json:"subscapular_mm,omitempty"`
	Suprailiac     *float64  `db:"suprailiac_mm" json:"suprailiac_mm,omitempty"`
	Thigh          *float64  `db:"thigh_mm" json:"thigh_mm,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// BMI returns weight / height_m². Nil when weight or height is absent or
// height is zero.
func (m *Measurement) BMI() *float64 {
	if m.WeightKg == nil || m.HeightCm == nil || *m.HeightCm == 0 {
		return nil
	}
	heightM := *m.HeightCm / 100.0
	bmi := *m.WeightKg / (heightM * heightM)
	return &bmi
}

// ReportedSkinfoldSum adds every populated skinfold, treating absent sites as
// zero. It is a reporting figure only: the evaluation engine uses its own
// strict sum that refuses to compute when a required site is missing, and the
// two deliberately diverge on partial data.
func (m *Measurement) ReportedSkinfoldSum() float64 {
	var sum float64
	for _, v := range []*float64{m.Chest, m.Abdomen, m.Triceps, m.Midaxillary, m.Subscapular, m.Suprailiac, m.Thigh} {
		if v != nil {
			sum += *v
		}
	}
	return sum
}
