package evaluation

import (
	"github.com/google/uuid"
)

// Result is the full outcome of one evaluation. It is computed fresh on every
// request and never persisted; only the input measurement is stored.
//
// Body-fat figures are pointers: when the measurement lacks the skinfolds its
// protocol requires, the evaluation still succeeds with BMI alone and the
// composition fields stay nil.
type Result struct {
	EvaluationID        uuid.UUID `json:"evaluation_id"`
	PatientID           uuid.UUID `json:"patient_id"`
	EvaluationDate      string    `json:"evaluation_date"`
	BMI                 float64   `json:"bmi"`
	BMIClass            string    `json:"bmi_class"`
	BodyDensity         *float64  `json:"body_density,omitempty"`
	BodyFatPercent      *float64  `json:"body_fat_percent,omitempty"`
	FatMassKg           *float64  `json:"fat_mass_kg,omitempty"`
	LeanMassKg          *float64  `json:"lean_mass_kg,omitempty"`
	ReportedSkinfoldSum float64   `json:"reported_skinfold_sum"`
	Protocol            string    `json:"protocol"`
}

// ClassifyBMI maps a BMI value to its band label. Bands are half-open on the
// lower bound: exactly 18.5, 25.0 and 30.0 fall into the higher band.
func ClassifyBMI(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Baixo Peso"
	case bmi < 25.0:
		return "Peso Normal"
	case bmi < 30.0:
		return "Sobrepeso"
	default:
		return "Obesidade"
	}
}
