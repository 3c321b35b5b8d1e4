package evaluation

import (
	"time"

	"github.com/tavorabr/avaliacao-fisica-api/internal/domain/measurement"
	"github.com/tavorabr/avaliacao-fisica-api/internal/domain/patient"
)

// Engine estimates body density and body-fat percentage from skinfold
// measurements using the Jackson/Pollock generalized equations and the Siri
// conversion. It is a pure function of its inputs plus the current date (for
// the patient's age) and is safe for concurrent use.
//
// A nil result means "cannot estimate" — partial data entry is an expected,
// common case, not a fault, so the engine never returns an error.
type Engine struct {
	now func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// BodyFatPercent converts the measurement's skinfolds into a body-fat
// percentage for the given patient. Nil when either input is absent, the
// protocol is undefined, any required skinfold for the protocol/sex branch is
// missing, or the computed density is non-physical (≤ 0). The percentage is
// not clamped; pathological inputs can push it below 0 or above 100.
func (e *Engine) BodyFatPercent(m *measurement.Measurement, p *patient.Patient) *float64 {
	density := e.BodyDensity(m, p)
	if density == nil || *density <= 0 {
		return nil
	}
	pct := 495.0/(*density) - 450.0
	return &pct
}

// BodyDensity computes body density (g/cm³) from the strict skinfold sum and
// the patient's age. The formula is dispatched on (protocol, sex).
func (e *Engine) BodyDensity(m *measurement.Measurement, p *patient.Patient) *float64 {
	if m == nil || p == nil {
		return nil
	}

	var sum *float64
	switch m.Protocol {
	case measurement.ProtocolThreeFold:
		switch p.Sex {
		case patient.SexMale:
			sum = strictSum(m.Chest, m.Abdomen, m.Thigh)
		case patient.SexFemale:
			sum = strictSum(m.Triceps, m.Suprailiac, m.Thigh)
		default:
			return nil
		}
	case measurement.ProtocolSevenFold:
		sum = strictSum(m.Chest, m.Abdomen, m.Triceps, m.Suprailiac, m.Thigh, m.Subscapular, m.Midaxillary)
	default:
		return nil
	}
	if sum == nil {
		return nil
	}

	s := *sum
	s2 := s * s
	age := float64(p.AgeYears(e.now()))

	var density float64
	switch m.Protocol {
	case measurement.ProtocolThreeFold:
		switch p.Sex {
		case patient.SexMale:
			density = 1.10938 - 0.0008267*s + 0.0000016*s2 - 0.0002574*age
		case patient.SexFemale:
			density = 1.0994921 - 0.0009929*s + 0.0000023*s2 - 0.0001392*age
		default:
			return nil
		}
	case measurement.ProtocolSevenFold:
		switch p.Sex {
		case patient.SexMale:
			density = 1.112 - 0.00043499*s + 0.00000055*s2 - 0.00028826*age
		case patient.SexFemale:
			density = 1.097 - 0.00046971*s + 0.00000056*s2 - 0.00012828*age
		default:
			return nil
		}
	default:
		return nil
	}
	return &density
}

// strictSum adds the given skinfolds, refusing to produce a value when any is
// absent. It deliberately differs from Measurement.ReportedSkinfoldSum, which
// zero-fills absent sites for display.
func strictSum(folds ...*float64) *float64 {
	var sum float64
	for _, f := range folds {
		if f == nil {
			return nil
		}
		sum += *f
	}
	return &sum
}
