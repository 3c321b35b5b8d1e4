package patient

import (
	"time"

	"github.com/google/uuid"
)

// Sex is the biological sex of a patient. The skinfold density formulas are
// branched on it, so it is a closed two-value set rather than free text.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Patient maps to the patients table.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	BirthDate time.Time `db:"birth_date" json:"birth_date"`
	Sex       Sex       `db:"sex" json:"sex"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AgeYears returns the patient's age in whole years at the given instant.
// It is always derived from the birth date, never stored.
func (p *Patient) AgeYears(now time.Time) int {
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
