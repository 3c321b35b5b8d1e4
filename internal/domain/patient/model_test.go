package patient

import (
	"testing"
	"time"
)

func TestAgeYears(t *testing.T) {
	now := time.Date(2024, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{"birthday today", time.Date(1994, 8, 31, 0, 0, 0, 0, time.UTC), 30},
		{"birthday tomorrow", time.Date(1994, 9, 1, 0, 0, 0, 0, time.UTC), 29},
		{"birthday yesterday", time.Date(1994, 8, 30, 0, 0, 0, 0, time.UTC), 30},
		{"newborn", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), 0},
		{"leap day birth before anniversary", time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), 24},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Patient{BirthDate: tc.birth}
			if got := p.AgeYears(now); got != tc.want {
				t.Errorf("AgeYears = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSexValid(t *testing.T) {
	if !SexMale.Valid() || !SexFemale.Valid() {
		t.Error("male and female must be valid")
	}
	if Sex("other").Valid() {
		t.Error("unknown sex must be invalid")
	}
	if Sex("").Valid() {
		t.Error("empty sex must be invalid")
	}
}
