package core

import "fmt"

// Period is a named historical start anchor for a precomputed artifact.
type Period string

const (
	// PeriodAll starts at the earliest available data.
	PeriodAll Period = "all"
	// Period2000 starts at the dot-com era anchor.
	Period2000 Period = "2000"
	// PeriodCovid starts at the COVID crash anchor.
	PeriodCovid Period = "covid"
)

// InceptionDate is the earliest date synthetic series cover (NASDAQ inception).
const InceptionDate = "1971-02-08"

// StartDate returns the period's start anchor.
func (p Period) StartDate() string {
	switch p {
	case Period2000:
		return "2000-01-01"
	case PeriodCovid:
		return "2020-03-13"
	default:
		return InceptionDate
	}
}

// IsValid reports whether p is a known period.
func (p Period) IsValid() bool {
	switch p {
	case PeriodAll, Period2000, PeriodCovid:
		return true
	}
	return false
}

// ArtifactFilename returns the artifact file name for a mode and period.
func ArtifactFilename(mode Mode, period Period) string {
	switch period {
	case Period2000, PeriodCovid:
		return fmt.Sprintf("precomputed_simulation_%s_%s.json", mode.Name, period)
	}
	if mode.Name == ModeDefault {
		return "precomputed_simulation.json"
	}
	return fmt.Sprintf("precomputed_simulation_%s.json", mode.Name)
}
