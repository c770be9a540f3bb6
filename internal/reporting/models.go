package reporting

import "time"

// TimeRange bounds a report. A zero From or To leaves that side open.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r TimeRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// PlacementSummary aggregates placement activity over the caller's scope.
type PlacementSummary struct {
	Range TimeRange `json:"range"`

	OpenOpenings   int `json:"open_openings"`
	Applications   int `json:"applications"`
	Interviews     int `json:"interviews"`
	OffersMade     int `json:"offers_made"`
	OffersAccepted int `json:"offers_accepted"`
	OffersRejected int `json:"offers_rejected"`

	StudentsApplied int `json:"students_applied"`
	StudentsPlaced  int `json:"students_placed"`

	// PlacementRate is StudentsPlaced / StudentsApplied, 0 when nobody applied.
	PlacementRate float64 `json:"placement_rate"`
	AverageSalary float64 `json:"average_salary"`

	Companies []CompanySummary `json:"companies"`
}

type CompanySummary struct {
	CompanyID      int64 `json:"company_id"`
	Applications   int   `json:"applications"`
	OffersMade     int   `json:"offers_made"`
	OffersAccepted int   `json:"offers_accepted"`
}

// DepartmentSummary groups student profiles in scope by branch.
// AverageCTC averages each placed student's best accepted salary.
type DepartmentSummary struct {
	Department     string  `json:"department"`
	TotalStudents  int     `json:"total_students"`
	PlacedStudents int     `json:"placed_students"`
	AverageCTC     float64 `json:"average_ctc"`
}
