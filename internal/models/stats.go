package models

import "time"

// SystemStats is a point-in-time aggregate over the complaint store.
// It is computed fresh per call and never cached; every window boundary is
// derived from a single captured "now".
type SystemStats struct {
	Total        int
	Resolved     int
	Pending      int
	NewToday     int
	NewLast7Days int
	NewThisMonth int
	Daily        []DailyCount      // trailing 30 days, most recent first
	ByDepartment []DepartmentCount // departments with at least one complaint
}

// DailyCount is one day of the trailing-30-day breakdown.
type DailyCount struct {
	Date  string // yyyy-mm-dd
	Count int
}

// DepartmentCount is one department's share of the complaint total.
type DepartmentCount struct {
	Name  string
	Count int
}

// SearchHit is the minimal complaint projection returned by the safe search.
type SearchHit struct {
	ComplaintID  int
	Title        string
	Status       string
	SubmittedAt  time.Time
	CategoryName string
}
