package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"complaintdesk/internal/database"
)

// testNow is the fixed instant all service tests compute windows from.
var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	return db
}

type testComplaint struct {
	title        string
	description  string
	status       string
	submittedAt  time.Time
	categoryID   int
	departmentID int
}

func insertComplaints(t *testing.T, db *database.DB, complaints []testComplaint) {
	t.Helper()
	for i, c := range complaints {
		var categoryID, departmentID any
		if c.categoryID > 0 {
			categoryID = c.categoryID
		}
		if c.departmentID > 0 {
			departmentID = c.departmentID
		}
		_, err := db.Exec(`
			INSERT INTO complaint (reference_code, title, description, status, submitted_at, category_id, department_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			// Unique per test run; uniqueness constraint only.
			time.Now().Format("150405.000000000")+"-"+c.title+"-"+string(rune('a'+i)),
			c.title, c.description, c.status,
			c.submittedAt.Format(sqliteTimeLayout), categoryID, departmentID)
		if err != nil {
			t.Fatalf("Failed to insert fixture complaint %q: %v", c.title, err)
		}
	}
}

func standardFixtures() []testComplaint {
	return []testComplaint{
		{"Pothole on Main Street", "Large pothole near the junction", "Pending", testNow.Add(-3 * time.Hour), 1, 1},
		{"Broken street light", "Light out on Jalan Besar", "Resolved", testNow.AddDate(0, 0, -3), 4, 1},
		{"Loud construction noise", "Drilling at night", "Pending", testNow.AddDate(0, 0, -10), 2, 2},
		{"Overflowing bin", "Bin not collected for a week", "In Progress", testNow.AddDate(0, 0, -60), 3, 0},
	}
}

func TestDescribeSchemaIsStaticAndMarksOmissions(t *testing.T) {
	svc := NewSafeDataService(nil) // pure, no I/O

	desc := svc.DescribeSchema()
	if desc == "" {
		t.Fatal("schema description should not be empty")
	}
	if desc != svc.DescribeSchema() {
		t.Error("schema description should be identical across calls")
	}

	// The omission marker is an auditable contract, not an accident.
	if want := "SENSITIVE FIELDS OMITTED"; !strings.Contains(desc, want) {
		t.Errorf("schema description missing %q marker", want)
	}
	for _, forbidden := range []string{"PasswordHash", "password_hash", "VerificationToken", "verification_token"} {
		if strings.Contains(desc, forbidden) {
			t.Errorf("schema description leaks sensitive field %q", forbidden)
		}
	}
}

func TestComputeStatsCounts(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	svc := NewSafeDataService(db)

	stats, err := svc.ComputeStats(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", stats.Resolved)
	}
	if stats.Pending != 2 {
		t.Errorf("Pending = %d, want 2", stats.Pending)
	}
	if stats.NewToday != 1 {
		t.Errorf("NewToday = %d, want 1", stats.NewToday)
	}
	if stats.NewLast7Days != 2 {
		t.Errorf("NewLast7Days = %d, want 2", stats.NewLast7Days)
	}
	if stats.NewThisMonth != 3 {
		t.Errorf("NewThisMonth = %d, want 3", stats.NewThisMonth)
	}
}

func TestComputeStatsNonUTCNow(t *testing.T) {
	db := newTestDB(t)
	svc := NewSafeDataService(db)

	// 01:00 local on the 15th is still the 14th in UTC. The stored timestamp
	// is written in UTC, so the window boundaries must agree on that zone or
	// a complaint submitted right now falls out of "new today".
	now := time.Date(2026, 8, 15, 1, 0, 0, 0, time.FixedZone("MYT", 8*3600))
	insertComplaints(t, db, []testComplaint{
		{"Pothole on Main Street", "Fresh report", "Pending", now.UTC(), 1, 1},
	})

	stats, err := svc.ComputeStats(context.Background(), now)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}
	if stats.NewToday != 1 {
		t.Errorf("NewToday = %d, want 1: complaint submitted at the current instant must count as new today", stats.NewToday)
	}
	if stats.NewThisMonth != 1 {
		t.Errorf("NewThisMonth = %d, want 1", stats.NewThisMonth)
	}
	if len(stats.Daily) != 1 {
		t.Errorf("Daily has %d entries, want 1: %+v", len(stats.Daily), stats.Daily)
	}
}

func TestComputeStatsAggregateIdentities(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	svc := NewSafeDataService(db)

	stats, err := svc.ComputeStats(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}

	if stats.Resolved+stats.Pending > stats.Total {
		t.Errorf("resolved (%d) + pending (%d) exceeds total (%d)", stats.Resolved, stats.Pending, stats.Total)
	}
	if stats.NewToday > stats.Total {
		t.Errorf("newToday (%d) exceeds total (%d)", stats.NewToday, stats.Total)
	}
	if stats.NewLast7Days > stats.Total {
		t.Errorf("newLast7Days (%d) exceeds total (%d)", stats.NewLast7Days, stats.Total)
	}
}

func TestComputeStatsDailyBreakdown(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	svc := NewSafeDataService(db)

	stats, err := svc.ComputeStats(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}

	// The 60-day-old complaint must be outside the trailing-30-day window.
	if len(stats.Daily) != 3 {
		t.Fatalf("Daily has %d entries, want 3: %+v", len(stats.Daily), stats.Daily)
	}
	for i := 1; i < len(stats.Daily); i++ {
		if stats.Daily[i-1].Date < stats.Daily[i].Date {
			t.Errorf("Daily not in descending date order: %v before %v", stats.Daily[i-1].Date, stats.Daily[i].Date)
		}
	}
}

func TestComputeStatsDepartmentBreakdown(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	svc := NewSafeDataService(db)

	stats, err := svc.ComputeStats(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}

	byName := map[string]int{}
	for _, d := range stats.ByDepartment {
		byName[d.Name] = d.Count
	}
	if byName["Public Works"] != 2 {
		t.Errorf("Public Works count = %d, want 2", byName["Public Works"])
	}
	if byName["Sanitation"] != 1 {
		t.Errorf("Sanitation count = %d, want 1", byName["Sanitation"])
	}
}

func TestComputeStatsEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewSafeDataService(db)

	stats, err := svc.ComputeStats(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ComputeStats on empty database should succeed: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
	// Empty sub-aggregates are absent sections, not errors.
	if len(stats.Daily) != 0 {
		t.Errorf("Daily should be empty, got %+v", stats.Daily)
	}
	if len(stats.ByDepartment) != 0 {
		t.Errorf("ByDepartment should be empty, got %+v", stats.ByDepartment)
	}
}

func TestSearchMatchesTitleDescriptionAndCategory(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	svc := NewSafeDataService(db)

	tests := []struct {
		name string
		term string
		want int
	}{
		{"title match, mixed case", "POTHOLE", 1},
		{"description match", "jalan besar", 1},
		{"category match", "noise", 1}, // matches both title and category of the same row
		{"no match", "flooding", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hits, err := svc.Search(context.Background(), tc.term, 5)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", tc.term, err)
			}
			if len(hits) != tc.want {
				t.Errorf("Search(%q) returned %d hits, want %d", tc.term, len(hits), tc.want)
			}
		})
	}
}

func TestSearchEmptyTermReturnsNothing(t *testing.T) {
	db := newTestDB(t)
	insertComplaints(t, db, standardFixtures())
	svc := NewSafeDataService(db)

	for _, term := range []string{"", "   ", "\t\n"} {
		hits, err := svc.Search(context.Background(), term, 5)
		if err != nil {
			t.Fatalf("Search(%q) should not error: %v", term, err)
		}
		if len(hits) != 0 {
			t.Errorf("Search(%q) returned %d hits, want 0", term, len(hits))
		}
	}
}

func TestSearchOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	var fixtures []testComplaint
	for i := 0; i < 8; i++ {
		fixtures = append(fixtures, testComplaint{
			title:       "Pothole report",
			description: "Another pothole",
			status:      "Pending",
			submittedAt: testNow.AddDate(0, 0, -i),
			categoryID:  1,
		})
	}
	insertComplaints(t, db, fixtures)
	svc := NewSafeDataService(db)

	hits, err := svc.Search(context.Background(), "pothole", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 5 {
		t.Fatalf("Search returned %d hits, want limit of 5", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].SubmittedAt.Before(hits[i].SubmittedAt) {
			t.Errorf("hits not ordered by recency: %v before %v", hits[i-1].SubmittedAt, hits[i].SubmittedAt)
		}
	}
}
