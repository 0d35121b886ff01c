package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"complaintdesk/internal/database"
	"complaintdesk/internal/models"
)

// sqliteTimeLayout matches how complaint.submitted_at is stored. Lexicographic
// order on this layout equals chronological order, which the window queries
// rely on.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// safeSchemaDescription is the allow-list of fields the AI is permitted to
// know about, encoded as a compile-time constant. It is NEVER derived from the
// live schema: a new column must be added here deliberately, after review,
// or the model never hears of it. Treat edits to this text as security
// changes.
const safeSchemaDescription = `SYSTEM DATABASE SCHEMA (READ-ONLY CONTEXT):
------------------------------------------------
Table: Department
- DepartmentId (int, PK)
- DepartmentName (string): Name of the municipal department
- Location (string): Physical office location
- OfficePhone (string): Public contact phone
- OfficeEmail (string): Public contact email

Table: Category
- CategoryId (int, PK)
- CategoryName (string): Type of complaint (e.g. Infrastructure, Noise)
- SlaTargetHours (int): Target resolution time in hours
- RiskLevel (string): 'Low', 'Medium', 'High'

Table: Complaint
- ComplaintId (int, PK)
- Title (string): Summary of the issue
- Description (string): Detailed report
- Status (string): 'Pending', 'In Progress', 'Resolved', 'Rejected'
- Priority (string): 'Low', 'Medium', 'High', 'Critical'
- Location (string): Where the issue occurred
- SubmittedAt (DateTime): When it was reported
- IsAnonymous (bool): If true, reporter identity is hidden

Table: Citizen (User)
- CitizenId (int, PK)
- Name (string): Full name
- IsActive (bool): Account status
* SENSITIVE FIELDS OMITTED (Passwords, Tokens, etc.) *
`

// SafeDataService is the firewall between the AI layer and the database.
// Everything it returns is safe to forward to an external model: fields are
// explicitly allow-listed and aggregates carry no row-level identity.
type SafeDataService struct {
	db *database.DB
}

// NewSafeDataService creates a new safe data service
func NewSafeDataService(db *database.DB) *SafeDataService {
	return &SafeDataService{db: db}
}

// DescribeSchema returns the static allow-listed schema description.
// Pure, no I/O.
func (s *SafeDataService) DescribeSchema() string {
	return safeSchemaDescription
}

// ComputeStats returns a fresh aggregate snapshot. All time windows are
// derived from the single now argument so a call is reproducible and day
// boundaries cannot drift between sub-queries. Any query failure is returned
// as-is: partial "safe" data is worse than a failed chat turn.
func (s *SafeDataService) ComputeStats(ctx context.Context, now time.Time) (*models.SystemStats, error) {
	// submitted_at is stored formatted in UTC. Boundaries must be derived in
	// the same zone or the lexicographic comparison miscounts anything
	// between local and UTC midnight.
	now = now.UTC()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sevenDaysAgo := now.AddDate(0, 0, -7)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	thirtyDaysAgo := today.AddDate(0, 0, -30)

	stats := &models.SystemStats{}

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.Total, "SELECT COUNT(*) FROM complaint", nil},
		{&stats.Resolved, "SELECT COUNT(*) FROM complaint WHERE status = 'Resolved'", nil},
		{&stats.Pending, "SELECT COUNT(*) FROM complaint WHERE status = 'Pending'", nil},
		{&stats.NewToday, "SELECT COUNT(*) FROM complaint WHERE submitted_at >= ?", []any{today.Format(sqliteTimeLayout)}},
		{&stats.NewLast7Days, "SELECT COUNT(*) FROM complaint WHERE submitted_at >= ?", []any{sevenDaysAgo.Format(sqliteTimeLayout)}},
		{&stats.NewThisMonth, "SELECT COUNT(*) FROM complaint WHERE submitted_at >= ?", []any{thisMonth.Format(sqliteTimeLayout)}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats count query failed: %w", err)
		}
	}

	daily, err := s.dailyBreakdown(ctx, thirtyDaysAgo)
	if err != nil {
		return nil, err
	}
	stats.Daily = daily

	byDept, err := s.departmentBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	stats.ByDepartment = byDept

	return stats, nil
}

func (s *SafeDataService) dailyBreakdown(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(submitted_at), COUNT(*)
		FROM complaint
		WHERE submitted_at >= ?
		GROUP BY date(submitted_at)
		ORDER BY date(submitted_at) DESC`,
		since.Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("daily breakdown query failed: %w", err)
	}
	defer rows.Close()

	var daily []models.DailyCount
	for rows.Next() {
		var d models.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("daily breakdown scan failed: %w", err)
		}
		daily = append(daily, d)
	}
	return daily, rows.Err()
}

func (s *SafeDataService) departmentBreakdown(ctx context.Context) ([]models.DepartmentCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.department_name, COUNT(c.complaint_id)
		FROM department d
		JOIN complaint c ON c.department_id = d.department_id
		GROUP BY d.department_name
		ORDER BY d.department_name`)
	if err != nil {
		return nil, fmt.Errorf("department breakdown query failed: %w", err)
	}
	defer rows.Close()

	var byDept []models.DepartmentCount
	for rows.Next() {
		var d models.DepartmentCount
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, fmt.Errorf("department breakdown scan failed: %w", err)
		}
		byDept = append(byDept, d)
	}
	return byDept, rows.Err()
}

// Search finds complaints whose title, description, or category name contains
// the term (case-insensitive), newest first, capped at limit. An empty or
// whitespace-only term yields an empty result, not an error. The projection
// is fixed: id, title, status, submission time, category — nothing else.
func (s *SafeDataService) Search(ctx context.Context, term string, limit int) ([]models.SearchHit, error) {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	pattern := "%" + term + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.complaint_id, c.title, c.status, c.submitted_at, COALESCE(cat.category_name, '')
		FROM complaint c
		LEFT JOIN category cat ON cat.category_id = c.category_id
		WHERE lower(c.title) LIKE ?
		   OR lower(c.description) LIKE ?
		   OR lower(COALESCE(cat.category_name, '')) LIKE ?
		ORDER BY c.submitted_at DESC
		LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("complaint search query failed: %w", err)
	}
	defer rows.Close()

	var hits []models.SearchHit
	for rows.Next() {
		var h models.SearchHit
		var submitted string
		if err := rows.Scan(&h.ComplaintID, &h.Title, &h.Status, &submitted, &h.CategoryName); err != nil {
			return nil, fmt.Errorf("complaint search scan failed: %w", err)
		}
		if t, perr := time.Parse(sqliteTimeLayout, submitted); perr == nil {
			h.SubmittedAt = t
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
