package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"complaintdesk/internal/database"
	"complaintdesk/internal/models"
)

// ComplaintService owns complaint reads and writes for the API layer.
type ComplaintService struct {
	db *database.DB
}

// NewComplaintService creates a new complaint service
func NewComplaintService(db *database.DB) *ComplaintService {
	return &ComplaintService{db: db}
}

// PublicComplaints returns the newest complaints in their public projection,
// without reporter identity.
func (s *ComplaintService) PublicComplaints(ctx context.Context, limit int) ([]models.PublicComplaint, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.complaint_id, c.reference_code, c.title, c.description, c.status,
		       c.priority, c.location, c.submitted_at, COALESCE(cat.category_name, '')
		FROM complaint c
		LEFT JOIN category cat ON cat.category_id = c.category_id
		ORDER BY c.submitted_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.PublicComplaint
	for rows.Next() {
		var pc models.PublicComplaint
		var submitted string
		if err := rows.Scan(&pc.ComplaintID, &pc.ReferenceCode, &pc.Title, &pc.Description,
			&pc.Status, &pc.Priority, &pc.Location, &submitted, &pc.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		if t, perr := time.Parse(sqliteTimeLayout, submitted); perr == nil {
			pc.SubmittedAt = t
		}
		complaints = append(complaints, pc)
	}
	return complaints, rows.Err()
}

// Create validates and stores a new complaint. The reference code is the
// public identifier printed on receipts; the numeric id stays internal.
func (s *ComplaintService) Create(ctx context.Context, input models.NewComplaint) (*models.PublicComplaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, fmt.Errorf("complaint title is required")
	}
	if description == "" {
		return nil, fmt.Errorf("complaint description is required")
	}

	referenceCode := "CMP-" + strings.ToUpper(uuid.NewString()[:8])
	submittedAt := time.Now().UTC()

	var categoryID *int
	var categoryName string
	if input.CategoryID > 0 {
		err := s.db.QueryRowContext(ctx,
			"SELECT category_name FROM category WHERE category_id = ?",
			input.CategoryID).Scan(&categoryName)
		if err != nil {
			return nil, fmt.Errorf("unknown category %d", input.CategoryID)
		}
		categoryID = &input.CategoryID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO complaint (reference_code, title, description, status, priority, location, is_anonymous, submitted_at, category_id)
		VALUES (?, ?, ?, 'Pending', 'Medium', ?, ?, ?, ?)`,
		referenceCode, title, description,
		strings.TrimSpace(input.Location), boolToInt(input.IsAnonymous),
		submittedAt.Format(sqliteTimeLayout), categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert complaint: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read complaint id: %w", err)
	}

	return &models.PublicComplaint{
		ComplaintID:   int(id),
		ReferenceCode: referenceCode,
		Title:         title,
		Description:   description,
		Status:        "Pending",
		Priority:      "Medium",
		Location:      strings.TrimSpace(input.Location),
		SubmittedAt:   submittedAt,
		CategoryName:  categoryName,
	}, nil
}

// Categories returns all complaint categories, name-ordered, for submission
// forms and filters.
func (s *ComplaintService) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, category_name, sla_target_hours, risk_level
		FROM category ORDER BY category_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.SlaTargetHours, &c.RiskLevel); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Departments returns all municipal departments with their public contacts.
func (s *ComplaintService) Departments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT department_id, department_name, location, office_phone, office_email
		FROM department ORDER BY department_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.DepartmentID, &d.DepartmentName, &d.Location, &d.OfficePhone, &d.OfficeEmail); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// RecentOpenCandidates returns the newest unresolved complaints, excluding
// one id, in the shape the duplication checker consumes.
func (s *ComplaintService) RecentOpenCandidates(ctx context.Context, excludeID, limit int) ([]DuplicationCandidate, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT complaint_id, reference_code, title, description
		FROM complaint
		WHERE status NOT IN ('Resolved', 'Rejected') AND complaint_id != ?
		ORDER BY submitted_at DESC
		LIMIT ?`, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplication candidates: %w", err)
	}
	defer rows.Close()

	var candidates []DuplicationCandidate
	for rows.Next() {
		var c DuplicationCandidate
		if err := rows.Scan(&c.ComplaintID, &c.ReferenceCode, &c.Title, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan duplication candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
