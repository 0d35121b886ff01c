package models

import "time"

// PublicComplaint is the citizen-facing projection of a complaint.
// It never carries reporter identity.
type PublicComplaint struct {
	ComplaintID   int       `json:"complaintId"`
	ReferenceCode string    `json:"referenceCode"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	Location      string    `json:"location"`
	SubmittedAt   time.Time `json:"submittedAt"`
	CategoryName  string    `json:"categoryName"`
}

// NewComplaint is the payload accepted by the submission endpoint.
type NewComplaint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CategoryID  int    `json:"categoryId"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// Department is a municipal department reference row.
type Department struct {
	DepartmentID   int    `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Location       string `json:"location"`
	OfficePhone    string `json:"officePhone"`
	OfficeEmail    string `json:"officeEmail"`
}

// Category classifies complaints and carries SLA targets.
type Category struct {
	CategoryID     int    `json:"categoryId"`
	CategoryName   string `json:"categoryName"`
	SlaTargetHours int    `json:"slaTargetHours"`
	RiskLevel      string `json:"riskLevel"`
}
