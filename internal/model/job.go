package model

// Employment types accepted for a job posting.
const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
)

// Job posting lifecycle. Only open jobs accept applications.
const (
	JobStatusDraft  = "draft"
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Job is a posting published by a Company.
type Job struct {
	Base
	CompanyID      string   `gorm:"size:36;index;not null" json:"company_id" validate:"required,uuid"`
	Company        *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty" validate:"-"`
	Title          string   `gorm:"not null" json:"title" validate:"required,min=2,max=200"`
	Description    string   `gorm:"type:text" json:"description"`
	Location       string   `json:"location" validate:"max=200"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract internship"`
	Remote         bool     `json:"remote"`
	SalaryMin      int64    `json:"salary_min" validate:"gte=0"`
	SalaryMax      int64    `json:"salary_max" validate:"gte=0"`
	Currency       string   `json:"currency" validate:"omitempty,len=3"`
	Status         string   `gorm:"index" json:"status" validate:"omitempty,oneof=draft open closed"`
}

// AcceptsApplications reports whether candidates may apply.
func (j *Job) AcceptsApplications() bool {
	return j.Status == JobStatusOpen
}
