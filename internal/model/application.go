package model

// Application review states.
const (
	ApplicationSubmitted = "submitted"
	ApplicationReviewing = "reviewing"
	ApplicationRejected  = "rejected"
	ApplicationHired     = "hired"
)

// Application is a candidate's submission to a Job. ResumePath is the object
// key of the uploaded résumé, empty until one is uploaded.
type Application struct {
	Base
	JobID          string `gorm:"size:36;index;uniqueIndex:uq_applications_job_candidate_email,priority:1;not null" json:"job_id" validate:"required,uuid"`
	Job            *Job   `gorm:"foreignKey:JobID" json:"job,omitempty" validate:"-"`
	CandidateName  string `gorm:"not null" json:"candidate_name" validate:"required,min=2,max=200"`
	CandidateEmail string `gorm:"index;uniqueIndex:uq_applications_job_candidate_email,priority:2;not null" json:"candidate_email" validate:"required,email"`
	CoverLetter    string `gorm:"type:text" json:"cover_letter" validate:"max=10000"`
	ResumePath     string `json:"resume_path"`
	Status         string `json:"status" validate:"omitempty,oneof=submitted reviewing rejected hired"`
}
