package model

// Company is an employer that publishes job postings.
type Company struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name" validate:"required,min=2,max=200"`
	Website     string `json:"website" validate:"omitempty,url"`
	Location    string `json:"location" validate:"max=200"`
	Description string `gorm:"type:text" json:"description"`

	Jobs []Job `gorm:"foreignKey:CompanyID" json:"jobs,omitempty" validate:"-"`
}
