package entities

import (
	"fmt"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationViewed    ApplicationStatus = "viewed"
	ApplicationContacted ApplicationStatus = "contacted"
	ApplicationRejected  ApplicationStatus = "rejected"
)

func ToApplicationStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case ApplicationPending, ApplicationViewed, ApplicationContacted, ApplicationRejected:
		return ApplicationStatus(s), nil
	default:
		return "", fmt.Errorf("invalid application status: %q", s)
	}
}

type JobApplication struct {
	ID            string            `json:"id"`
	StudentID     string            `json:"studentId"`
	JobID         string            `json:"jobId"`
	CoverLetter   string            `json:"coverLetter"`
	PhoneNumber   string            `json:"phoneNumber"`
	Availability  string            `json:"availability"`
	PortfolioLink string            `json:"portfolioLink,omitempty"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"appliedAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type ApplicationInput struct {
	StudentID     string     `json:"studentId" validate:"required"`
	JobID         string     `json:"jobId" validate:"required"`
	CoverLetter   string     `json:"coverLetter"`
	PhoneNumber   string     `json:"phoneNumber"`
	Availability  string     `json:"availability"`
	PortfolioLink string     `json:"portfolioLink,omitempty" validate:"omitempty,url"`
	AppliedAt     *time.Time `json:"appliedAt,omitempty"`
}

type SubmitResult struct {
	ApplicationID  string `json:"applicationId,omitempty"`
	AlreadyApplied bool   `json:"alreadyApplied"`
}
