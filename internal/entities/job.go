package entities

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

func ToJobStatus(s string) (JobStatus, error) {
	switch s {
	case string(JobOpen):
		return JobOpen, nil
	case string(JobClosed):
		return JobClosed, nil
	default:
		return "", fmt.Errorf("invalid job status: %q", s)
	}
}

type Job struct {
	ID           string    `json:"jobId"`
	PostedBy     string    `json:"postedBy"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Payment      float64   `json:"payment"`
	Currency     string    `json:"currency"`
	Status       JobStatus `json:"status"`
	Applicants   []string  `json:"applicants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (j *Job) HasApplicant(userID string) bool {
	for _, id := range j.Applicants {
		if id == userID {
			return true
		}
	}
	return false
}

// JobInput carries the job fields a recruiter supplied. Fields left empty are not written,
// which is what makes the same type usable for creation and partial updates.
type JobInput struct {
	PostedBy     string    `json:"postedBy,omitempty"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	Payment      *float64  `json:"payment,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	Status       JobStatus `json:"status,omitempty"`
}

type PaymentRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type SearchCriteria struct {
	Query   string        `json:"query,omitempty"`
	Skills  []string      `json:"skills,omitempty"`
	Payment *PaymentRange `json:"payment,omitempty"`
	Status  JobStatus     `json:"status,omitempty"`
}

type JobPage struct {
	Jobs        []Job  `json:"jobs"`
	LastVisible string `json:"lastVisible,omitempty"`
	HasMore     bool   `json:"hasMore"`
}
