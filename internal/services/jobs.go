package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/events"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const jobsCollection = "jobs"

type JobCatalog struct {
	store    docstore.Store
	bus      EventBus.Bus
	pageSize int
	now      func() time.Time
}

func NewJobCatalog(store docstore.Store, bus EventBus.Bus, defaultPageSize int) *JobCatalog {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &JobCatalog{store: store, bus: bus, pageSize: defaultPageSize, now: time.Now}
}

func jobFields(input entities.JobInput) docstore.Data {
	data := docstore.Data{}
	if input.PostedBy != "" {
		data["postedBy"] = input.PostedBy
	}
	if input.Title != "" {
		data["title"] = input.Title
	}
	if input.Description != "" {
		data["description"] = input.Description
	}
	if input.Requirements != nil {
		data["requirements"] = toAny(input.Requirements)
	}
	if input.Payment != nil {
		data["payment"] = *input.Payment
	}
	if input.Currency != "" {
		data["currency"] = input.Currency
	}
	if input.Status != "" {
		data["status"] = string(input.Status)
	}
	return data
}

func validJobStatus(status entities.JobStatus) bool {
	_, err := entities.ToJobStatus(string(status))
	return err == nil
}

func decodeJob(snap docstore.Snapshot) (entities.Job, error) {
	var job entities.Job
	if err := snap.DataTo(&job); err != nil {
		return job, err
	}
	job.ID = snap.Path.ID()
	if job.Applicants == nil {
		job.Applicants = []string{}
	}
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	return job, nil
}

// decodeJobs skips documents that do not decode as a job.
func decodeJobs(snapshots []docstore.Snapshot) []entities.Job {
	jobs := make([]entities.Job, 0, len(snapshots))
	for _, snap := range snapshots {
		job, err := decodeJob(snap)
		if err != nil {
			log.Warnf("skipping malformed job %s: %v", snap.Path, err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// CreateJob stores the supplied fields as a new job. Nothing is required; what is missing
// stays missing.
func (c *JobCatalog) CreateJob(ctx context.Context, input entities.JobInput) (string, error) {
	if input.Status != "" && !validJobStatus(input.Status) {
		return "", ErrInvalidJobStatus
	}

	ref := c.store.NewDoc(jobsCollection)
	now := c.now()
	data := lo.Assign(jobFields(input), docstore.Data{
		"jobId":      ref.ID(),
		"applicants": []any{},
		"createdAt":  now,
		"updatedAt":  now,
	})

	if err := c.store.Set(ctx, ref, data); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("failed to create job: %v", err)
		return "", failed("failed to create job", err)
	}

	c.bus.Publish(events.JobCreatedTopic, events.JobCreated{JobID: ref.ID(), PostedBy: input.PostedBy})
	return ref.ID(), nil
}

func (c *JobCatalog) GetRecruiterJobs(ctx context.Context, recruiterID string) ([]entities.Job, error) {
	snapshots, err := c.store.Query(ctx, docstore.Collection(jobsCollection).Where("postedBy", recruiterID))
	if err != nil {
		return nil, failed("failed to fetch jobs", err)
	}
	return decodeJobs(snapshots), nil
}

// GetJobByID returns nil without an error when the job does not exist.
func (c *JobCatalog) GetJobByID(ctx context.Context, id string) (*entities.Job, error) {
	if id == "" {
		return nil, nil
	}

	snap, err := c.store.Get(ctx, docstore.Doc(jobsCollection, id))
	if docstore.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, failed("failed to fetch job", err)
	}

	job, err := decodeJob(*snap)
	if err != nil {
		return nil, failed("failed to fetch job", err)
	}
	return &job, nil
}

// GetJobsByIDs returns the jobs that still exist, in the order of ids.
func (c *JobCatalog) GetJobsByIDs(ctx context.Context, ids []string) ([]entities.Job, error) {
	jobs := make([]entities.Job, 0, len(ids))
	for _, id := range ids {
		job, err := c.GetJobByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

// UpdateJobStatus does not check the transition: a closed job may be reopened.
func (c *JobCatalog) UpdateJobStatus(ctx context.Context, id string, status entities.JobStatus) error {
	if !validJobStatus(status) {
		return ErrInvalidJobStatus
	}

	err := c.store.Update(ctx, docstore.Doc(jobsCollection, id),
		docstore.Update{Field: "status", Value: string(status)},
		docstore.Update{Field: "updatedAt", Value: c.now()},
	)
	if docstore.IsNotFound(err) {
		return ErrJobNotFound
	}
	return failed("failed to update job status", err)
}

func (c *JobCatalog) UpdateJob(ctx context.Context, id string, input entities.JobInput) error {
	if input.Status != "" && !validJobStatus(input.Status) {
		return ErrInvalidJobStatus
	}

	fields := lo.Assign(jobFields(input), docstore.Data{"updatedAt": c.now()})
	updates := lo.MapToSlice(fields, func(field string, value any) docstore.Update {
		return docstore.Update{Field: field, Value: value}
	})

	err := c.store.Update(ctx, docstore.Doc(jobsCollection, id), updates...)
	if docstore.IsNotFound(err) {
		return ErrJobNotFound
	}
	return failed("failed to update job", err)
}

// GetAllJobs pages through open jobs, newest first. HasMore only says the page came back
// full, so a full last page still reports more.
func (c *JobCatalog) GetAllJobs(ctx context.Context, cursor string, limit int) (*entities.JobPage, error) {
	if limit <= 0 {
		limit = c.pageSize
	}

	query := docstore.Collection(jobsCollection).
		Where("status", string(entities.JobOpen)).
		OrderBy("createdAt", docstore.Desc).
		Limit(limit)
	if cursor != "" {
		query = query.StartAfter(cursor)
	}

	snapshots, err := c.store.Query(ctx, query)
	if err != nil {
		return nil, failed("failed to fetch jobs", err)
	}

	page := &entities.JobPage{
		Jobs:    decodeJobs(snapshots),
		HasMore: len(snapshots) == limit,
	}
	if len(snapshots) > 0 {
		page.LastVisible = snapshots[len(snapshots)-1].Path.ID()
	}
	return page, nil
}

// SearchJobs loads every job with the requested status and filters them in memory.
func (c *JobCatalog) SearchJobs(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Job, error) {
	status := lo.Ternary(criteria.Status != "", criteria.Status, entities.JobOpen)
	if !validJobStatus(status) {
		return nil, ErrInvalidJobStatus
	}

	snapshots, err := c.store.Query(ctx, docstore.Collection(jobsCollection).
		Where("status", string(status)).
		OrderBy("createdAt", docstore.Desc))
	if err != nil {
		return nil, failed("failed to search jobs", err)
	}

	jobs := decodeJobs(snapshots)

	if query := strings.ToLower(strings.TrimSpace(criteria.Query)); query != "" {
		jobs = lo.Filter(jobs, func(job entities.Job, _ int) bool {
			return strings.Contains(strings.ToLower(job.Title), query) ||
				strings.Contains(strings.ToLower(job.Description), query) ||
				lo.SomeBy(job.Requirements, func(req string) bool {
					return strings.Contains(strings.ToLower(req), query)
				})
		})
	}

	skills := lo.Compact(lo.Map(criteria.Skills, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	}))
	if len(skills) > 0 {
		jobs = lo.Filter(jobs, func(job entities.Job, _ int) bool {
			return lo.SomeBy(job.Requirements, func(req string) bool {
				req = strings.ToLower(req)
				return lo.SomeBy(skills, func(skill string) bool { return strings.Contains(req, skill) })
			})
		})
	}

	if payment := criteria.Payment; payment != nil {
		jobs = lo.Filter(jobs, func(job entities.Job, _ int) bool {
			return (payment.Min == nil || job.Payment >= *payment.Min) &&
				(payment.Max == nil || job.Payment <= *payment.Max)
		})
	}

	return jobs, nil
}

// ApplyForJob adds the user to the job's applicants.
func (c *JobCatalog) ApplyForJob(ctx context.Context, jobID, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	job, err := c.GetJobByID(ctx, jobID)
	if err != nil {
		return failed("failed to apply for job", err)
	}
	if job == nil {
		return ErrJobNotFound
	}
	if job.Status == entities.JobClosed {
		return ErrJobClosed
	}
	if job.HasApplicant(userID) {
		return ErrAlreadyApplied
	}

	err = c.store.Update(ctx, docstore.Doc(jobsCollection, jobID),
		docstore.Update{Field: "applicants", Value: docstore.ArrayUnion(userID)},
		docstore.Update{Field: "updatedAt", Value: c.now()},
	)
	if docstore.IsNotFound(err) {
		return ErrJobNotFound
	}
	return failed("failed to apply for job", err)
}

func (c *JobCatalog) CountOpenJobs(ctx context.Context) (int, error) {
	snapshots, err := c.store.Query(ctx, docstore.Collection(jobsCollection).Where("status", string(entities.JobOpen)))
	if err != nil {
		return 0, err
	}
	return len(snapshots), nil
}
