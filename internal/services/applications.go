package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/events"
	"github.com/maxaizer/jobmatch/internal/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const applicationsCollection = "applications"

type ApplicationWorkflow struct {
	store    docstore.Store
	jobs     *JobCatalog
	profiles *ProfileResolver
	bus      EventBus.Bus
	validate *validator.Validate
	now      func() time.Time
}

func NewApplicationWorkflow(store docstore.Store, jobs *JobCatalog, profiles *ProfileResolver,
	bus EventBus.Bus) *ApplicationWorkflow {

	return &ApplicationWorkflow{
		store:    store,
		jobs:     jobs,
		profiles: profiles,
		bus:      bus,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (w *ApplicationWorkflow) validateInput(input entities.ApplicationInput) error {
	err := w.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		fields := lo.Map(fieldErrors, func(fe validator.FieldError, _ int) string { return fe.Field() })
		return fmt.Errorf("%w: %s", ErrInvalidApplication, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidApplication, err)
}

// SubmitJobApplication records the application and links student and job both ways.
// A repeated submission reports AlreadyApplied and creates nothing.
func (w *ApplicationWorkflow) SubmitJobApplication(ctx context.Context, input entities.ApplicationInput) (*entities.SubmitResult, error) {
	if err := w.validateInput(input); err != nil {
		return nil, err
	}

	job, err := w.jobs.GetJobByID(ctx, input.JobID)
	if err != nil {
		return nil, failed("failed to submit application", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	if w.HasStudentAppliedToJob(ctx, input.StudentID, input.JobID) {
		log.Debugf("student %s has already applied to job %s", input.StudentID, input.JobID)
		return &entities.SubmitResult{AlreadyApplied: true}, nil
	}

	if err = w.jobs.ApplyForJob(ctx, input.JobID, input.StudentID); err != nil && !errors.Is(err, ErrAlreadyApplied) {
		return nil, failed("failed to submit application", err)
	}

	now := w.now()
	appliedAt := now
	if input.AppliedAt != nil && !input.AppliedAt.IsZero() {
		appliedAt = *input.AppliedAt
	}

	data := docstore.Data{
		"studentId":    input.StudentID,
		"jobId":        input.JobID,
		"coverLetter":  input.CoverLetter,
		"phoneNumber":  input.PhoneNumber,
		"availability": input.Availability,
		"status":       string(entities.ApplicationPending),
		"appliedAt":    appliedAt,
		"updatedAt":    now,
	}
	if input.PortfolioLink != "" {
		data["portfolioLink"] = input.PortfolioLink
	}

	ref, err := w.store.Add(ctx, applicationsCollection, data)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).Errorf("failed to save application: %v", err)
		return nil, failed("failed to submit application", err)
	}

	resolved, err := w.profiles.FindOrCreateStudent(ctx, input.StudentID)
	if err != nil {
		return nil, failed("failed to submit application", err)
	}
	if err = updateProfileList(ctx, w.store, resolved.Ref, "appliedJobs", input.JobID, true, now); err != nil {
		return nil, failed("failed to submit application", err)
	}

	w.bus.Publish(events.ApplicationSubmittedTopic, events.ApplicationSubmitted{
		ApplicationID: ref.ID(),
		StudentID:     input.StudentID,
		JobID:         input.JobID,
	})
	return &entities.SubmitResult{ApplicationID: ref.ID()}, nil
}

// HasStudentAppliedToJob checks the job's applicants and then the student's applied jobs.
// Lookup failures read as "not applied".
func (w *ApplicationWorkflow) HasStudentAppliedToJob(ctx context.Context, studentID, jobID string) bool {
	job, err := w.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		log.Errorf("failed to check applicants of job %s: %v", jobID, err)
		return false
	}
	if job == nil {
		return false
	}
	if job.HasApplicant(studentID) {
		return true
	}

	resolved, err := w.profiles.FindOrCreateStudent(ctx, studentID)
	if err != nil {
		log.Errorf("failed to check applied jobs of student %s: %v", studentID, err)
		return false
	}
	return lo.Contains(listValues(resolved.Profile.Data["appliedJobs"]), jobID)
}

func decodeApplications(snapshots []docstore.Snapshot) []entities.JobApplication {
	applications := make([]entities.JobApplication, 0, len(snapshots))
	for _, snap := range snapshots {
		var application entities.JobApplication
		if err := snap.DataTo(&application); err != nil {
			log.Warnf("skipping malformed application %s: %v", snap.Path, err)
			continue
		}
		application.ID = snap.Path.ID()
		applications = append(applications, application)
	}
	return applications
}

func (w *ApplicationWorkflow) GetJobApplications(ctx context.Context, jobID string) ([]entities.JobApplication, error) {
	snapshots, err := w.store.Query(ctx, docstore.Collection(applicationsCollection).Where("jobId", jobID))
	if err != nil {
		return nil, failed("failed to fetch applications", err)
	}
	return decodeApplications(snapshots), nil
}

// GetApplicationByID returns nil without an error when the application does not exist.
func (w *ApplicationWorkflow) GetApplicationByID(ctx context.Context, id string) (*entities.JobApplication, error) {
	if id == "" {
		return nil, nil
	}

	snap, err := w.store.Get(ctx, docstore.Doc(applicationsCollection, id))
	if docstore.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, failed("failed to fetch application", err)
	}

	applications := decodeApplications([]docstore.Snapshot{*snap})
	if len(applications) == 0 {
		return nil, failed("failed to fetch application", errors.Errorf("malformed application %s", id))
	}
	return &applications[0], nil
}

func (w *ApplicationWorkflow) UpdateApplicationStatus(ctx context.Context, id string, status entities.ApplicationStatus) error {
	if _, err := entities.ToApplicationStatus(string(status)); err != nil {
		return ErrInvalidApplicationStatus
	}

	err := w.store.Update(ctx, docstore.Doc(applicationsCollection, id),
		docstore.Update{Field: "status", Value: string(status)},
		docstore.Update{Field: "updatedAt", Value: w.now()},
	)
	if docstore.IsNotFound(err) {
		return ErrApplicationNotFound
	}
	return failed("failed to update application status", err)
}

func (w *ApplicationWorkflow) GetStudentAppliedJobs(ctx context.Context, studentID string) ([]entities.Job, error) {
	resolved, err := w.profiles.FindOrCreateStudent(ctx, studentID)
	if err != nil {
		return nil, failed("failed to fetch applied jobs", err)
	}

	jobs, err := w.jobs.GetJobsByIDs(ctx, listValues(resolved.Profile.Data["appliedJobs"]))
	if err != nil {
		return nil, failed("failed to fetch applied jobs", err)
	}
	return jobs, nil
}

func (w *ApplicationWorkflow) CountPendingApplications(ctx context.Context) (int, error) {
	snapshots, err := w.store.Query(ctx, docstore.Collection(applicationsCollection).
		Where("status", string(entities.ApplicationPending)))
	if err != nil {
		return 0, err
	}
	return len(snapshots), nil
}
