package services

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func Test_SubmitJobApplication_LinksStudentAndJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "Go developer"})

	result, err := env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{
		StudentID:    "s1",
		JobID:        jobID,
		CoverLetter:  "Hire me",
		PhoneNumber:  "+100",
		Availability: "now",
	})

	require.NoError(t, err)
	assert.False(t, result.AlreadyApplied)
	require.NotEmpty(t, result.ApplicationID)

	stored := env.get(t, docstore.Doc("applications", result.ApplicationID))
	assert.Equal(t, "pending", stored["status"])
	assert.Equal(t, "s1", stored["studentId"])
	assert.NotContains(t, stored, "portfolioLink")

	job, err := env.jobs.GetJobByID(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, job.Applicants)
	assert.Equal(t, []any{jobID}, env.get(t, docstore.Doc("users", "s1"))["appliedJobs"])
	assert.True(t, env.applications.HasStudentAppliedToJob(ctx, "s1", jobID))
}

func Test_SubmitJobApplication_TwiceCreatesOneRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "Go developer"})
	input := entities.ApplicationInput{StudentID: "s1", JobID: jobID}

	_, err := env.applications.SubmitJobApplication(ctx, input)
	require.NoError(t, err)
	second, err := env.applications.SubmitJobApplication(ctx, input)

	require.NoError(t, err)
	assert.True(t, second.AlreadyApplied)
	assert.Empty(t, second.ApplicationID)

	applications, err := env.applications.GetJobApplications(ctx, jobID)
	require.NoError(t, err)
	assert.Len(t, applications, 1)
}

func Test_SubmitJobApplication_KeepsSuppliedAppliedAt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	appliedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	result, err := env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{
		StudentID: "s1", JobID: jobID, AppliedAt: &appliedAt, PortfolioLink: "https://example.com/me",
	})
	require.NoError(t, err)

	applications, err := env.applications.GetJobApplications(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, result.ApplicationID, applications[0].ID)
	assert.True(t, appliedAt.Equal(applications[0].AppliedAt))
	assert.Equal(t, "https://example.com/me", applications[0].PortfolioLink)
}

func Test_SubmitJobApplication_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	closedID := env.createJob(t, entities.JobInput{Title: "a", Status: entities.JobClosed})

	_, err := env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{JobID: closedID})
	assert.ErrorIs(t, err, ErrInvalidApplication)
	assert.Contains(t, err.Error(), "StudentID")

	_, err = env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{
		StudentID: "s1", JobID: closedID, PortfolioLink: "not a link",
	})
	assert.ErrorIs(t, err, ErrInvalidApplication)

	_, err = env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{StudentID: "s1", JobID: "ghost"})
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{StudentID: "s1", JobID: closedID})
	assert.ErrorIs(t, err, ErrJobClosed)

	applications, err := env.applications.GetJobApplications(ctx, closedID)
	require.NoError(t, err)
	assert.Empty(t, applications)
}

func Test_SubmitJobApplication_ScalarAppliedJobsIsKept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.put(t, docstore.Doc("users", "s1"), docstore.Data{"Role": "student", "appliedJobs": "old-job"})
	jobID := env.createJob(t, entities.JobInput{Title: "a"})

	_, err := env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{StudentID: "s1", JobID: jobID})

	require.NoError(t, err)
	assert.Equal(t, []any{"old-job", jobID}, env.get(t, docstore.Doc("users", "s1"))["appliedJobs"])
}

func Test_HasStudentAppliedToJob_ChecksProfileToo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	env.put(t, docstore.Doc("students", "s1"), docstore.Data{"appliedJobs": []any{jobID}})

	assert.True(t, env.applications.HasStudentAppliedToJob(ctx, "s1", jobID))
	assert.False(t, env.applications.HasStudentAppliedToJob(ctx, "s2", jobID))
	assert.False(t, env.applications.HasStudentAppliedToJob(ctx, "s1", "ghost"))

	env.store.failGet = []string{"jobs/"}
	assert.False(t, env.applications.HasStudentAppliedToJob(ctx, "s1", jobID))
}

func Test_GetApplicationByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	result, err := env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{StudentID: "s1", JobID: jobID})
	require.NoError(t, err)

	application, err := env.applications.GetApplicationByID(ctx, result.ApplicationID)
	require.NoError(t, err)
	require.NotNil(t, application)
	assert.Equal(t, result.ApplicationID, application.ID)
	assert.Equal(t, jobID, application.JobID)
	assert.Equal(t, "s1", application.StudentID)

	missing, err := env.applications.GetApplicationByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func Test_UpdateApplicationStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	result, err := env.applications.SubmitJobApplication(ctx, entities.ApplicationInput{StudentID: "s1", JobID: jobID})
	require.NoError(t, err)

	require.NoError(t, env.applications.UpdateApplicationStatus(ctx, result.ApplicationID, entities.ApplicationViewed))
	assert.Equal(t, "viewed", env.get(t, docstore.Doc("applications", result.ApplicationID))["status"])

	assert.ErrorIs(t, env.applications.UpdateApplicationStatus(ctx, result.ApplicationID, "hired"), ErrInvalidApplicationStatus)
	assert.ErrorIs(t, env.applications.UpdateApplicationStatus(ctx, "ghost", entities.ApplicationRejected), ErrApplicationNotFound)

	pending, err := env.applications.CountPendingApplications(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func Test_GetStudentAppliedJobs_SkipsMissingJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.createJob(t, entities.JobInput{Title: "first"})
	second := env.createJob(t, entities.JobInput{Title: "second"})
	env.put(t, docstore.Doc("users", "s1"), docstore.Data{"Role": "Student", "appliedJobs": []any{second, "deleted", first}})

	jobs, err := env.applications.GetStudentAppliedJobs(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, []string{second, first}, jobIDs(jobs))
}

func Test_GetStudentAppliedJobs_NewStudentHasNone(t *testing.T) {
	env := newTestEnv(t)

	jobs, err := env.applications.GetStudentAppliedJobs(context.Background(), "fresh")

	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.True(t, env.exists(t, docstore.Doc("users", "fresh")))
}
