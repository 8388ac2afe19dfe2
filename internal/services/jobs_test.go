package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_CreateJob_InitializesApplicantsAndTimestamps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.createJob(t, entities.JobInput{PostedBy: "r1", Title: "Go developer", Payment: float(1000)})

	job, err := env.jobs.GetJobByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, "r1", job.PostedBy)
	assert.Equal(t, 1000.0, job.Payment)
	assert.Empty(t, job.Applicants)
	assert.False(t, job.CreatedAt.IsZero())

	stored := env.get(t, docstore.Doc("jobs", id))
	assert.Equal(t, id, stored["jobId"])
	assert.NotContains(t, stored, "description")
}

func Test_CreateJob_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.jobs.CreateJob(context.Background(), entities.JobInput{Status: "archived"})

	assert.ErrorIs(t, err, ErrInvalidJobStatus)
}

func Test_GetJobByID_MissingIsNil(t *testing.T) {
	env := newTestEnv(t)

	job, err := env.jobs.GetJobByID(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Nil(t, job)
}

func Test_GetRecruiterJobs_FiltersByPoster(t *testing.T) {
	env := newTestEnv(t)
	env.createJob(t, entities.JobInput{PostedBy: "r1", Title: "a"})
	env.createJob(t, entities.JobInput{PostedBy: "r1", Title: "b", Status: entities.JobClosed})
	env.createJob(t, entities.JobInput{PostedBy: "r2", Title: "c"})

	jobs, err := env.jobs.GetRecruiterJobs(context.Background(), "r1")

	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func Test_UpdateJobStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createJob(t, entities.JobInput{Title: "a"})

	require.NoError(t, env.jobs.UpdateJobStatus(ctx, id, entities.JobClosed))
	job, err := env.jobs.GetJobByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.JobClosed, job.Status)
	assert.True(t, job.UpdatedAt.After(job.CreatedAt))

	require.NoError(t, env.jobs.UpdateJobStatus(ctx, id, entities.JobOpen))
	assert.ErrorIs(t, env.jobs.UpdateJobStatus(ctx, id, "paused"), ErrInvalidJobStatus)
	assert.ErrorIs(t, env.jobs.UpdateJobStatus(ctx, "ghost", entities.JobClosed), ErrJobNotFound)
}

func Test_UpdateJob_MergesSuppliedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createJob(t, entities.JobInput{Title: "a", Description: "old", Currency: "USD"})

	require.NoError(t, env.jobs.UpdateJob(ctx, id, entities.JobInput{Description: "new", Requirements: []string{"Go"}}))

	job, err := env.jobs.GetJobByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", job.Title)
	assert.Equal(t, "new", job.Description)
	assert.Equal(t, "USD", job.Currency)
	assert.Equal(t, []string{"Go"}, job.Requirements)
}

func Test_GetAllJobs_FullPageReportsMore(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 10; i++ {
		env.createJob(t, entities.JobInput{Title: fmt.Sprintf("job %d", i)})
	}
	env.createJob(t, entities.JobInput{Title: "closed", Status: entities.JobClosed})

	page, err := env.jobs.GetAllJobs(context.Background(), "", 10)

	require.NoError(t, err)
	assert.Len(t, page.Jobs, 10)
	assert.True(t, page.HasMore)
	assert.Equal(t, "job 9", page.Jobs[0].Title)
	assert.Equal(t, page.Jobs[9].ID, page.LastVisible)

	next, err := env.jobs.GetAllJobs(context.Background(), page.LastVisible, 10)
	require.NoError(t, err)
	assert.Empty(t, next.Jobs)
	assert.False(t, next.HasMore)
	assert.Empty(t, next.LastVisible)
}

func Test_GetAllJobs_PagesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, env.createJob(t, entities.JobInput{Title: fmt.Sprintf("job %d", i)}))
	}
	ctx := context.Background()

	first, err := env.jobs.GetAllJobs(ctx, "", 3)
	require.NoError(t, err)
	second, err := env.jobs.GetAllJobs(ctx, first.LastVisible, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{ids[4], ids[3], ids[2]}, jobIDs(first.Jobs))
	assert.True(t, first.HasMore)
	assert.Equal(t, []string{ids[1], ids[0]}, jobIDs(second.Jobs))
	assert.False(t, second.HasMore)

	restarted, err := env.jobs.GetAllJobs(ctx, "unknown-cursor", 0)
	require.NoError(t, err)
	assert.Len(t, restarted.Jobs, 5)
	assert.False(t, restarted.HasMore)
}

func Test_SearchJobs_FiltersInMemory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createJob(t, entities.JobInput{Title: "Backend Engineer", Description: "APIs", Requirements: []string{"Golang", "PostgreSQL"}, Payment: float(3000)})
	env.createJob(t, entities.JobInput{Title: "Designer", Description: "Figma work", Requirements: []string{"Figma"}, Payment: float(1500)})
	env.createJob(t, entities.JobInput{Title: "Data intern", Description: "dashboards", Requirements: []string{"SQL", "python"}, Payment: float(800)})
	env.createJob(t, entities.JobInput{Title: "Old backend role", Requirements: []string{"golang"}, Status: entities.JobClosed})

	byText, err := env.jobs.SearchJobs(ctx, entities.SearchCriteria{Query: "BACKEND"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Backend Engineer"}, jobTitles(byText))

	byRequirement, err := env.jobs.SearchJobs(ctx, entities.SearchCriteria{Query: "figma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Designer"}, jobTitles(byRequirement))

	bySkill, err := env.jobs.SearchJobs(ctx, entities.SearchCriteria{Skills: []string{"sql", " "}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Backend Engineer", "Data intern"}, jobTitles(bySkill))

	byPayment, err := env.jobs.SearchJobs(ctx, entities.SearchCriteria{Payment: &entities.PaymentRange{Min: float(1000), Max: float(3000)}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Backend Engineer", "Designer"}, jobTitles(byPayment))

	closed, err := env.jobs.SearchJobs(ctx, entities.SearchCriteria{Status: entities.JobClosed, Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Old backend role"}, jobTitles(closed))
}

func Test_ApplyForJob_ClosedJobIsNotMutated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createJob(t, entities.JobInput{Title: "a", Status: entities.JobClosed})
	before := env.get(t, docstore.Doc("jobs", id))

	err := env.jobs.ApplyForJob(ctx, id, "s1")

	assert.ErrorIs(t, err, ErrJobClosed)
	assert.Equal(t, before, env.get(t, docstore.Doc("jobs", id)))
}

func Test_ApplyForJob_AddsApplicantOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createJob(t, entities.JobInput{Title: "a"})

	require.NoError(t, env.jobs.ApplyForJob(ctx, id, "s1"))
	assert.ErrorIs(t, env.jobs.ApplyForJob(ctx, id, "s1"), ErrAlreadyApplied)
	require.NoError(t, env.jobs.ApplyForJob(ctx, id, "s2"))

	job, err := env.jobs.GetJobByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, job.Applicants)

	assert.ErrorIs(t, env.jobs.ApplyForJob(ctx, "ghost", "s1"), ErrJobNotFound)
	assert.ErrorIs(t, env.jobs.ApplyForJob(ctx, id, ""), ErrMissingUserID)
}

func Test_JobCatalog_StoreFailureIsOperationError(t *testing.T) {
	env := newTestEnv(t)
	env.store.failGet = []string{"jobs/"}

	_, err := env.jobs.GetJobByID(context.Background(), "any")

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "failed to fetch job", opErr.Message)
	assert.ErrorIs(t, err, errStoreDown)
}

func jobIDs(jobs []entities.Job) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids
}

func jobTitles(jobs []entities.Job) []string {
	titles := make([]string, 0, len(jobs))
	for _, job := range jobs {
		titles = append(titles, job.Title)
	}
	return titles
}
