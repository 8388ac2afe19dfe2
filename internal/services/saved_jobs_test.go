package services

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/docstore"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func savedJobs(t *testing.T, env *testEnv, studentID string) []string {
	t.Helper()
	return env.profiles.GetStudentJobPreferences(context.Background(), studentID).SavedJobs
}

func Test_ToggleSaveJob_SavingTwiceKeepsOneEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})

	require.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", jobID, true))
	require.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", jobID, true))

	assert.Equal(t, []string{jobID}, savedJobs(t, env, "s1"))
}

func Test_ToggleSaveJob_UnsaveRestoresList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	env.put(t, docstore.Doc("users", "s1"), docstore.Data{"Role": "student", "savedJobs": []any{"kept"}})

	require.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", jobID, true))
	assert.Equal(t, []string{"kept", jobID}, savedJobs(t, env, "s1"))

	require.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", jobID, false))
	assert.Equal(t, []string{"kept"}, savedJobs(t, env, "s1"))
}

func Test_ToggleSaveJob_MissingJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.saved.ToggleSaveJob(ctx, "s1", "ghost", true), ErrJobNotFound)
	assert.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", "ghost", false))
	assert.ErrorIs(t, env.saved.ToggleSaveJob(ctx, "", "ghost", true), ErrMissingUserID)
}

func Test_ToggleSaveJob_FallbackKeepsExistingIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	env.put(t, docstore.Doc("users", "s1"), docstore.Data{"Role": "student", "savedJobs": []any{"x", "y"}})
	env.store.failUpdate = []string{"users/"}

	require.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", jobID, true))
	assert.Equal(t, []string{"x", "y", jobID}, savedJobs(t, env, "s1"))

	require.NoError(t, env.saved.ToggleSaveJob(ctx, "s1", "x", false))
	assert.Equal(t, []string{"y", jobID}, savedJobs(t, env, "s1"))
}

func Test_ToggleSaveJob_StoreFailureIsOperationError(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	env.put(t, docstore.Doc("users", "s1"), docstore.Data{"Role": "student"})
	env.store.failUpdate = []string{"users/"}
	env.store.failMerge = []string{"users/"}

	err := env.saved.ToggleSaveJob(context.Background(), "s1", jobID, true)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "failed to update saved jobs", opErr.Message)
}

func Test_GetStudentSavedJobs_SkipsMissingJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	jobID := env.createJob(t, entities.JobInput{Title: "a"})
	env.put(t, docstore.Doc("student_profiles", "s1"), docstore.Data{"savedJobs": []any{"gone", jobID}})

	jobs, err := env.saved.GetStudentSavedJobs(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, []string{jobID}, jobIDs(jobs))
}
