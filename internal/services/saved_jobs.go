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
	"time"
)

type SavedJobs struct {
	store    docstore.Store
	jobs     *JobCatalog
	profiles *ProfileResolver
	bus      EventBus.Bus
	now      func() time.Time
}

func NewSavedJobs(store docstore.Store, jobs *JobCatalog, profiles *ProfileResolver, bus EventBus.Bus) *SavedJobs {
	return &SavedJobs{store: store, jobs: jobs, profiles: profiles, bus: bus, now: time.Now}
}

// ToggleSaveJob adds the job to the student's saved jobs or removes it. Only saving
// requires the job to exist.
func (s *SavedJobs) ToggleSaveJob(ctx context.Context, studentID, jobID string, save bool) error {
	resolved, err := s.profiles.FindOrCreateStudent(ctx, studentID)
	if err != nil {
		return failed("failed to update saved jobs", err)
	}

	if save {
		job, err := s.jobs.GetJobByID(ctx, jobID)
		if err != nil {
			return failed("failed to update saved jobs", err)
		}
		if job == nil {
			return ErrJobNotFound
		}
	}

	if err = updateProfileList(ctx, s.store, resolved.Ref, "savedJobs", jobID, save, s.now()); err != nil {
		return failed("failed to update saved jobs", err)
	}

	log.Debugf("job %s saved=%t for student %s", jobID, save, studentID)
	s.bus.Publish(events.JobSaveToggledTopic, events.JobSaveToggled{StudentID: studentID, JobID: jobID, Saved: save})
	return nil
}

func (s *SavedJobs) GetStudentSavedJobs(ctx context.Context, studentID string) ([]entities.Job, error) {
	resolved, err := s.profiles.FindOrCreateStudent(ctx, studentID)
	if err != nil {
		return nil, failed("failed to fetch saved jobs", err)
	}

	jobs, err := s.jobs.GetJobsByIDs(ctx, listValues(resolved.Profile.Data["savedJobs"]))
	if err != nil {
		return nil, failed("failed to fetch saved jobs", err)
	}
	return jobs, nil
}

// updateProfileList adds or removes a job id in one of the profile's id lists. The atomic
// array operation is tried first; if the store rejects it, the current list is read and
// the result merged back so ids already there are kept.
func updateProfileList(ctx context.Context, store docstore.Store, ref docstore.Path, field, jobID string,
	add bool, now time.Time) error {

	var operation any = docstore.ArrayUnion(jobID)
	if !add {
		operation = docstore.ArrayRemove(jobID)
	}

	err := store.Update(ctx, ref,
		docstore.Update{Field: field, Value: operation},
		docstore.Update{Field: "updatedAt", Value: now},
	)
	if err == nil {
		return nil
	}

	log.WithField(logger.ErrorTypeField, logger.ErrorTypeStore).
		Warnf("failed to update %s of %s, rewriting the list: %v", field, ref, err)

	current := []string{}
	snap, err := store.Get(ctx, ref)
	switch {
	case err == nil:
		current = listValues(snap.Data[field])
	case !docstore.IsNotFound(err):
		return err
	}

	next := lo.Without(current, jobID)
	if add {
		next = lo.Uniq(append(current, jobID))
	}

	return store.Merge(ctx, ref, docstore.Data{field: toAny(next), "updatedAt": now})
}
