package services

import (
	"errors"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmatch/internal/events"
	"github.com/maxaizer/jobmatch/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// ActivityTracker turns domain events into activity metrics.
type ActivityTracker struct{}

func NewActivityTracker(bus EventBus.Bus) (*ActivityTracker, error) {
	t := &ActivityTracker{}

	err := errors.Join(
		bus.Subscribe(events.ProfileCreatedTopic, t.onProfileCreated),
		bus.Subscribe(events.JobCreatedTopic, t.onJobCreated),
		bus.Subscribe(events.ApplicationSubmittedTopic, t.onApplicationSubmitted),
		bus.Subscribe(events.JobSaveToggledTopic, t.onJobSaveToggled),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe activity tracker: %w", err)
	}
	return t, nil
}

func (t *ActivityTracker) onProfileCreated(event events.ProfileCreated) {
	metrics.ProfilesCreatedCounter.Inc()
	log.Infof("profile created: user %s, role %s, at %s", event.UserID, event.Role, event.Location)
}

func (t *ActivityTracker) onJobCreated(event events.JobCreated) {
	metrics.JobsCreatedCounter.Inc()
	log.Infof("job %s posted by %s", event.JobID, event.PostedBy)
}

func (t *ActivityTracker) onApplicationSubmitted(event events.ApplicationSubmitted) {
	metrics.ApplicationsCounter.Inc()
	log.Infof("application %s: student %s applied to job %s", event.ApplicationID, event.StudentID, event.JobID)
}

func (t *ActivityTracker) onJobSaveToggled(event events.JobSaveToggled) {
	action := "unsave"
	if event.Saved {
		action = "save"
	}
	metrics.SavedJobsCounter.WithLabelValues(action).Inc()
}
