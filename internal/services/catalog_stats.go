package services

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type openJobsCounter interface {
	CountOpenJobs(ctx context.Context) (int, error)
}

type pendingApplicationsCounter interface {
	CountPendingApplications(ctx context.Context) (int, error)
}

// CatalogStats refreshes the catalog gauges on a schedule.
type CatalogStats struct {
	jobs         openJobsCounter
	applications pendingApplicationsCounter
	cron         *cron.Cron
	timeout      time.Duration
}

func NewCatalogStats(jobs openJobsCounter, applications pendingApplicationsCounter, schedule string) (*CatalogStats, error) {

	if schedule == "" {
		return nil, errors.New("stats schedule must not be empty")
	}

	cs := &CatalogStats{
		jobs:         jobs,
		applications: applications,
		cron:         cron.New(),
		timeout:      30 * time.Second,
	}

	_, err := cs.cron.AddFunc(schedule, cs.collect)
	if err != nil {
		return nil, err
	}

	cs.cron.Start()
	log.Infof("catalog stats started, schedule: %s", schedule)
	return cs, nil
}

func (cs *CatalogStats) Stop() {
	<-cs.cron.Stop().Done()
}

func (cs *CatalogStats) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), cs.timeout)
	defer cancel()

	if err := cs.Collect(ctx); err != nil {
		log.Errorf("Failed to collect catalog stats: %v", err)
	}
}

func (cs *CatalogStats) Collect(ctx context.Context) error {
	openJobs, err := cs.jobs.CountOpenJobs(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count open jobs")
	}

	pending, err := cs.applications.CountPendingApplications(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count pending applications")
	}

	metrics.OpenJobsGauge.Set(float64(openJobs))
	metrics.PendingApplicationsGauge.Set(float64(pending))
	log.Debugf("catalog stats collected: %d open jobs, %d pending applications", openJobs, pending)
	return nil
}
