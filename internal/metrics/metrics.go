package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	StoreOperationDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobmatch_store_operation_duration_seconds",
			Help:       "Duration of document store round trips.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"operation"},
	)
	StoreFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_store_failures_total",
			Help: "Total number of failed document store operations, not found excluded.",
		},
		[]string{"operation"},
	)
	ProfilesCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmatch_profiles_created_total",
			Help: "Total number of profiles created on registration or first access.",
		},
	)
	JobsCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmatch_jobs_created_total",
			Help: "Total number of posted jobs.",
		},
	)
	ApplicationsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobmatch_applications_submitted_total",
			Help: "Total number of submitted job applications.",
		},
	)
	SavedJobsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_saved_job_toggles_total",
			Help: "Total number of saved-job toggles.",
		},
		[]string{"action"},
	)
	OpenJobsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobmatch_open_jobs",
			Help: "Number of jobs accepting applications at the last collection.",
		},
	)
	PendingApplicationsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobmatch_pending_applications",
			Help: "Number of applications not yet reviewed at the last collection.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(StoreOperationDuration)
		prometheus.MustRegister(StoreFailuresCounter)
		prometheus.MustRegister(ProfilesCreatedCounter)
		prometheus.MustRegister(JobsCreatedCounter)
		prometheus.MustRegister(ApplicationsCounter)
		prometheus.MustRegister(SavedJobsCounter)
		prometheus.MustRegister(OpenJobsGauge)
		prometheus.MustRegister(PendingApplicationsGauge)
	})
}
