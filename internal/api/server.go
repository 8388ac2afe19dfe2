package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobmatch/internal/config"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"time"
)

type profileService interface {
	GetUserDetails(ctx context.Context, id string) (entities.Profile, error)
	GetUserProfile(ctx context.Context, id string) (entities.ProfileView, error)
	UpdateUserProfile(ctx context.Context, id, section string, value any) error
	GetStudentJobPreferences(ctx context.Context, id string) entities.StudentJobPreferences
	RecordRecentSearch(ctx context.Context, id, query string) error
	GetAllStudents(ctx context.Context) ([]entities.Student, error)
	GetStudentsByIDs(ctx context.Context, ids []string) ([]entities.Student, error)
}

type jobService interface {
	CreateJob(ctx context.Context, input entities.JobInput) (string, error)
	GetRecruiterJobs(ctx context.Context, recruiterID string) ([]entities.Job, error)
	GetJobByID(ctx context.Context, id string) (*entities.Job, error)
	UpdateJobStatus(ctx context.Context, id string, status entities.JobStatus) error
	UpdateJob(ctx context.Context, id string, input entities.JobInput) error
	GetAllJobs(ctx context.Context, cursor string, limit int) (*entities.JobPage, error)
	SearchJobs(ctx context.Context, criteria entities.SearchCriteria) ([]entities.Job, error)
	ApplyForJob(ctx context.Context, jobID, userID string) error
}

type applicationService interface {
	SubmitJobApplication(ctx context.Context, input entities.ApplicationInput) (*entities.SubmitResult, error)
	GetJobApplications(ctx context.Context, jobID string) ([]entities.JobApplication, error)
	GetApplicationByID(ctx context.Context, id string) (*entities.JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, id string, status entities.ApplicationStatus) error
	GetStudentAppliedJobs(ctx context.Context, studentID string) ([]entities.Job, error)
}

type savedJobService interface {
	ToggleSaveJob(ctx context.Context, studentID, jobID string, save bool) error
	GetStudentSavedJobs(ctx context.Context, studentID string) ([]entities.Job, error)
}

type registrationService interface {
	RegisterStudent(ctx context.Context, email, password string, details entities.StudentDetails) (string, error)
	RegisterRecruiter(ctx context.Context, email, password string, details entities.RecruiterDetails) (string, error)
}

type authenticator interface {
	SignIn(ctx context.Context, email, password string) (string, entities.Identity, error)
	Authenticate(ctx context.Context, token string) (entities.Identity, error)
}

type Services struct {
	Profiles     profileService
	Jobs         jobService
	Applications applicationService
	SavedJobs    savedJobService
	Registration registrationService
	Auth         authenticator
}

type Server struct {
	services   Services
	cfg        config.ServerConfig
	limiter    *clientLimiter
	httpServer *http.Server
}

func NewServer(cfg config.ServerConfig, services Services) (*Server, error) {

	if services.Profiles == nil {
		return nil, errors.New("profile service is nil")
	}
	if services.Jobs == nil {
		return nil, errors.New("job service is nil")
	}
	if services.Applications == nil {
		return nil, errors.New("application service is nil")
	}
	if services.SavedJobs == nil {
		return nil, errors.New("saved job service is nil")
	}
	if services.Registration == nil {
		return nil, errors.New("registration service is nil")
	}
	if services.Auth == nil {
		return nil, errors.New("authenticator is nil")
	}

	s := &Server{
		services: services,
		cfg:      cfg,
		limiter:  newClientLimiter(cfg.AuthRequestsPerSecond, cfg.AuthBurst),
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Authorization", "Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", s.authenticate())

	auth := api.Group("/auth", s.rateLimit())
	auth.POST("/students", s.registerStudent())
	auth.POST("/recruiters", s.registerRecruiter())
	auth.POST("/login", s.login())

	api.GET("/users/:id", s.getUserDetails())
	api.GET("/users/:id/profile", requireIdentity(), s.getUserProfile())
	api.PATCH("/users/:id/profile/:section", requireIdentity(), requireOwner(), s.updateUserProfile())

	// these reads may create the student profile
	api.GET("/students", s.getAllStudents())
	api.POST("/students/lookup", s.lookupStudents())
	api.GET("/students/:id/preferences", requireIdentity(), s.getJobPreferences())
	api.GET("/students/:id/saved-jobs", requireIdentity(), s.getSavedJobs())
	api.PUT("/students/:id/saved-jobs/:jobId", requireIdentity(), requireOwner(), s.toggleSaveJob(true))
	api.DELETE("/students/:id/saved-jobs/:jobId", requireIdentity(), requireOwner(), s.toggleSaveJob(false))
	api.GET("/students/:id/applied-jobs", requireIdentity(), s.getAppliedJobs())

	api.GET("/search/jobs", s.searchJobs())
	api.GET("/jobs", s.getAllJobs())
	api.POST("/jobs", requireIdentity(), s.createJob())
	api.GET("/jobs/:id", s.getJob())
	api.PUT("/jobs/:id", requireIdentity(), s.requireJobOwner(), s.updateJob())
	api.PATCH("/jobs/:id/status", requireIdentity(), s.requireJobOwner(), s.updateJobStatus())
	api.POST("/jobs/:id/apply", requireIdentity(), s.applyForJob())
	api.GET("/jobs/:id/applications", requireIdentity(), s.requireJobOwner(), s.getJobApplications())
	api.GET("/recruiters/:id/jobs", s.getRecruiterJobs())

	api.POST("/applications", requireIdentity(), s.submitApplication())
	api.PATCH("/applications/:id/status", requireIdentity(), s.requireApplicationOwner(), s.updateApplicationStatus())

	return r
}

// Run blocks until the server is shut down.
func (s *Server) Run() error {
	log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
