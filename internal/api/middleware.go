package api

import (
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobmatch/internal/identity"
	"github.com/maxaizer/jobmatch/internal/services"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"net/http"
	"strings"
	"sync"
	"time"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request handled")
	}
}

// authenticate attaches the identity of a valid bearer token to the request context.
// Requests without a token pass through anonymously; a bad token is rejected.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		current, err := s.services.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), current))
		c.Next()
	}
}

func requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireOwner lets through only the user the :id path parameter names.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := identity.FromContext(c.Request.Context())
		if current.UID != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you can only change your own profile"})
			return
		}
		c.Next()
	}
}

func (s *Server) checkJobOwner(c *gin.Context, jobID string) bool {
	job, err := s.services.Jobs.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		abortWithError(c, err)
		return false
	}
	if job == nil {
		abortWithError(c, services.ErrJobNotFound)
		return false
	}

	current, _ := identity.FromContext(c.Request.Context())
	if job.PostedBy == "" || job.PostedBy != current.UID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "job belongs to another recruiter"})
		return false
	}
	return true
}

// requireJobOwner lets through only the user who posted the :id job.
func (s *Server) requireJobOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.checkJobOwner(c, c.Param("id")) {
			c.Next()
		}
	}
}

// requireApplicationOwner lets through only the user who posted the job of the :id application.
func (s *Server) requireApplicationOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		application, err := s.services.Applications.GetApplicationByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if application == nil {
			abortWithError(c, services.ErrApplicationNotFound)
			return
		}
		if s.checkJobOwner(c, application.JobID) {
			c.Next()
		}
	}
}

type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newClientLimiter(requestsPerSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{limiters: map[string]*rate.Limiter{}, limit: rate.Limit(requestsPerSecond), burst: burst}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[client]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[client] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AuthRequestsPerSecond > 0 && !s.limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
