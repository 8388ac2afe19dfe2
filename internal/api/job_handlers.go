package api

import (
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/identity"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) getAllJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				abortWithError(c, badRequest(errInvalidQuery("limit", raw)))
				return
			}
			limit = parsed
		}

		page, err := s.services.Jobs.GetAllJobs(c.Request.Context(), c.Query("cursor"), limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func parseAmount(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest(errInvalidQuery(name, raw))
	}
	return &value, nil
}

func searchCriteria(c *gin.Context) (entities.SearchCriteria, error) {
	criteria := entities.SearchCriteria{
		Query:  c.Query("q"),
		Status: entities.JobStatus(c.Query("status")),
	}
	if skills := c.Query("skills"); skills != "" {
		criteria.Skills = strings.Split(skills, ",")
	}

	minPayment, err := parseAmount(c, "min")
	if err != nil {
		return criteria, err
	}
	maxPayment, err := parseAmount(c, "max")
	if err != nil {
		return criteria, err
	}
	if minPayment != nil || maxPayment != nil {
		criteria.Payment = &entities.PaymentRange{Min: minPayment, Max: maxPayment}
	}
	return criteria, nil
}

// searchJobs remembers the query of a signed-in user as a recent search.
func (s *Server) searchJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		criteria, err := searchCriteria(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		jobs, err := s.services.Jobs.SearchJobs(ctx, criteria)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if current, ok := identity.FromContext(ctx); ok && strings.TrimSpace(criteria.Query) != "" {
			if err = s.services.Profiles.RecordRecentSearch(ctx, current.UID, criteria.Query); err != nil {
				log.Warnf("failed to record recent search of %s: %v", current.UID, err)
			}
		}
		c.JSON(http.StatusOK, jobs)
	}
}

func (s *Server) createJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input entities.JobInput
		if err := c.ShouldBindJSON(&input); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		current, _ := identity.FromContext(c.Request.Context())
		input.PostedBy = current.UID
		input.Status = lo.Ternary(input.Status == "", entities.JobOpen, input.Status)

		id, err := s.services.Jobs.CreateJob(c.Request.Context(), input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"jobId": id})
	}
}

func (s *Server) getJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := s.services.Jobs.GetJobByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		if job == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func (s *Server) updateJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input entities.JobInput
		if err := c.ShouldBindJSON(&input); err != nil {
			abortWithError(c, badRequest(err))
			return
		}
		input.PostedBy = ""

		if err := s.services.Jobs.UpdateJob(c.Request.Context(), c.Param("id"), input); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) updateJobStatus() gin.HandlerFunc {
	type request struct {
		Status entities.JobStatus `json:"status"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		if err := s.services.Jobs.UpdateJobStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) applyForJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := identity.FromContext(c.Request.Context())
		if err := s.services.Jobs.ApplyForJob(c.Request.Context(), c.Param("id"), current.UID); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) getJobApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		applications, err := s.services.Applications.GetJobApplications(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, applications)
	}
}

func (s *Server) getRecruiterJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := s.services.Jobs.GetRecruiterJobs(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}
