package api

import (
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/maxaizer/jobmatch/internal/identity"
	"net/http"
)

// submitApplication always applies on behalf of the signed-in user.
func (s *Server) submitApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input entities.ApplicationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		current, _ := identity.FromContext(c.Request.Context())
		input.StudentID = current.UID

		result, err := s.services.Applications.SubmitJobApplication(c.Request.Context(), input)
		if err != nil {
			abortWithError(c, err)
			return
		}

		status := http.StatusCreated
		if result.AlreadyApplied {
			status = http.StatusOK
		}
		c.JSON(status, result)
	}
}

func (s *Server) updateApplicationStatus() gin.HandlerFunc {
	type request struct {
		Status entities.ApplicationStatus `json:"status"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		err := s.services.Applications.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
