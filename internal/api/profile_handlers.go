package api

import (
	"github.com/gin-gonic/gin"
	"net/http"
)

func (s *Server) getUserDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := s.services.Profiles.GetUserDetails(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func (s *Server) getUserProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := s.services.Profiles.GetUserProfile(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// updateUserProfile takes the new section value as the whole request body.
func (s *Server) updateUserProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var value any
		if err := c.ShouldBindJSON(&value); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		err := s.services.Profiles.UpdateUserProfile(c.Request.Context(), c.Param("id"), c.Param("section"), value)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) getAllStudents() gin.HandlerFunc {
	return func(c *gin.Context) {
		students, err := s.services.Profiles.GetAllStudents(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, students)
	}
}

func (s *Server) lookupStudents() gin.HandlerFunc {
	type request struct {
		IDs []string `json:"ids"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		students, err := s.services.Profiles.GetStudentsByIDs(c.Request.Context(), req.IDs)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, students)
	}
}

func (s *Server) getJobPreferences() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.services.Profiles.GetStudentJobPreferences(c.Request.Context(), c.Param("id")))
	}
}

func (s *Server) getSavedJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := s.services.SavedJobs.GetStudentSavedJobs(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}

func (s *Server) toggleSaveJob(save bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.services.SavedJobs.ToggleSaveJob(c.Request.Context(), c.Param("id"), c.Param("jobId"), save)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) getAppliedJobs() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs, err := s.services.Applications.GetStudentAppliedJobs(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}
