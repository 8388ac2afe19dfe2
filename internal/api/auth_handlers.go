package api

import (
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/jobmatch/internal/entities"
	"net/http"
)

func (s *Server) registerStudent() gin.HandlerFunc {
	type request struct {
		Password string `json:"password"`
		entities.StudentDetails
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		uid, err := s.services.Registration.RegisterStudent(c.Request.Context(), req.Email, req.Password, req.StudentDetails)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"uid": uid})
	}
}

func (s *Server) registerRecruiter() gin.HandlerFunc {
	type request struct {
		Password string `json:"password"`
		entities.RecruiterDetails
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		uid, err := s.services.Registration.RegisterRecruiter(c.Request.Context(), req.Email, req.Password, req.RecruiterDetails)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"uid": uid})
	}
}

func (s *Server) login() gin.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, badRequest(err))
			return
		}

		token, user, err := s.services.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}
