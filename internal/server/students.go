package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListStudents(c *gin.Context) {
	students, err := s.rosterRepo.ListStudents(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": students})
}
