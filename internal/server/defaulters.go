package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	defaulterdomain "github.com/smallbiznis/scolara/internal/defaulter/domain"
)

func (s *Server) ListDefaulters(c *gin.Context) {
	summaries, err := s.defaulterSvc.ListDefaulters(c.Request.Context(), defaulterdomain.ListDefaulterRequest{
		SortBy: defaulterdomain.SortBy(c.Query("sort_by")),
		Filter: defaulterdomain.Filter(c.Query("filter")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

type recordContactRequest struct {
	Note *string `json:"note,omitempty"`
}

func (s *Server) RecordDefaulterContact(c *gin.Context) {
	var req recordContactRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	contact, err := s.defaulterSvc.RecordContact(c.Request.Context(), defaulterdomain.RecordContactRequest{
		StudentID: c.Param("student_id"),
		Note:      req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": contact})
}
