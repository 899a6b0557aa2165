package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
)

type recordPaymentRequest struct {
	Method string `json:"method"`
	PaidAt string `json:"paid_at,omitempty"`
}

func (s *Server) RecordFeePayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	svcReq := feedomain.RecordPaymentRequest{
		FeeID:  c.Param("id"),
		Method: req.Method,
	}
	if req.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		svcReq.PaidAt = &paidAt
	}

	fee, err := s.feeSvc.RecordPayment(c.Request.Context(), svcReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fee})
}

type cancelFeeRequest struct {
	Note *string `json:"note,omitempty"`
}

func (s *Server) CancelFee(c *gin.Context) {
	var req cancelFeeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	fee, err := s.feeSvc.Cancel(c.Request.Context(), feedomain.CancelFeeRequest{
		FeeID: c.Param("id"),
		Note:  req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fee})
}

func (s *Server) ListFees(c *gin.Context) {
	fees, err := s.feeSvc.List(c.Request.Context(), feedomain.ListFeeRequest{
		StudentID: c.Query("student_id"),
		RuleID:    c.Query("rule_id"),
		Status:    c.Query("status"),
		Period:    c.Query("period"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fees})
}

func (s *Server) GetFee(c *gin.Context) {
	fee, err := s.feeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fee})
}

func (s *Server) SweepOverdue(c *gin.Context) {
	count, err := s.feeSvc.SweepOverdue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"fees_flagged": count}})
}
