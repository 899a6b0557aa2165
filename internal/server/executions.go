package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExecuteBilling is the manual trigger: every active rule runs for the
// current period. Safe to call repeatedly; duplicate obligations surface as
// skips, not new fees.
func (s *Server) ExecuteBilling(c *gin.Context) {
	executions, err := s.billing.ExecuteNow(c.Request.Context())
	if err != nil && len(executions) == 0 {
		AbortWithError(c, err)
		return
	}

	// Per-rule failures are reported inside the execution rows themselves.
	c.JSON(http.StatusOK, gin.H{"data": executions})
}

func (s *Server) ListExecutions(c *gin.Context) {
	executions, err := s.billing.ListExecutions(c.Request.Context(), c.Query("rule_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": executions})
}
