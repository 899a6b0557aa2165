// Package domain contains the append-only audit record for billing engine
// runs: one row per rule per execution, immutable after insert.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS"
	ExecutionStatusPartial ExecutionStatus = "PARTIAL"
	ExecutionStatusFailed  ExecutionStatus = "FAILED"
)

type BillingExecution struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	RuleID        uuid.UUID       `gorm:"type:char(36);not null;index" json:"rule_id"`
	ExecutionDate time.Time       `gorm:"not null" json:"execution_date"`
	Period        string          `gorm:"type:varchar(7);not null" json:"period"`
	FeesGenerated int             `gorm:"not null" json:"fees_generated"`
	TotalAmount   int64           `gorm:"not null" json:"total_amount"`
	Status        ExecutionStatus `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage  *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BillingExecution) TableName() string { return "billing_executions" }
