// Package domain contains the derived defaulter view: students with overdue
// tuition fees, aggregated and ranked by debt severity.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

type SortBy string

const (
	SortByAmount SortBy = "amount"
	SortByDays   SortBy = "days"
	SortByCount  SortBy = "count"
)

type Filter string

const (
	FilterAll          Filter = "all"
	FilterCritical     Filter = "critical"
	FilterRecent       Filter = "recent"
	FilterContacted    Filter = "contacted"
	FilterNotContacted Filter = "notContacted"
)

// DefaulterSummary is derived from the fee table on demand, never persisted.
type DefaulterSummary struct {
	StudentID             uuid.UUID  `json:"student_id"`
	StudentName           string     `json:"student_name,omitempty"`
	OverdueAmount         int64      `json:"overdue_amount"`
	OverdueCount          int        `json:"overdue_count"`
	OldestOverdueDate     time.Time  `json:"oldest_overdue_date"`
	DaysSinceFirstOverdue int        `json:"days_since_first_overdue"`
	Severity              Severity   `json:"severity"`
	LastContactedAt       *time.Time `json:"last_contacted_at,omitempty"`
}

// DefaulterContact logs an outreach attempt to a defaulting student's family.
type DefaulterContact struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID   uuid.UUID `gorm:"type:char(36);not null;index" json:"student_id"`
	ContactedAt time.Time `gorm:"not null" json:"contacted_at"`
	Note        *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DefaulterContact) TableName() string { return "defaulter_contacts" }
