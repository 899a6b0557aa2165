// Package domain contains persistence models and contracts for recurring
// billing rules.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScopeType selects which students a rule applies to. Exactly one scope is
// carried per rule; the per-type reference fields are validated at the
// service boundary so invalid combinations never reach storage.
type ScopeType string

const (
	ScopeAllStudents      ScopeType = "ALL_STUDENTS"
	ScopeClass            ScopeType = "CLASS"
	ScopeSubject          ScopeType = "SUBJECT"
	ScopeExplicitStudents ScopeType = "STUDENTS"
)

// BillingRule is a recurring tuition obligation template. Rules are never
// hard-deleted once execution history references them; deactivation is the
// only retirement path.
type BillingRule struct {
	ID          uuid.UUID                   `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string                      `gorm:"not null" json:"name"`
	Description *string                     `gorm:"type:text" json:"description,omitempty"`
	BillingDay  int                         `gorm:"not null" json:"billing_day"`
	Amount      int64                       `gorm:"not null" json:"amount"`
	ScopeType   ScopeType                   `gorm:"type:varchar(20);not null" json:"scope_type"`
	ClassID     *uuid.UUID                  `gorm:"type:char(36);index" json:"class_id,omitempty"`
	SubjectID   *uuid.UUID                  `gorm:"type:char(36);index" json:"subject_id,omitempty"`
	StudentIDs  datatypes.JSONSlice[string] `json:"student_ids,omitempty"`
	Active      bool                        `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BillingRule) TableName() string { return "billing_rules" }

// DueOn reports whether the rule fires on the given calendar date. A billing
// day past the end of the month clamps to the month's last day.
func (r BillingRule) DueOn(date time.Time) bool {
	lastDay := time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, date.Location()).Day()
	day := r.BillingDay
	if day > lastDay {
		day = lastDay
	}
	return date.Day() == day
}
