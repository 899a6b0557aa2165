// Package domain contains persistence models and contracts for tuition fees.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type FeeStatus string

const (
	FeeStatusPending   FeeStatus = "PENDING"
	FeeStatusPaid      FeeStatus = "PAID"
	FeeStatusOverdue   FeeStatus = "OVERDUE"
	FeeStatusCancelled FeeStatus = "CANCELLED"
)

// TuitionFee is one materialized monthly obligation. Engine-generated fees
// carry the originating rule and the billing period; the pair
// (student_id, rule_id, period) is unique, which is what makes re-running a
// billing execution safe.
type TuitionFee struct {
	ID            uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID     uuid.UUID  `gorm:"type:char(36);not null;index" json:"student_id"`
	ClassID       *uuid.UUID `gorm:"type:char(36);index" json:"class_id,omitempty"`
	RuleID        *uuid.UUID `gorm:"type:char(36);index" json:"rule_id,omitempty"`
	Period        string     `gorm:"type:varchar(7);not null" json:"period"`
	Amount        int64      `gorm:"not null" json:"amount"`
	DueDate       time.Time  `gorm:"not null;index" json:"due_date"`
	Status        FeeStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentDate   *time.Time `gorm:"" json:"payment_date,omitempty"`
	PaymentMethod *string    `gorm:"type:text" json:"payment_method,omitempty"`
	Notes         *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TuitionFee) TableName() string { return "tuition_fees" }

// PeriodOf returns the billing period identity for a point in time.
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// DueDateFor computes the due date of a period, clamping the billing day to
// the last day of short months.
func DueDateFor(period time.Time, billingDay int) time.Time {
	lastDay := time.Date(period.Year(), period.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := billingDay
	if day > lastDay {
		day = lastDay
	}
	return time.Date(period.Year(), period.Month(), day, 0, 0, 0, 0, time.UTC)
}
