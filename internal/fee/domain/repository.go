package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFeeFilter struct {
	StudentID *uuid.UUID
	RuleID    *uuid.UUID
	Status    FeeStatus
	Period    string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, fee *TuitionFee) error
	Update(ctx context.Context, db *gorm.DB, fee *TuitionFee) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*TuitionFee, error)
	List(ctx context.Context, db *gorm.DB, filter ListFeeFilter) ([]TuitionFee, error)
	// MarkPaid settles the fee only while it is still PENDING or OVERDUE.
	// Returns the number of rows changed; zero means the fee is missing or
	// already settled, and a concurrent second payment loses the update.
	MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, paidAt time.Time, method string, now time.Time) (int64, error)
	// MarkOverdue flips PENDING fees past their due date to OVERDUE and
	// returns the number of rows changed. Re-running is a no-op for fees
	// already overdue.
	MarkOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error)
}
