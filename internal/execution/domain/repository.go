package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListExecutionFilter struct {
	RuleID *uuid.UUID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, execution *BillingExecution) error
	List(ctx context.Context, db *gorm.DB, filter ListExecutionFilter) ([]BillingExecution, error)
}
