package repository

import (
	"context"

	executiondomain "github.com/smallbiznis/scolara/internal/execution/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() executiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, execution *executiondomain.BillingExecution) error {
	return db.WithContext(ctx).Create(execution).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter executiondomain.ListExecutionFilter) ([]executiondomain.BillingExecution, error) {
	stmt := db.WithContext(ctx).Order("execution_date DESC, created_at DESC")
	if filter.RuleID != nil {
		stmt = stmt.Where("rule_id = ?", *filter.RuleID)
	}
	var executions []executiondomain.BillingExecution
	err := stmt.Find(&executions).Error
	return executions, err
}
