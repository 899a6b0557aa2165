package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() feedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, fee *feedomain.TuitionFee) error {
	return db.WithContext(ctx).Create(fee).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, fee *feedomain.TuitionFee) error {
	return db.WithContext(ctx).Save(fee).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*feedomain.TuitionFee, error) {
	var fee feedomain.TuitionFee
	err := db.WithContext(ctx).First(&fee, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fee, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter feedomain.ListFeeFilter) ([]feedomain.TuitionFee, error) {
	stmt := db.WithContext(ctx).Order("due_date ASC, created_at ASC")
	if filter.StudentID != nil {
		stmt = stmt.Where("student_id = ?", *filter.StudentID)
	}
	if filter.RuleID != nil {
		stmt = stmt.Where("rule_id = ?", *filter.RuleID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Period != "" {
		stmt = stmt.Where("period = ?", filter.Period)
	}

	var fees []feedomain.TuitionFee
	err := stmt.Find(&fees).Error
	return fees, err
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, paidAt time.Time, method string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE tuition_fees SET status = ?, payment_date = ?, payment_method = ?, updated_at = ?
		 WHERE id = ? AND status IN ?`,
		feedomain.FeeStatusPaid,
		paidAt,
		method,
		now,
		id,
		[]feedomain.FeeStatus{feedomain.FeeStatusPending, feedomain.FeeStatusOverdue},
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE tuition_fees SET status = ?, updated_at = ?
		 WHERE status = ? AND due_date < ?`,
		feedomain.FeeStatusOverdue,
		today,
		feedomain.FeeStatusPending,
		today,
	)
	return result.RowsAffected, result.Error
}
