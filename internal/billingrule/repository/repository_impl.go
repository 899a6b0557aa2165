package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() billingruledomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *billingruledomain.BillingRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rule *billingruledomain.BillingRule) error {
	return db.WithContext(ctx).Save(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*billingruledomain.BillingRule, error) {
	var rule billingruledomain.BillingRule
	err := db.WithContext(ctx).First(&rule, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]billingruledomain.BillingRule, error) {
	var rules []billingruledomain.BillingRule
	stmt := db.WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}
	err := stmt.Find(&rules).Error
	return rules, err
}
