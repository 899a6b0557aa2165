package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *BillingRule) error
	Update(ctx context.Context, db *gorm.DB, rule *BillingRule) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*BillingRule, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]BillingRule, error)
}
