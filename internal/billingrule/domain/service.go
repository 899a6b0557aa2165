package domain

import (
	"context"
	"errors"
)

type CreateBillingRuleRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	BillingDay  int       `json:"billing_day"`
	Amount      int64     `json:"amount"`
	ScopeType   ScopeType `json:"scope_type"`
	ClassID     string    `json:"class_id,omitempty"`
	SubjectID   string    `json:"subject_id,omitempty"`
	StudentIDs  []string  `json:"student_ids,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

// UpdateBillingRuleRequest carries partial updates; nil fields are untouched.
type UpdateBillingRuleRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	BillingDay  *int       `json:"billing_day,omitempty"`
	Amount      *int64     `json:"amount,omitempty"`
	ScopeType   *ScopeType `json:"scope_type,omitempty"`
	ClassID     *string    `json:"class_id,omitempty"`
	SubjectID   *string    `json:"subject_id,omitempty"`
	StudentIDs  []string   `json:"student_ids,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}

type ListBillingRuleRequest struct {
	ActiveOnly bool
}

type Service interface {
	Create(ctx context.Context, req CreateBillingRuleRequest) (BillingRule, error)
	Update(ctx context.Context, id string, req UpdateBillingRuleRequest) (BillingRule, error)
	List(ctx context.Context, req ListBillingRuleRequest) ([]BillingRule, error)
	GetByID(ctx context.Context, id string) (BillingRule, error)
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidBillingDay = errors.New("invalid_billing_day")
	ErrInvalidScope      = errors.New("invalid_scope")
	ErrInvalidID         = errors.New("invalid_id")
	ErrRuleNotFound      = errors.New("rule_not_found")
)
