package domain

import (
	"context"
	"errors"
	"time"
)

type RecordPaymentRequest struct {
	FeeID  string     `json:"-"`
	Method string     `json:"method"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

type CancelFeeRequest struct {
	FeeID string  `json:"-"`
	Note  *string `json:"note,omitempty"`
}

type ListFeeRequest struct {
	StudentID string
	RuleID    string
	Status    string
	Period    string
}

type Service interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (TuitionFee, error)
	Cancel(ctx context.Context, req CancelFeeRequest) (TuitionFee, error)
	// SweepOverdue flags every pending fee whose due date has passed.
	SweepOverdue(ctx context.Context) (int64, error)
	List(ctx context.Context, req ListFeeRequest) ([]TuitionFee, error)
	GetByID(ctx context.Context, id string) (TuitionFee, error)
}

var (
	ErrInvalidID       = errors.New("invalid_fee_id")
	ErrInvalidMethod   = errors.New("invalid_payment_method")
	ErrInvalidStatus   = errors.New("invalid_fee_status")
	ErrFeeNotFound     = errors.New("fee_not_found")
	ErrInvalidFeeState = errors.New("invalid_fee_state")
)
