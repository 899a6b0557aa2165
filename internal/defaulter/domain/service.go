package domain

import (
	"context"
	"errors"
)

type ListDefaulterRequest struct {
	SortBy SortBy
	Filter Filter
}

type RecordContactRequest struct {
	StudentID string  `json:"-"`
	Note      *string `json:"note,omitempty"`
}

type Service interface {
	ListDefaulters(ctx context.Context, req ListDefaulterRequest) ([]DefaulterSummary, error)
	RecordContact(ctx context.Context, req RecordContactRequest) (DefaulterContact, error)
}

var (
	ErrInvalidSortBy    = errors.New("invalid_sort_by")
	ErrInvalidFilter    = errors.New("invalid_filter")
	ErrInvalidStudentID = errors.New("invalid_student_id")
)
