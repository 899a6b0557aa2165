package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/scolara/internal/clock"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  feedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  feedomain.Repository
}

func NewService(p ServiceParam) feedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("fee.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) RecordPayment(ctx context.Context, req feedomain.RecordPaymentRequest) (feedomain.TuitionFee, error) {
	feeID, err := parseID(req.FeeID)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return feedomain.TuitionFee{}, feedomain.ErrInvalidMethod
	}

	now := s.clock.Now()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}

	// Settle with a single conditional update so two concurrent payments
	// against the same fee cannot both win.
	rows, err := s.repo.MarkPaid(ctx, s.db, feeID, paidAt, method, now)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}

	fee, err := s.repo.FindByID(ctx, s.db, feeID)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}
	if fee == nil {
		return feedomain.TuitionFee{}, feedomain.ErrFeeNotFound
	}
	if rows == 0 {
		// The fee exists but was already paid or cancelled.
		return feedomain.TuitionFee{}, feedomain.ErrInvalidFeeState
	}

	s.log.Info("fee payment recorded",
		zap.String("fee_id", fee.ID.String()),
		zap.String("student_id", fee.StudentID.String()),
		zap.Int64("amount", fee.Amount),
		zap.String("method", method),
	)
	return *fee, nil
}

func (s *Service) Cancel(ctx context.Context, req feedomain.CancelFeeRequest) (feedomain.TuitionFee, error) {
	feeID, err := parseID(req.FeeID)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}

	fee, err := s.repo.FindByID(ctx, s.db, feeID)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}
	if fee == nil {
		return feedomain.TuitionFee{}, feedomain.ErrFeeNotFound
	}
	if fee.Status == feedomain.FeeStatusPaid || fee.Status == feedomain.FeeStatusCancelled {
		return feedomain.TuitionFee{}, feedomain.ErrInvalidFeeState
	}

	fee.Status = feedomain.FeeStatusCancelled
	if req.Note != nil {
		fee.Notes = req.Note
	}
	fee.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, fee); err != nil {
		return feedomain.TuitionFee{}, err
	}
	return *fee, nil
}

func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	today := s.clock.Now().Truncate(24 * time.Hour)
	count, err := s.repo.MarkOverdue(ctx, s.db, today)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info("overdue sweep completed", zap.Int64("fees_flagged", count))
	}
	return count, nil
}

func (s *Service) List(ctx context.Context, req feedomain.ListFeeRequest) ([]feedomain.TuitionFee, error) {
	filter := feedomain.ListFeeFilter{
		Period: strings.TrimSpace(req.Period),
	}
	if raw := strings.ToUpper(strings.TrimSpace(req.Status)); raw != "" {
		switch status := feedomain.FeeStatus(raw); status {
		case feedomain.FeeStatusPending,
			feedomain.FeeStatusPaid,
			feedomain.FeeStatusOverdue,
			feedomain.FeeStatusCancelled:
			filter.Status = status
		default:
			return nil, feedomain.ErrInvalidStatus
		}
	}
	if raw := strings.TrimSpace(req.StudentID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, feedomain.ErrInvalidID
		}
		filter.StudentID = &id
	}
	if raw := strings.TrimSpace(req.RuleID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, feedomain.ErrInvalidID
		}
		filter.RuleID = &id
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) GetByID(ctx context.Context, id string) (feedomain.TuitionFee, error) {
	feeID, err := parseID(id)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}
	fee, err := s.repo.FindByID(ctx, s.db, feeID)
	if err != nil {
		return feedomain.TuitionFee{}, err
	}
	if fee == nil {
		return feedomain.TuitionFee{}, feedomain.ErrFeeNotFound
	}
	return *fee, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, feedomain.ErrInvalidID
	}
	return id, nil
}
