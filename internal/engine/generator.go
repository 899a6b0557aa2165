package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	"github.com/smallbiznis/scolara/pkg/db"
	"gorm.io/gorm"
)

type Outcome string

const (
	OutcomeCreated          Outcome = "CREATED"
	OutcomeSkippedDuplicate Outcome = "SKIPPED_DUPLICATE"
	OutcomeFailed           Outcome = "FAILED"
)

type GenerationResult struct {
	StudentID uuid.UUID
	Outcome   Outcome
	Err       error
}

// FeeGenerator materializes one pending tuition fee per (student, rule,
// period). Idempotency rests on the unique index over that key: the insert is
// attempted unconditionally and a duplicate-key rejection is classified as a
// skip, so two racing runs can never both create the obligation.
type FeeGenerator struct {
	db      *gorm.DB
	feeRepo feedomain.Repository
}

func NewFeeGenerator(conn *gorm.DB, feeRepo feedomain.Repository) *FeeGenerator {
	return &FeeGenerator{db: conn, feeRepo: feeRepo}
}

func (g *FeeGenerator) Generate(ctx context.Context, rule billingruledomain.BillingRule, studentID uuid.UUID, period time.Time, now time.Time) GenerationResult {
	fee := feedomain.TuitionFee{
		ID:        uuid.New(),
		StudentID: studentID,
		ClassID:   rule.ClassID,
		RuleID:    &rule.ID,
		Period:    feedomain.PeriodOf(period),
		Amount:    rule.Amount,
		DueDate:   feedomain.DueDateFor(period, rule.BillingDay),
		Status:    feedomain.FeeStatusPending,
		Notes:     ruleNote(rule),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.feeRepo.Insert(ctx, g.db, &fee); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return GenerationResult{StudentID: studentID, Outcome: OutcomeSkippedDuplicate}
		}
		return GenerationResult{StudentID: studentID, Outcome: OutcomeFailed, Err: err}
	}
	return GenerationResult{StudentID: studentID, Outcome: OutcomeCreated}
}

func ruleNote(rule billingruledomain.BillingRule) *string {
	if rule.Description != nil && *rule.Description != "" {
		return rule.Description
	}
	if rule.Name != "" {
		name := rule.Name
		return &name
	}
	return nil
}
