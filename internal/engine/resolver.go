package engine

import (
	"context"

	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	"gorm.io/gorm"
)

// ScopeResolver expands a rule's target scope into a concrete, deduplicated
// student list. An empty result is a valid outcome, not an error.
type ScopeResolver struct {
	db     *gorm.DB
	roster rosterdomain.Repository
}

func NewScopeResolver(db *gorm.DB, roster rosterdomain.Repository) *ScopeResolver {
	return &ScopeResolver{db: db, roster: roster}
}

func (r *ScopeResolver) Resolve(ctx context.Context, rule billingruledomain.BillingRule) ([]uuid.UUID, error) {
	switch rule.ScopeType {
	case billingruledomain.ScopeExplicitStudents:
		// Explicit sets are taken verbatim; enrollment state is not consulted.
		ids := make([]uuid.UUID, 0, len(rule.StudentIDs))
		for _, raw := range rule.StudentIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, billingruledomain.ErrInvalidScope
			}
			ids = append(ids, id)
		}
		return dedupe(ids), nil
	case billingruledomain.ScopeClass:
		if rule.ClassID == nil {
			return nil, billingruledomain.ErrInvalidScope
		}
		ids, err := r.roster.FindStudentIDsByClass(ctx, r.db, *rule.ClassID)
		if err != nil {
			return nil, err
		}
		return dedupe(ids), nil
	case billingruledomain.ScopeSubject:
		if rule.SubjectID == nil {
			return nil, billingruledomain.ErrInvalidScope
		}
		ids, err := r.roster.FindStudentIDsBySubject(ctx, r.db, *rule.SubjectID)
		if err != nil {
			return nil, err
		}
		return dedupe(ids), nil
	case billingruledomain.ScopeAllStudents:
		ids, err := r.roster.FindActiveStudentIDs(ctx, r.db)
		if err != nil {
			return nil, err
		}
		return dedupe(ids), nil
	default:
		return nil, billingruledomain.ErrInvalidScope
	}
}

// dedupe preserves first-seen order so a student reachable through several
// enrollment paths is billed exactly once.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
