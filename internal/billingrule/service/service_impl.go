package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	"github.com/smallbiznis/scolara/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  billingruledomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  billingruledomain.Repository
}

func NewService(p ServiceParam) billingruledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("billingrule.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req billingruledomain.CreateBillingRuleRequest) (billingruledomain.BillingRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return billingruledomain.BillingRule{}, billingruledomain.ErrInvalidName
	}
	if req.Amount <= 0 {
		return billingruledomain.BillingRule{}, billingruledomain.ErrInvalidAmount
	}
	if req.BillingDay < 1 || req.BillingDay > 31 {
		return billingruledomain.BillingRule{}, billingruledomain.ErrInvalidBillingDay
	}

	classID, subjectID, studentIDs, err := resolveScopeFields(req.ScopeType, req.ClassID, req.SubjectID, req.StudentIDs)
	if err != nil {
		return billingruledomain.BillingRule{}, err
	}

	now := s.clock.Now()
	rule := billingruledomain.BillingRule{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		BillingDay:  req.BillingDay,
		Amount:      req.Amount,
		ScopeType:   req.ScopeType,
		ClassID:     classID,
		SubjectID:   subjectID,
		StudentIDs:  studentIDs,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		return billingruledomain.BillingRule{}, err
	}

	s.log.Info("billing rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("scope", string(rule.ScopeType)),
		zap.Int64("amount", rule.Amount),
	)
	return rule, nil
}

func (s *Service) Update(ctx context.Context, id string, req billingruledomain.UpdateBillingRuleRequest) (billingruledomain.BillingRule, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return billingruledomain.BillingRule{}, err
	}

	rule, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return billingruledomain.BillingRule{}, err
	}
	if rule == nil {
		return billingruledomain.BillingRule{}, billingruledomain.ErrRuleNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return billingruledomain.BillingRule{}, billingruledomain.ErrInvalidName
		}
		rule.Name = name
	}
	if req.Description != nil {
		rule.Description = req.Description
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return billingruledomain.BillingRule{}, billingruledomain.ErrInvalidAmount
		}
		rule.Amount = *req.Amount
	}
	if req.BillingDay != nil {
		if *req.BillingDay < 1 || *req.BillingDay > 31 {
			return billingruledomain.BillingRule{}, billingruledomain.ErrInvalidBillingDay
		}
		rule.BillingDay = *req.BillingDay
	}
	if req.ScopeType != nil {
		classRef := ""
		if req.ClassID != nil {
			classRef = *req.ClassID
		}
		subjectRef := ""
		if req.SubjectID != nil {
			subjectRef = *req.SubjectID
		}
		classID, subjectID, studentIDs, err := resolveScopeFields(*req.ScopeType, classRef, subjectRef, req.StudentIDs)
		if err != nil {
			return billingruledomain.BillingRule{}, err
		}
		rule.ScopeType = *req.ScopeType
		rule.ClassID = classID
		rule.SubjectID = subjectID
		rule.StudentIDs = studentIDs
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	rule.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return billingruledomain.BillingRule{}, err
	}
	return *rule, nil
}

func (s *Service) List(ctx context.Context, req billingruledomain.ListBillingRuleRequest) ([]billingruledomain.BillingRule, error) {
	return s.repo.List(ctx, s.db, req.ActiveOnly)
}

func (s *Service) GetByID(ctx context.Context, id string) (billingruledomain.BillingRule, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return billingruledomain.BillingRule{}, err
	}
	rule, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return billingruledomain.BillingRule{}, err
	}
	if rule == nil {
		return billingruledomain.BillingRule{}, billingruledomain.ErrRuleNotFound
	}
	return *rule, nil
}

// resolveScopeFields validates that the scope reference matching the scope
// type is present and well-formed, and clears the others.
func resolveScopeFields(scopeType billingruledomain.ScopeType, classRef, subjectRef string, studentRefs []string) (*uuid.UUID, *uuid.UUID, datatypes.JSONSlice[string], error) {
	switch scopeType {
	case billingruledomain.ScopeAllStudents:
		return nil, nil, nil, nil
	case billingruledomain.ScopeClass:
		id, err := uuid.Parse(strings.TrimSpace(classRef))
		if err != nil {
			return nil, nil, nil, billingruledomain.ErrInvalidScope
		}
		return &id, nil, nil, nil
	case billingruledomain.ScopeSubject:
		id, err := uuid.Parse(strings.TrimSpace(subjectRef))
		if err != nil {
			return nil, nil, nil, billingruledomain.ErrInvalidScope
		}
		return nil, &id, nil, nil
	case billingruledomain.ScopeExplicitStudents:
		if len(studentRefs) == 0 {
			return nil, nil, nil, billingruledomain.ErrInvalidScope
		}
		seen := make(map[string]struct{}, len(studentRefs))
		ids := make([]string, 0, len(studentRefs))
		for _, raw := range studentRefs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return nil, nil, nil, billingruledomain.ErrInvalidScope
			}
			key := id.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			ids = append(ids, key)
		}
		return nil, nil, datatypes.NewJSONSlice(ids), nil
	default:
		return nil, nil, nil, billingruledomain.ErrInvalidScope
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, billingruledomain.ErrInvalidID
	}
	return id, nil
}
