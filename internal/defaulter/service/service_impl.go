package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/scolara/internal/clock"
	"github.com/smallbiznis/scolara/internal/config"
	defaulterdomain "github.com/smallbiznis/scolara/internal/defaulter/domain"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	config *config.DefaulterConfigHolder
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config *config.DefaulterConfigHolder
}

func NewService(p ServiceParam) defaulterdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("defaulter.service"),
		clock:  p.Clock,
		config: p.Config,
	}
}

type overdueRow struct {
	StudentID         uuid.UUID
	StudentName       string
	OverdueAmount     int64
	OverdueCount      int
	OldestOverdueDate time.Time
}

type contactRow struct {
	StudentID       uuid.UUID
	LastContactedAt time.Time
}

func (s *Service) ListDefaulters(ctx context.Context, req defaulterdomain.ListDefaulterRequest) ([]defaulterdomain.DefaulterSummary, error) {
	sortBy, err := normalizeSortBy(req.SortBy)
	if err != nil {
		return nil, err
	}
	filter, err := normalizeFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	var rows []overdueRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT f.student_id,
		        COALESCE(st.full_name, '') AS student_name,
		        SUM(f.amount) AS overdue_amount,
		        COUNT(*) AS overdue_count,
		        MIN(f.due_date) AS oldest_overdue_date
		 FROM tuition_fees f
		 LEFT JOIN students st ON st.id = f.student_id
		 WHERE f.status = ?
		 GROUP BY f.student_id, st.full_name`,
		feedomain.FeeStatusOverdue,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	contacts, err := s.lastContacts(ctx)
	if err != nil {
		return nil, err
	}

	cfg := s.config.Get()
	today := s.clock.Now()

	summaries := make([]defaulterdomain.DefaulterSummary, 0, len(rows))
	for _, row := range rows {
		days := int(today.Sub(row.OldestOverdueDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		summary := defaulterdomain.DefaulterSummary{
			StudentID:             row.StudentID,
			StudentName:           row.StudentName,
			OverdueAmount:         row.OverdueAmount,
			OverdueCount:          row.OverdueCount,
			OldestOverdueDate:     row.OldestOverdueDate,
			DaysSinceFirstOverdue: days,
			Severity:              classify(days, row.OverdueAmount, cfg.Thresholds),
		}
		if contactedAt, ok := contacts[row.StudentID]; ok {
			at := contactedAt
			summary.LastContactedAt = &at
		}
		if !matchesFilter(summary, filter, cfg.RecentDays) {
			continue
		}
		summaries = append(summaries, summary)
	}

	sortSummaries(summaries, sortBy)
	return summaries, nil
}

func (s *Service) RecordContact(ctx context.Context, req defaulterdomain.RecordContactRequest) (defaulterdomain.DefaulterContact, error) {
	studentID, err := uuid.Parse(strings.TrimSpace(req.StudentID))
	if err != nil {
		return defaulterdomain.DefaulterContact{}, defaulterdomain.ErrInvalidStudentID
	}

	now := s.clock.Now()
	contact := defaulterdomain.DefaulterContact{
		ID:          uuid.New(),
		StudentID:   studentID,
		ContactedAt: now,
		Note:        req.Note,
		CreatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return defaulterdomain.DefaulterContact{}, err
	}

	s.log.Info("defaulter contact recorded", zap.String("student_id", studentID.String()))
	return contact, nil
}

func (s *Service) lastContacts(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	var rows []contactRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT student_id, MAX(contacted_at) AS last_contacted_at
		 FROM defaulter_contacts GROUP BY student_id`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	contacts := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range rows {
		contacts[row.StudentID] = row.LastContactedAt
	}
	return contacts, nil
}

func classify(days int, amount int64, t config.SeverityThresholds) defaulterdomain.Severity {
	switch {
	case days > t.CriticalDays || amount > t.CriticalAmount:
		return defaulterdomain.SeverityCritical
	case days > t.HighDays || amount > t.HighAmount:
		return defaulterdomain.SeverityHigh
	default:
		return defaulterdomain.SeverityModerate
	}
}

func matchesFilter(s defaulterdomain.DefaulterSummary, filter defaulterdomain.Filter, recentDays int) bool {
	switch filter {
	case defaulterdomain.FilterCritical:
		return s.Severity == defaulterdomain.SeverityCritical
	case defaulterdomain.FilterRecent:
		return s.DaysSinceFirstOverdue <= recentDays
	case defaulterdomain.FilterContacted:
		return s.LastContactedAt != nil
	case defaulterdomain.FilterNotContacted:
		return s.LastContactedAt == nil
	default:
		return true
	}
}

func sortSummaries(summaries []defaulterdomain.DefaulterSummary, sortBy defaulterdomain.SortBy) {
	sort.SliceStable(summaries, func(i, j int) bool {
		switch sortBy {
		case defaulterdomain.SortByDays:
			return summaries[i].DaysSinceFirstOverdue > summaries[j].DaysSinceFirstOverdue
		case defaulterdomain.SortByCount:
			return summaries[i].OverdueCount > summaries[j].OverdueCount
		default:
			return summaries[i].OverdueAmount > summaries[j].OverdueAmount
		}
	})
}

func normalizeSortBy(raw defaulterdomain.SortBy) (defaulterdomain.SortBy, error) {
	switch raw {
	case "", defaulterdomain.SortByAmount:
		return defaulterdomain.SortByAmount, nil
	case defaulterdomain.SortByDays, defaulterdomain.SortByCount:
		return raw, nil
	default:
		return "", defaulterdomain.ErrInvalidSortBy
	}
}

func normalizeFilter(raw defaulterdomain.Filter) (defaulterdomain.Filter, error) {
	switch raw {
	case "", defaulterdomain.FilterAll:
		return defaulterdomain.FilterAll, nil
	case defaulterdomain.FilterCritical,
		defaulterdomain.FilterRecent,
		defaulterdomain.FilterContacted,
		defaulterdomain.FilterNotContacted:
		return raw, nil
	default:
		return "", defaulterdomain.ErrInvalidFilter
	}
}
