// Package engine implements the recurring billing automation engine: it
// expands active billing rules into student sets, materializes tuition fees
// idempotently, and records one immutable execution row per rule per run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	"github.com/smallbiznis/scolara/internal/clock"
	executiondomain "github.com/smallbiznis/scolara/internal/execution/domain"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	obsmetrics "github.com/smallbiznis/scolara/internal/observability/metrics"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("engine: missing required dependency")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	RuleRepo   billingruledomain.Repository
	RosterRepo rosterdomain.Repository
	FeeRepo    feedomain.Repository
	ExecRepo   executiondomain.Repository
	FeeSvc     feedomain.Service

	Locker RuleLocker `optional:"true"`
	Config Config     `optional:"true"`
}

type Engine struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	genID    *snowflake.Node
	clock    clock.Clock
	ruleRepo billingruledomain.Repository
	execRepo executiondomain.Repository
	feeSvc   feedomain.Service

	resolver  *ScopeResolver
	generator *FeeGenerator
	locker    RuleLocker
}

func New(p Params) (*Engine, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil ||
		p.RuleRepo == nil || p.RosterRepo == nil || p.FeeRepo == nil ||
		p.ExecRepo == nil || p.FeeSvc == nil {
		return nil, ErrInvalidConfig
	}
	locker := p.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Engine{
		db:        p.DB,
		log:       p.Log.Named("engine").With(zap.String("component", "billing_engine")),
		cfg:       p.Config.withDefaults(),
		genID:     p.GenID,
		clock:     p.Clock,
		ruleRepo:  p.RuleRepo,
		execRepo:  p.ExecRepo,
		feeSvc:    p.FeeSvc,
		resolver:  NewScopeResolver(p.DB, p.RosterRepo),
		generator: NewFeeGenerator(p.DB, p.FeeRepo),
		locker:    locker,
	}, nil
}

// ExecuteNow applies every active rule for the current billing period,
// regardless of billing day. This is the manual trigger; re-running within
// the same period is safe and reports duplicates as skips.
func (e *Engine) ExecuteNow(ctx context.Context) ([]executiondomain.BillingExecution, error) {
	rules, err := e.ruleRepo.List(ctx, e.db, true)
	if err != nil {
		return nil, err
	}
	return e.executeRules(ctx, rules)
}

// ExecuteDue applies active rules whose billing day matches today, clamped to
// the month's last day. This is the routine the daily schedule drives.
func (e *Engine) ExecuteDue(ctx context.Context) ([]executiondomain.BillingExecution, error) {
	rules, err := e.ruleRepo.List(ctx, e.db, true)
	if err != nil {
		return nil, err
	}
	today := e.clock.Now()
	due := rules[:0:0]
	for _, rule := range rules {
		if rule.DueOn(today) {
			due = append(due, rule)
		}
	}
	return e.executeRules(ctx, due)
}

func (e *Engine) executeRules(ctx context.Context, rules []billingruledomain.BillingRule) ([]executiondomain.BillingExecution, error) {
	now := e.clock.Now()
	runID := e.genID.Generate().String()
	log := e.log.With(zap.String("run_id", runID))
	log.Info("billing run started", zap.Int("rules", len(rules)))

	executions := make([]executiondomain.BillingExecution, 0, len(rules))
	var runErr error

	for _, rule := range rules {
		if ctx.Err() != nil {
			// Aborted runs keep whatever per-rule executions already landed.
			return executions, errors.Join(runErr, ctx.Err())
		}

		exec, err := e.executeRule(ctx, log, rule, now)
		if err != nil {
			runErr = errors.Join(runErr, err)
		}
		if exec == nil {
			continue // lock not acquired, another run owns this rule
		}

		if err := e.execRepo.Insert(ctx, e.db, exec); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("record execution for rule %s: %w", rule.ID, err))
			log.Error("execution record insert failed",
				zap.String("rule_id", rule.ID.String()),
				zap.Error(err),
			)
		}
		executions = append(executions, *exec)
		obsmetrics.ObserveRuleExecution(string(exec.Status), exec.FeesGenerated)
	}

	log.Info("billing run finished",
		zap.Int("executions", len(executions)),
		zap.Bool("had_errors", runErr != nil),
	)
	return executions, runErr
}

// executeRule runs one rule in isolation. A nil execution means the per-rule
// lock was held elsewhere; every other path yields exactly one audit row.
func (e *Engine) executeRule(ctx context.Context, log *zap.Logger, rule billingruledomain.BillingRule, now time.Time) (*executiondomain.BillingExecution, error) {
	lockKey := "engine:rule:" + rule.ID.String()
	token, ok, err := e.locker.TryLock(ctx, lockKey, e.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock rule %s: %w", rule.ID, err)
	}
	if !ok {
		log.Warn("rule locked by another run, skipping", zap.String("rule_id", rule.ID.String()))
		return nil, nil
	}
	defer func() {
		if err := e.locker.Unlock(ctx, lockKey, token); err != nil {
			log.Warn("rule unlock failed", zap.String("rule_id", rule.ID.String()), zap.Error(err))
		}
	}()

	exec := &executiondomain.BillingExecution{
		ID:            uuid.New(),
		RuleID:        rule.ID,
		ExecutionDate: now,
		Period:        feedomain.PeriodOf(now),
		CreatedAt:     now,
	}

	students, err := e.resolver.Resolve(ctx, rule)
	if err != nil {
		// Scope resolution failing aborts only this rule.
		msg := err.Error()
		exec.Status = executiondomain.ExecutionStatusFailed
		exec.ErrorMessage = &msg
		log.Error("scope resolution failed",
			zap.String("rule_id", rule.ID.String()),
			zap.Error(err),
		)
		return exec, nil
	}

	var created, skipped, failed int
	var firstErr error
	for _, studentID := range students {
		result := e.generator.Generate(ctx, rule, studentID, now, now)
		switch result.Outcome {
		case OutcomeCreated:
			created++
		case OutcomeSkippedDuplicate:
			skipped++
		case OutcomeFailed:
			failed++
			if firstErr == nil {
				firstErr = result.Err
			}
			log.Warn("fee generation failed",
				zap.String("rule_id", rule.ID.String()),
				zap.String("student_id", studentID.String()),
				zap.Error(result.Err),
			)
		}
	}

	exec.FeesGenerated = created
	exec.TotalAmount = rule.Amount * int64(created)
	exec.Status = classifyOutcomes(created, skipped, failed)
	if failed > 0 {
		msg := fmt.Sprintf("%d/%d students failed: %v", failed, len(students), firstErr)
		exec.ErrorMessage = &msg
	}

	log.Info("rule executed",
		zap.String("rule_id", rule.ID.String()),
		zap.String("status", string(exec.Status)),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return exec, nil
}

// classifyOutcomes implements the tri-state execution status: FAILED when no
// student got through at all, PARTIAL on a mix, SUCCESS otherwise. An empty
// student set and an all-skipped run are both SUCCESS.
func classifyOutcomes(created, skipped, failed int) executiondomain.ExecutionStatus {
	switch {
	case failed == 0:
		return executiondomain.ExecutionStatusSuccess
	case created+skipped > 0:
		return executiondomain.ExecutionStatusPartial
	default:
		return executiondomain.ExecutionStatusFailed
	}
}

// ListExecutions returns the append-only execution history.
func (e *Engine) ListExecutions(ctx context.Context, ruleID string) ([]executiondomain.BillingExecution, error) {
	filter := executiondomain.ListExecutionFilter{}
	if raw := strings.TrimSpace(ruleID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, billingruledomain.ErrInvalidID
		}
		filter.RuleID = &id
	}
	return e.execRepo.List(ctx, e.db, filter)
}

func (e *Engine) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{"execute_due_rules", e.isJobEnabled("execute_due_rules"), func(ctx context.Context) error {
			_, jobErr := e.ExecuteDue(ctx)
			return jobErr
		}},
		{"sweep_overdue", e.isJobEnabled("sweep_overdue"), func(ctx context.Context) error {
			count, jobErr := e.feeSvc.SweepOverdue(ctx)
			obsmetrics.AddOverdueSwept(count)
			return jobErr
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, e.runJob(parent, job.Name, e.cfg.JobTimeout, job.Run))
		}
	}

	return err
}

func (e *Engine) RunForever(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := e.RunOnce(ctx); err != nil {
			e.log.Warn("engine run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *Engine) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := e.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	obsmetrics.IncJobRun(name)
	err := fn(ctx)
	obsmetrics.ObserveJobDuration(name, time.Since(start))

	if err == nil {
		return nil
	}

	obsmetrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		// Soft timeout: partial completion is durable, the next run catches up.
		e.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (e *Engine) isJobEnabled(jobName string) bool {
	// An empty enable-list means every job runs (monolith mode).
	if len(e.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range e.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
