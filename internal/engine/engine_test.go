package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	billingrulerepo "github.com/smallbiznis/scolara/internal/billingrule/repository"
	"github.com/smallbiznis/scolara/internal/clock"
	executiondomain "github.com/smallbiznis/scolara/internal/execution/domain"
	executionrepo "github.com/smallbiznis/scolara/internal/execution/repository"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	feerepo "github.com/smallbiznis/scolara/internal/fee/repository"
	feeservice "github.com/smallbiznis/scolara/internal/fee/service"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	rosterrepo "github.com/smallbiznis/scolara/internal/roster/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&rosterdomain.Student{},
		&rosterdomain.Class{},
		&rosterdomain.Subject{},
		&rosterdomain.Enrollment{},
		&rosterdomain.ClassSubject{},
		&billingruledomain.BillingRule{},
		&executiondomain.BillingExecution{},
		&feedomain.TuitionFee{},
	))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tuition_fees_obligation
		 ON tuition_fees (student_id, rule_id, period)
		 WHERE rule_id IS NOT NULL`,
	).Error)

	return db
}

func newTestEngine(t *testing.T, db *gorm.DB, fc *clock.FakeClock, feeRepo feedomain.Repository) *Engine {
	t.Helper()

	if feeRepo == nil {
		feeRepo = feerepo.Provide()
	}
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	feeSvc := feeservice.NewService(feeservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fc,
		Repo:  feeRepo,
	})

	eng, err := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fc,
		RuleRepo:   billingrulerepo.Provide(),
		RosterRepo: rosterrepo.Provide(),
		FeeRepo:    feeRepo,
		ExecRepo:   executionrepo.Provide(),
		FeeSvc:     feeSvc,
	})
	require.NoError(t, err)
	return eng
}

func seedClassWithStudents(t *testing.T, db *gorm.DB, count int) (uuid.UUID, []uuid.UUID) {
	t.Helper()

	class := rosterdomain.Class{ID: uuid.New(), Name: "Grade 7A"}
	require.NoError(t, db.Create(&class).Error)

	studentIDs := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		student := rosterdomain.Student{ID: uuid.New(), FullName: fmt.Sprintf("Student %d", i+1)}
		require.NoError(t, db.Create(&student).Error)
		enrollment := rosterdomain.Enrollment{
			ID:         uuid.New(),
			StudentID:  student.ID,
			ClassID:    class.ID,
			Status:     rosterdomain.EnrollmentStatusActive,
			EnrolledAt: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, db.Create(&enrollment).Error)
		studentIDs = append(studentIDs, student.ID)
	}
	return class.ID, studentIDs
}

func allStudentsRule(amount int64, billingDay int) billingruledomain.BillingRule {
	return billingruledomain.BillingRule{
		ID:         uuid.New(),
		Name:       "Monthly Tuition",
		BillingDay: billingDay,
		Amount:     amount,
		ScopeType:  billingruledomain.ScopeAllStudents,
		Active:     true,
	}
}

func TestExecuteNowCreatesFeesOncePerPeriod(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	_, students := seedClassWithStudents(t, db, 3)
	rule := allStudentsRule(150_000, 10)
	require.NoError(t, db.Create(&rule).Error)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, executiondomain.ExecutionStatusSuccess, execs[0].Status)
	assert.Equal(t, 3, execs[0].FeesGenerated)
	assert.Equal(t, int64(450_000), execs[0].TotalAmount)
	assert.Equal(t, "2026-03", execs[0].Period)
	assert.Nil(t, execs[0].ErrorMessage)

	var fees []feedomain.TuitionFee
	require.NoError(t, db.Order("created_at").Find(&fees).Error)
	require.Len(t, fees, len(students))
	for _, fee := range fees {
		assert.Equal(t, feedomain.FeeStatusPending, fee.Status)
		assert.Equal(t, "2026-03", fee.Period)
		assert.Equal(t, int64(150_000), fee.Amount)
		assert.Equal(t, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC), fee.DueDate.UTC())
		require.NotNil(t, fee.RuleID)
		assert.Equal(t, rule.ID, *fee.RuleID)
	}
}

func TestExecuteNowSecondRunSkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	seedClassWithStudents(t, db, 3)
	rule := allStudentsRule(150_000, 10)
	require.NoError(t, db.Create(&rule).Error)

	_, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	// Every student already has the fee, so the rerun is all skips.
	assert.Equal(t, executiondomain.ExecutionStatusSuccess, execs[0].Status)
	assert.Equal(t, 0, execs[0].FeesGenerated)
	assert.Equal(t, int64(0), execs[0].TotalAmount)

	var count int64
	require.NoError(t, db.Model(&feedomain.TuitionFee{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	var execCount int64
	require.NoError(t, db.Model(&executiondomain.BillingExecution{}).Count(&execCount).Error)
	assert.Equal(t, int64(2), execCount)
}

func TestExecuteDueHonorsBillingDay(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	seedClassWithStudents(t, db, 2)
	rule := allStudentsRule(100_000, 10)
	require.NoError(t, db.Create(&rule).Error)

	execs, err := eng.ExecuteDue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, execs)

	fc.Set(time.Date(2026, time.April, 10, 6, 0, 0, 0, time.UTC))
	execs, err = eng.ExecuteDue(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, 2, execs[0].FeesGenerated)
	assert.Equal(t, "2026-04", execs[0].Period)
}

func TestExecuteDueClampsToShortMonth(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.June, 30, 8, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	seedClassWithStudents(t, db, 1)
	rule := allStudentsRule(200_000, 31)
	require.NoError(t, db.Create(&rule).Error)

	// June has 30 days, so a day-31 rule fires on the 30th.
	execs, err := eng.ExecuteDue(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, 1, execs[0].FeesGenerated)

	var fee feedomain.TuitionFee
	require.NoError(t, db.First(&fee).Error)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), fee.DueDate.UTC())
}

func TestExecuteNowEmptyScopeSucceeds(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	class := rosterdomain.Class{ID: uuid.New(), Name: "Empty Class"}
	require.NoError(t, db.Create(&class).Error)

	rule := billingruledomain.BillingRule{
		ID:         uuid.New(),
		Name:       "Class Fee",
		BillingDay: 5,
		Amount:     75_000,
		ScopeType:  billingruledomain.ScopeClass,
		ClassID:    &class.ID,
		Active:     true,
	}
	require.NoError(t, db.Create(&rule).Error)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, executiondomain.ExecutionStatusSuccess, execs[0].Status)
	assert.Equal(t, 0, execs[0].FeesGenerated)

	var count int64
	require.NoError(t, db.Model(&feedomain.TuitionFee{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// flakyFeeRepo refuses inserts for a chosen set of students.
type flakyFeeRepo struct {
	feedomain.Repository
	refuse map[uuid.UUID]struct{}
}

func (r *flakyFeeRepo) Insert(ctx context.Context, db *gorm.DB, fee *feedomain.TuitionFee) error {
	if _, ok := r.refuse[fee.StudentID]; ok {
		return errors.New("insert refused")
	}
	return r.Repository.Insert(ctx, db, fee)
}

func TestExecuteNowPartialFailureIsolatesStudents(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))

	studentIDs := make([]string, 0, 5)
	var victim uuid.UUID
	for i := 0; i < 5; i++ {
		id := uuid.New()
		studentIDs = append(studentIDs, id.String())
		if i == 2 {
			victim = id
		}
	}

	feeRepo := &flakyFeeRepo{
		Repository: feerepo.Provide(),
		refuse:     map[uuid.UUID]struct{}{victim: {}},
	}
	eng := newTestEngine(t, db, fc, feeRepo)

	rule := billingruledomain.BillingRule{
		ID:         uuid.New(),
		Name:       "Explicit Fee",
		BillingDay: 10,
		Amount:     50_000,
		ScopeType:  billingruledomain.ScopeExplicitStudents,
		Active:     true,
	}
	rule.StudentIDs = append(rule.StudentIDs, studentIDs...)
	require.NoError(t, db.Create(&rule).Error)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, executiondomain.ExecutionStatusPartial, execs[0].Status)
	assert.Equal(t, 4, execs[0].FeesGenerated)
	assert.Equal(t, int64(200_000), execs[0].TotalAmount)
	require.NotNil(t, execs[0].ErrorMessage)
	assert.Contains(t, *execs[0].ErrorMessage, "1/5 students failed")

	var count int64
	require.NoError(t, db.Model(&feedomain.TuitionFee{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestExecuteNowAllStudentsFailing(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))

	first, second := uuid.New(), uuid.New()
	feeRepo := &flakyFeeRepo{
		Repository: feerepo.Provide(),
		refuse:     map[uuid.UUID]struct{}{first: {}, second: {}},
	}
	eng := newTestEngine(t, db, fc, feeRepo)

	rule := billingruledomain.BillingRule{
		ID:         uuid.New(),
		Name:       "Explicit Fee",
		BillingDay: 10,
		Amount:     50_000,
		ScopeType:  billingruledomain.ScopeExplicitStudents,
		Active:     true,
	}
	rule.StudentIDs = append(rule.StudentIDs, first.String(), second.String())
	require.NoError(t, db.Create(&rule).Error)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, executiondomain.ExecutionStatusFailed, execs[0].Status)
	assert.Equal(t, 0, execs[0].FeesGenerated)
	require.NotNil(t, execs[0].ErrorMessage)
	assert.Contains(t, *execs[0].ErrorMessage, "2/2 students failed")
}

func TestExecuteNowSkipsLockedRule(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	seedClassWithStudents(t, db, 1)
	rule := allStudentsRule(100_000, 10)
	require.NoError(t, db.Create(&rule).Error)

	_, ok, err := eng.locker.TryLock(context.Background(), "engine:rule:"+rule.ID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	assert.Empty(t, execs)

	var count int64
	require.NoError(t, db.Model(&feedomain.TuitionFee{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestExecuteNowSkipsInactiveRules(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	seedClassWithStudents(t, db, 2)
	rule := allStudentsRule(100_000, 10)
	rule.Active = false
	require.NoError(t, db.Create(&rule).Error)

	execs, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)
	assert.Empty(t, execs)
}

func TestListExecutionsFiltersByRule(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	seedClassWithStudents(t, db, 1)
	ruleA := allStudentsRule(100_000, 10)
	ruleB := allStudentsRule(200_000, 15)
	ruleB.Name = "Second Tuition"
	require.NoError(t, db.Create(&ruleA).Error)
	require.NoError(t, db.Create(&ruleB).Error)

	_, err := eng.ExecuteNow(context.Background())
	require.NoError(t, err)

	all, err := eng.ListExecutions(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := eng.ListExecutions(context.Background(), ruleA.ID.String())
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, ruleA.ID, scoped[0].RuleID)

	_, err = eng.ListExecutions(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, billingruledomain.ErrInvalidID)
}

func TestRunOnceSweepsOverdue(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC))
	eng := newTestEngine(t, db, fc, nil)

	student := rosterdomain.Student{ID: uuid.New(), FullName: "Late Payer"}
	require.NoError(t, db.Create(&student).Error)

	overdue := feedomain.TuitionFee{
		ID:        uuid.New(),
		StudentID: student.ID,
		Period:    "2026-02",
		Amount:    100_000,
		DueDate:   time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		Status:    feedomain.FeeStatusPending,
	}
	require.NoError(t, db.Create(&overdue).Error)

	require.NoError(t, eng.RunOnce(context.Background()))

	var refreshed feedomain.TuitionFee
	require.NoError(t, db.First(&refreshed, "id = ?", overdue.ID).Error)
	assert.Equal(t, feedomain.FeeStatusOverdue, refreshed.Status)
}

func TestClassifyOutcomes(t *testing.T) {
	tests := []struct {
		name                     string
		created, skipped, failed int
		want                     executiondomain.ExecutionStatus
	}{
		{"all created", 3, 0, 0, executiondomain.ExecutionStatusSuccess},
		{"all skipped", 0, 3, 0, executiondomain.ExecutionStatusSuccess},
		{"empty scope", 0, 0, 0, executiondomain.ExecutionStatusSuccess},
		{"mixed failure", 2, 0, 1, executiondomain.ExecutionStatusPartial},
		{"skips plus failure", 0, 2, 1, executiondomain.ExecutionStatusPartial},
		{"all failed", 0, 0, 3, executiondomain.ExecutionStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyOutcomes(tt.created, tt.skipped, tt.failed))
		})
	}
}
