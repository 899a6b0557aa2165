package migration

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	defaulterdomain "github.com/smallbiznis/scolara/internal/defaulter/domain"
	executiondomain "github.com/smallbiznis/scolara/internal/execution/domain"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	pkgdb "github.com/smallbiznis/scolara/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func migratedModels() []any {
	return []any{
		&rosterdomain.Student{},
		&rosterdomain.Class{},
		&rosterdomain.Subject{},
		&rosterdomain.Enrollment{},
		&rosterdomain.ClassSubject{},
		&billingruledomain.BillingRule{},
		&executiondomain.BillingExecution{},
		&feedomain.TuitionFee{},
		&defaulterdomain.DefaulterContact{},
	}
}

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, autoMigrate(db, "sqlite"))
	return db
}

func TestAutoMigrateIsRerunnable(t *testing.T) {
	db := newMigratedDB(t)

	// A restart must not trip over the already-created index.
	require.NoError(t, autoMigrate(db, "sqlite"))
	assert.True(t, db.Migrator().HasIndex(&feedomain.TuitionFee{}, "idx_tuition_fees_obligation"))
}

func TestAutoMigrateEnforcesObligationUniqueness(t *testing.T) {
	db := newMigratedDB(t)

	studentID, ruleID := uuid.New(), uuid.New()
	dueDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	fee := feedomain.TuitionFee{
		ID:        uuid.New(),
		StudentID: studentID,
		RuleID:    &ruleID,
		Period:    "2026-03",
		Amount:    150_000,
		DueDate:   dueDate,
		Status:    feedomain.FeeStatusPending,
	}
	require.NoError(t, db.Create(&fee).Error)

	duplicate := fee
	duplicate.ID = uuid.New()
	err := db.Create(&duplicate).Error
	require.Error(t, err)
	assert.True(t, pkgdb.IsDuplicateKeyErr(err))

	// Manually entered fees carry no rule and are not constrained.
	for i := 0; i < 2; i++ {
		manual := feedomain.TuitionFee{
			ID:        uuid.New(),
			StudentID: studentID,
			Period:    "2026-03",
			Amount:    25_000,
			DueDate:   dueDate,
			Status:    feedomain.FeeStatusPending,
		}
		require.NoError(t, db.Create(&manual).Error)
	}
}

// Column types must be valid DDL on every dialect the opener supports, so the
// models may not lean on postgres-only types or put unbounded text into keys.
func TestModelColumnTypesPortable(t *testing.T) {
	for _, model := range migratedModels() {
		parsed, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)

		for _, field := range parsed.Fields {
			typeTag := strings.ToLower(field.TagSettings["TYPE"])
			assert.NotEqual(t, "uuid", typeTag,
				"%s.%s declares a postgres-only column type", parsed.Table, field.DBName)
			assert.NotEqual(t, "jsonb", typeTag,
				"%s.%s declares a postgres-only column type", parsed.Table, field.DBName)
		}

		for _, index := range parsed.ParseIndexes() {
			for _, option := range index.Fields {
				typeTag := strings.ToLower(option.TagSettings["TYPE"])
				assert.NotEqual(t, "text", typeTag,
					"%s.%s is indexed and needs a length-bounded type", parsed.Table, option.DBName)
			}
		}
	}
}
