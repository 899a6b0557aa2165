package migration

import (
	billingruledomain "github.com/smallbiznis/scolara/internal/billingrule/domain"
	"github.com/smallbiznis/scolara/internal/config"
	defaulterdomain "github.com/smallbiznis/scolara/internal/defaulter/domain"
	executiondomain "github.com/smallbiznis/scolara/internal/execution/domain"
	feedomain "github.com/smallbiznis/scolara/internal/fee/domain"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return autoMigrate(conn, cfg.DBType)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

// autoMigrate keeps the sqlite/mysql dev path working without SQL migration
// files. The fee idempotency index is created explicitly because gorm tags
// cannot express the partial uniqueness condition.
func autoMigrate(conn *gorm.DB, dbType string) error {
	if err := conn.AutoMigrate(
		&rosterdomain.Student{},
		&rosterdomain.Class{},
		&rosterdomain.Subject{},
		&rosterdomain.Enrollment{},
		&rosterdomain.ClassSubject{},
		&billingruledomain.BillingRule{},
		&executiondomain.BillingExecution{},
		&feedomain.TuitionFee{},
		&defaulterdomain.DefaulterContact{},
	); err != nil {
		return err
	}

	if conn.Migrator().HasIndex(&feedomain.TuitionFee{}, "idx_tuition_fees_obligation") {
		return nil
	}
	stmt := `CREATE UNIQUE INDEX idx_tuition_fees_obligation
		 ON tuition_fees (student_id, rule_id, period)
		 WHERE rule_id IS NOT NULL`
	if dbType == "mysql" {
		// MySQL has no partial indexes; NULL rule_ids are distinct under a
		// plain unique index, which keeps the same per-obligation guarantee.
		stmt = `CREATE UNIQUE INDEX idx_tuition_fees_obligation
		 ON tuition_fees (student_id, rule_id, period)`
	}
	return conn.Exec(stmt).Error
}
