package seed

import (
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/scolara/internal/config"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Module seeds a small demo roster in development so rules can be exercised
// against real students without manual inserts.
var Module = fx.Module("seed",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if cfg.Environment != "development" {
		return nil
	}

	var count int64
	if err := conn.Model(&rosterdomain.Student{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Named("seed").Info("seeding demo roster")

	level7, level8 := "7", "8"
	classes := []rosterdomain.Class{
		{ID: uuid.MustParse("0b7a2d86-6f1e-4f61-9c2d-1f6f9b3a0001"), Name: "Grade 7A", Level: &level7},
		{ID: uuid.MustParse("0b7a2d86-6f1e-4f61-9c2d-1f6f9b3a0002"), Name: "Grade 8B", Level: &level8},
	}

	subjects := []rosterdomain.Subject{
		{ID: uuid.MustParse("4c1f09d2-8a34-4f2e-bb1a-2e8d7c5b0001"), Name: "Mathematics", Code: "MATH"},
		{ID: uuid.MustParse("4c1f09d2-8a34-4f2e-bb1a-2e8d7c5b0002"), Name: "Science", Code: "SCI"},
	}

	students := []rosterdomain.Student{
		{ID: uuid.MustParse("9d3e5a10-2b4c-4d6e-8f90-aa11bb22cc01"), FullName: "Ayu Lestari"},
		{ID: uuid.MustParse("9d3e5a10-2b4c-4d6e-8f90-aa11bb22cc02"), FullName: "Budi Santoso"},
		{ID: uuid.MustParse("9d3e5a10-2b4c-4d6e-8f90-aa11bb22cc03"), FullName: "Citra Dewi"},
		{ID: uuid.MustParse("9d3e5a10-2b4c-4d6e-8f90-aa11bb22cc04"), FullName: "Dimas Putra"},
	}

	enrolledAt := time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC)
	enrollments := []rosterdomain.Enrollment{
		{ID: uuid.New(), StudentID: students[0].ID, ClassID: classes[0].ID, Status: rosterdomain.EnrollmentStatusActive, EnrolledAt: enrolledAt},
		{ID: uuid.New(), StudentID: students[1].ID, ClassID: classes[0].ID, Status: rosterdomain.EnrollmentStatusActive, EnrolledAt: enrolledAt},
		{ID: uuid.New(), StudentID: students[2].ID, ClassID: classes[1].ID, Status: rosterdomain.EnrollmentStatusActive, EnrolledAt: enrolledAt},
		{ID: uuid.New(), StudentID: students[3].ID, ClassID: classes[1].ID, Status: rosterdomain.EnrollmentStatusInactive, EnrolledAt: enrolledAt},
	}

	classSubjects := []rosterdomain.ClassSubject{
		{ClassID: classes[0].ID, SubjectID: subjects[0].ID},
		{ClassID: classes[0].ID, SubjectID: subjects[1].ID},
		{ClassID: classes[1].ID, SubjectID: subjects[0].ID},
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		onConflict := clause.OnConflict{DoNothing: true}
		if err := tx.Clauses(onConflict).Create(&classes).Error; err != nil {
			return err
		}
		if err := tx.Clauses(onConflict).Create(&subjects).Error; err != nil {
			return err
		}
		if err := tx.Clauses(onConflict).Create(&students).Error; err != nil {
			return err
		}
		if err := tx.Clauses(onConflict).Create(&enrollments).Error; err != nil {
			return err
		}
		return tx.Clauses(onConflict).Create(&classSubjects).Error
	})
}
