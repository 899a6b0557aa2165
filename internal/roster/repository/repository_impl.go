package repository

import (
	"context"

	"github.com/google/uuid"
	rosterdomain "github.com/smallbiznis/scolara/internal/roster/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() rosterdomain.Repository {
	return &repo{}
}

func (r *repo) FindStudentIDsByClass(ctx context.Context, db *gorm.DB, classID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT student_id FROM enrollments
		 WHERE class_id = ? AND status = ?`,
		classID,
		rosterdomain.EnrollmentStatusActive,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) FindStudentIDsBySubject(ctx context.Context, db *gorm.DB, subjectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT e.student_id FROM enrollments e
		 JOIN class_subjects cs ON cs.class_id = e.class_id
		 WHERE cs.subject_id = ? AND e.status = ?`,
		subjectID,
		rosterdomain.EnrollmentStatusActive,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) FindActiveStudentIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT student_id FROM enrollments WHERE status = ?`,
		rosterdomain.EnrollmentStatusActive,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) ListStudents(ctx context.Context, db *gorm.DB) ([]rosterdomain.Student, error) {
	var students []rosterdomain.Student
	err := db.WithContext(ctx).Order("full_name ASC").Find(&students).Error
	return students, err
}
