package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// FindStudentIDsByClass returns students with an ACTIVE enrollment in the class.
	FindStudentIDsByClass(ctx context.Context, db *gorm.DB, classID uuid.UUID) ([]uuid.UUID, error)
	// FindStudentIDsBySubject returns students actively enrolled in any class
	// teaching the subject.
	FindStudentIDsBySubject(ctx context.Context, db *gorm.DB, subjectID uuid.UUID) ([]uuid.UUID, error)
	// FindActiveStudentIDs returns students with at least one ACTIVE enrollment.
	FindActiveStudentIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error)
	ListStudents(ctx context.Context, db *gorm.DB) ([]Student, error)
}
