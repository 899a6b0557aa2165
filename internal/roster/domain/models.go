// Package domain contains the roster read model: students, classes, subjects
// and the enrollments linking them. The billing engine only ever reads these
// tables; they are maintained by the academic administration surface.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentStatusActive   EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive EnrollmentStatus = "INACTIVE"
)

type Student struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Email     *string   `gorm:"type:text" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Student) TableName() string { return "students" }

type Class struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Level     *string   `gorm:"type:text" json:"level,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Class) TableName() string { return "classes" }

type Subject struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"not null;uniqueIndex" json:"code"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subject) TableName() string { return "subjects" }

// Enrollment places a student in a class. Only ACTIVE enrollments are visible
// to scope resolution.
type Enrollment struct {
	ID         uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID  uuid.UUID        `gorm:"type:char(36);not null;index" json:"student_id"`
	ClassID    uuid.UUID        `gorm:"type:char(36);not null;index" json:"class_id"`
	Status     EnrollmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	EnrolledAt time.Time        `gorm:"not null" json:"enrolled_at"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Enrollment) TableName() string { return "enrollments" }

// ClassSubject marks a subject as taught in a class.
type ClassSubject struct {
	ClassID   uuid.UUID `gorm:"type:char(36);primaryKey" json:"class_id"`
	SubjectID uuid.UUID `gorm:"type:char(36);primaryKey" json:"subject_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ClassSubject) TableName() string { return "class_subjects" }
