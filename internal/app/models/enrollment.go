package models

import "time"

// Enrollment links one student to one course. The (student, course) pair is
// unique; the database enforces it with a constraint.
type Enrollment struct {
	ID         int64     `json:"id" db:"id"`
	StudentID  int64     `json:"studentId" db:"student_id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	EnrolledAt time.Time `json:"enrolledAt" db:"enrolled_at"`

	// Relation (populated when needed)
	Course *Course `json:"course,omitempty"`
}
