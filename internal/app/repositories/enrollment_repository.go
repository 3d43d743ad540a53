package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertk/coursehub/internal/app/models"
	appdb "github.com/mertk/coursehub/internal/db"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/logger"
)

// EnrollmentDetails is one enrollment row joined with its course.
type EnrollmentDetails struct {
	ID                int64     `db:"id" json:"id"`
	StudentID         int64     `db:"student_id" json:"studentId"`
	CourseID          int64     `db:"course_id" json:"courseId"`
	CourseName        string    `db:"course_name" json:"courseName"`
	CourseDescription string    `db:"course_description" json:"courseDescription"`
	EnrolledAt        time.Time `db:"enrolled_at" json:"enrolledAt"`
}

// IEnrollmentRepository defines the interface for enrollment operations
type IEnrollmentRepository interface {
	Enroll(ctx context.Context, studentID, courseID int64, maxPerStudent int) (*models.Enrollment, bool, error)
	EnrolledCourseIDs(ctx context.Context, studentID int64) ([]int64, error)
	IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
	ListByStudent(ctx context.Context, studentID int64) ([]EnrollmentDetails, error)
}

// EnrollmentRepository handles database operations for enrollments.
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll atomically enrolls a student in a course. The cap check and the
// insert run in one transaction holding a row lock on the student, so
// concurrent requests for the same student serialize and cannot race past
// the cap. Returns the enrollment and whether it was newly created; an
// existing (student, course) pair is reported as created=false, not an error.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID int64, maxPerStudent int) (*models.Enrollment, bool, error) {
	var enrollment models.Enrollment
	var created bool

	err := appdb.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// Lock the student row; concurrent enrolls for this student queue here.
		var lockedID int64
		err := tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR UPDATE`, studentID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrStudentNotFound
			}
			return err
		}

		var count int64
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM enrollments WHERE student_id = $1`, studentID).Scan(&count); err != nil {
			return err
		}

		// The cap only blocks new enrollments; re-enrolling an existing pair
		// must still report "already enrolled".
		insertSQL := `
			INSERT INTO enrollments (student_id, course_id)
			VALUES ($1, $2)
			ON CONFLICT (student_id, course_id) DO NOTHING
			RETURNING id, student_id, course_id, enrolled_at`

		existing, err := r.getByPairTx(ctx, tx, studentID, courseID)
		if err != nil && !errors.Is(err, apperrors.ErrEnrollmentNotFound) {
			return err
		}
		if existing != nil {
			enrollment = *existing
			created = false
			return nil
		}

		if count >= int64(maxPerStudent) {
			return apperrors.ErrEnrollmentLimit
		}

		err = tx.QueryRow(ctx, insertSQL, studentID, courseID).
			Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrolledAt)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrEnrollmentLimit) && !errors.Is(err, apperrors.ErrStudentNotFound) {
			logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error enrolling student")
		}
		return nil, false, err
	}

	return &enrollment, created, nil
}

func (r *EnrollmentRepository) getByPairTx(ctx context.Context, tx pgx.Tx, studentID, courseID int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := tx.QueryRow(ctx,
		`SELECT id, student_id, course_id, enrolled_at FROM enrollments WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID).
		Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.CourseID, &enrollment.EnrolledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// EnrolledCourseIDs returns the ids of all courses the student is enrolled in.
func (r *EnrollmentRepository) EnrolledCourseIDs(ctx context.Context, studentID int64) ([]int64, error) {
	sqlStr, args, err := squirrel.Select("course_id").
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("course_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error listing enrolled course ids")
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// IsEnrolled checks whether the student holds an enrollment for the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error checking enrollment")
		return false, err
	}
	return exists, nil
}

// ListByStudent retrieves the student's enrollments joined with course details,
// most recent first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]EnrollmentDetails, error) {
	sqlStr, args, err := squirrel.Select(
		"e.id", "e.student_id", "e.course_id",
		"c.name as course_name", "c.description as course_description",
		"e.enrolled_at",
	).From("enrollments e").
		Join("courses c ON e.course_id = c.id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("e.enrolled_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error listing enrollments")
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]EnrollmentDetails, 0)
	for rows.Next() {
		var e EnrollmentDetails
		err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.CourseName, &e.CourseDescription, &e.EnrolledAt)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}
