package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/dberrors"
	"github.com/mertk/coursehub/internal/pkg/helpers"
	"github.com/mertk/coursehub/internal/pkg/logger"
)

// ICourseRepository defines the interface for course catalog operations
type ICourseRepository interface {
	GetAll(ctx context.Context, page, size int) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) (int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseRepository handles database operations for the course catalog.
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) selectCourseQuery() squirrel.SelectBuilder {
	return squirrel.Select("id", "name", "description", "created_at").
		From("courses").
		PlaceholderFormat(squirrel.Dollar)
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	err := row.Scan(&course.ID, &course.Name, &course.Description, &course.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetAll retrieves a page of the course catalog ordered by name, along with
// the total course count.
func (r *CourseRepository) GetAll(ctx context.Context, page, size int) ([]models.Course, int64, error) {
	var totalItems int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM courses`).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, 0, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)

	sqlStr, args, err := r.selectCourseQuery().
		OrderBy("name ASC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all courses query")
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating course rows")
		return nil, 0, err
	}

	return courses, totalItems, nil
}

// GetByID retrieves a single course by id.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sqlStr, args, err := r.selectCourseQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCourse(r.db.QueryRow(ctx, sqlStr, args...))
}

// Create inserts a new course into the catalog.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	sqlStr, args, err := squirrel.Insert("courses").
		Columns("name", "description").
		Values(course.Name, course.Description).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_name_key") {
			return 0, apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Str("name", course.Name).Msg("Error creating course")
		return 0, err
	}

	return id, nil
}

// Update updates an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sqlStr, args, err := squirrel.Update("courses").
		Set("name", course.Name).
		Set("description", course.Description).
		Where(squirrel.Eq{"id": course.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_name_key") {
			return apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Int64("id", course.ID).Msg("Error updating course")
		return err
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

// Delete removes a course. Enrollments and file records referencing it go
// with it via FK cascade.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting course")
		return err
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}
