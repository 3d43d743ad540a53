package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/logger"
)

// IFileUploadRepository defines the interface for file upload records
type IFileUploadRepository interface {
	Create(ctx context.Context, upload *models.FileUpload) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.FileUpload, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.FileUpload, error)
	Delete(ctx context.Context, id int64) error
}

// FileUploadRepository handles database operations for file upload records.
type FileUploadRepository struct {
	db *pgxpool.Pool
}

// NewFileUploadRepository creates a new FileUploadRepository
func NewFileUploadRepository(db *pgxpool.Pool) *FileUploadRepository {
	return &FileUploadRepository{db: db}
}

func (r *FileUploadRepository) selectUploadQuery() squirrel.SelectBuilder {
	return squirrel.Select("id", "uploaded_by", "course_id", "file_name", "file_path", "file_size", "mime_type", "uploaded_at").
		From("file_uploads").
		PlaceholderFormat(squirrel.Dollar)
}

func scanFileUpload(row pgx.Row) (*models.FileUpload, error) {
	var upload models.FileUpload
	err := row.Scan(
		&upload.ID, &upload.UploadedBy, &upload.CourseID,
		&upload.FileName, &upload.FilePath, &upload.FileSize,
		&upload.MimeType, &upload.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// Create inserts a new file upload record.
func (r *FileUploadRepository) Create(ctx context.Context, upload *models.FileUpload) (int64, error) {
	sqlStr, args, err := squirrel.Insert("file_uploads").
		Columns("uploaded_by", "course_id", "file_name", "file_path", "file_size", "mime_type").
		Values(upload.UploadedBy, upload.CourseID, upload.FileName, upload.FilePath, upload.FileSize, upload.MimeType).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Str("fileName", upload.FileName).Msg("Error creating file upload record")
		return 0, err
	}

	return id, nil
}

// GetByID retrieves a file upload record by id.
func (r *FileUploadRepository) GetByID(ctx context.Context, id int64) (*models.FileUpload, error) {
	sqlStr, args, err := r.selectUploadQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanFileUpload(r.db.QueryRow(ctx, sqlStr, args...))
}

// ListByCourse retrieves the file records for a course, most recent first.
func (r *FileUploadRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.FileUpload, error) {
	sqlStr, args, err := r.selectUploadQuery().
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error listing course files")
		return nil, err
	}
	defer rows.Close()

	uploads := make([]models.FileUpload, 0)
	for rows.Next() {
		upload, err := scanFileUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *upload)
	}

	return uploads, rows.Err()
}

// Delete removes a file upload record.
func (r *FileUploadRepository) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := squirrel.Delete("file_uploads").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting file upload record")
		return err
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFileNotFound
	}

	return nil
}
