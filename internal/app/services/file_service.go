package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/repositories"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/filestorage"
)

// FileService defines the interface for course file submissions
type FileService interface {
	Upload(ctx context.Context, userID, courseID int64, fileHeader *multipart.FileHeader) (*dto.FileUploadResponse, error)
	ListCourseFiles(ctx context.Context, userID, courseID int64) (*dto.FileListResponse, error)
	Download(ctx context.Context, fileID int64) (fullPath string, fileName string, err error)
	ConfirmDelete(ctx context.Context, userID int64, isStaff bool, fileID int64) (*dto.DeleteConfirmResponse, error)
	Delete(ctx context.Context, userID int64, isStaff bool, fileID int64) error
}

// fileServiceImpl implements FileService
type fileServiceImpl struct {
	fileRepo       repositories.IFileUploadRepository
	courseRepo     repositories.ICourseRepository
	enrollmentRepo repositories.IEnrollmentRepository
	userRepo       repositories.IUserRepository
	storage        filestorage.FileStorage
	logger         zerolog.Logger
}

// NewFileService creates a new FileService
func NewFileService(
	fileRepo repositories.IFileUploadRepository,
	courseRepo repositories.ICourseRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	userRepo repositories.IUserRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) FileService {
	return &fileServiceImpl{
		fileRepo:       fileRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		storage:        storage,
		logger:         logger,
	}
}

// requireEnrollment resolves the user's student profile and checks that it
// holds an enrollment for the course. The course must exist; a missing course
// surfaces as not-found before the enrollment check.
func (s *fileServiceImpl) requireEnrollment(ctx context.Context, userID, courseID int64) (*models.Student, *models.Course, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, student.ID, course.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("error checking enrollment: %w", err)
	}
	if !enrolled {
		return nil, nil, apperrors.ErrNotEnrolled
	}

	return student, course, nil
}

// Upload stores a file submitted for a course. The enrollment gate runs
// before the binary is written, so rejected uploads never touch the disk.
// If the database insert fails after the binary was written, the binary is
// removed again so no orphan is left behind.
func (s *fileServiceImpl) Upload(ctx context.Context, userID, courseID int64, fileHeader *multipart.FileHeader) (*dto.FileUploadResponse, error) {
	_, course, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.SaveUpload(fileHeader)
	if err != nil {
		return nil, fmt.Errorf("error saving file: %w", err)
	}

	upload := &models.FileUpload{
		UploadedBy: userID,
		CourseID:   course.ID,
		FileName:   fileHeader.Filename,
		FilePath:   relPath,
		FileSize:   fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
	}

	id, err := s.fileRepo.Create(ctx, upload)
	if err != nil {
		if delErr := s.storage.DeleteFile(relPath); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", relPath).Msg("Could not remove file after failed record insert")
		}
		return nil, err
	}

	s.logger.Info().Int64("fileID", id).Int64("courseID", course.ID).Str("fileName", upload.FileName).Msg("File uploaded")

	created, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toFileUploadResponse(created), nil
}

// ListCourseFiles lists the files submitted for a course. Only enrolled
// students may browse a course's files.
func (s *fileServiceImpl) ListCourseFiles(ctx context.Context, userID, courseID int64) (*dto.FileListResponse, error) {
	_, course, err := s.requireEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	uploads, err := s.fileRepo.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	files := make([]dto.FileUploadResponse, 0, len(uploads))
	for i := range uploads {
		files = append(files, *toFileUploadResponse(&uploads[i]))
	}

	return &dto.FileListResponse{
		CourseID: course.ID,
		Files:    files,
	}, nil
}

// Download resolves a file record to its path on disk and its original name.
// Any authenticated user may download; only uploads are gated on enrollment.
// A record whose binary is gone maps to the same not-found error as a missing
// record.
func (s *fileServiceImpl) Download(ctx context.Context, fileID int64) (string, string, error) {
	upload, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", "", err
	}

	if !s.storage.Exists(upload.FilePath) {
		s.logger.Warn().Int64("fileID", fileID).Str("path", upload.FilePath).Msg("File record has no binary on disk")
		return "", "", apperrors.ErrFileDataMissing
	}

	return s.storage.GetFullPath(upload.FilePath), upload.FileName, nil
}

// ConfirmDelete returns the details a client shows before issuing the actual
// delete. It runs the same authorization check as Delete so the prompt is
// never shown for a file the caller cannot remove.
func (s *fileServiceImpl) ConfirmDelete(ctx context.Context, userID int64, isStaff bool, fileID int64) (*dto.DeleteConfirmResponse, error) {
	upload, err := s.getOwnedFile(ctx, userID, isStaff, fileID)
	if err != nil {
		return nil, err
	}

	return &dto.DeleteConfirmResponse{
		File:    *toFileUploadResponse(upload),
		Message: fmt.Sprintf("Delete %q? This cannot be undone.", upload.FileName),
	}, nil
}

// Delete removes a file submission: the binary first, then the record. Only
// the uploader or staff may delete. A missing binary does not block the
// delete; the record is removed regardless.
func (s *fileServiceImpl) Delete(ctx context.Context, userID int64, isStaff bool, fileID int64) error {
	upload, err := s.getOwnedFile(ctx, userID, isStaff, fileID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteFile(upload.FilePath); err != nil {
		return fmt.Errorf("error deleting file from storage: %w", err)
	}

	if err := s.fileRepo.Delete(ctx, upload.ID); err != nil {
		// The binary is already gone; a vanished record means someone else
		// deleted it concurrently, which is fine.
		if errors.Is(err, apperrors.ErrFileNotFound) {
			return nil
		}
		return err
	}

	s.logger.Info().Int64("fileID", upload.ID).Str("fileName", upload.FileName).Msg("File deleted")
	return nil
}

func (s *fileServiceImpl) getOwnedFile(ctx context.Context, userID int64, isStaff bool, fileID int64) (*models.FileUpload, error) {
	upload, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if upload.UploadedBy != userID && !isStaff {
		return nil, apperrors.ErrNotFileUploader
	}

	return upload, nil
}

func toFileUploadResponse(upload *models.FileUpload) *dto.FileUploadResponse {
	return &dto.FileUploadResponse{
		ID:         upload.ID,
		CourseID:   upload.CourseID,
		FileName:   upload.FileName,
		FileSize:   upload.FileSize,
		MimeType:   upload.MimeType,
		UploadedBy: upload.UploadedBy,
		UploadedAt: upload.UploadedAt,
	}
}
