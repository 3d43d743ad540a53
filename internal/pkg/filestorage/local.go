package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mertk/coursehub/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem. Stored paths are
// relative to basePath and namespaced by upload date, e.g.
// uploads/2025/04/23/<uuid>.pdf.
type LocalStorage struct {
	basePath string // the root directory where files are stored
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// datePath returns the year/month/day subdirectory for the current date.
func datePath(now time.Time) string {
	return filepath.Join("uploads", now.Format("2006"), now.Format("01"), now.Format("02"))
}

// SaveUpload stores an uploaded file under uploads/<year>/<month>/<day>/.
func (ls *LocalStorage) SaveUpload(fileHeader *multipart.FileHeader) (string, error) {
	return ls.SaveUploadWithPath(fileHeader, datePath(time.Now()))
}

// SaveUploadWithPath stores an uploaded file under the given subdirectory and
// returns the relative path it was stored at.
func (ls *LocalStorage) SaveUploadWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := ls.basePath
	if subPath != "" {
		fullDirPath = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
			logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	// Unique stored name to prevent collisions; the original filename lives in
	// the database record.
	ext := filepath.Ext(fileHeader.Filename)
	uniqueFilename := uuid.New().String() + ext

	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	relPath := filepath.ToSlash(filepath.Join(subPath, uniqueFilename))
	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", relPath).Msg("File saved successfully")
	return relPath, nil
}

// DeleteFile removes a stored file by its relative path. Deleting a missing
// file is not an error.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	physicalPath, err := ls.resolve(filePath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath returns the full filesystem path for a stored relative path,
// or "" if the path is invalid.
func (ls *LocalStorage) GetFullPath(filePath string) string {
	physicalPath, err := ls.resolve(filePath)
	if err != nil {
		return ""
	}
	return physicalPath
}

// Exists reports whether the stored file is present on disk.
func (ls *LocalStorage) Exists(filePath string) bool {
	physicalPath, err := ls.resolve(filePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(physicalPath)
	return err == nil
}

// resolve maps a stored relative path to a filesystem path, rejecting paths
// that escape the storage root.
func (ls *LocalStorage) resolve(filePath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(filePath))
	if cleaned == "" || cleaned == "." || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid file path: %s", filePath)
	}
	return filepath.Join(ls.basePath, cleaned), nil
}
