package filestorage

import "mime/multipart"

// FileStorage defines the interface for file storage operations.
type FileStorage interface {
	// SaveUpload stores an uploaded file under a date-namespaced subdirectory
	// and returns the relative path it was stored at.
	SaveUpload(fileHeader *multipart.FileHeader) (string, error)

	// SaveUploadWithPath stores an uploaded file under the given subdirectory.
	SaveUploadWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a stored file by its relative path.
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a stored relative path.
	GetFullPath(filePath string) string

	// Exists reports whether the stored file is present on disk.
	Exists(filePath string) bool
}
