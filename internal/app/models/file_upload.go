package models

import "time"

// FileUpload records a binary submitted for a course. FilePath is relative to
// the storage root and namespaced by upload date (uploads/<year>/<month>/<day>).
type FileUpload struct {
	ID         int64     `json:"id" db:"id"`
	UploadedBy int64     `json:"uploadedBy" db:"uploaded_by"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	FileName   string    `json:"fileName" db:"file_name"` // original filename
	FilePath   string    `json:"filePath" db:"file_path"`
	FileSize   int64     `json:"fileSize" db:"file_size"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	UploadedAt time.Time `json:"uploadedAt" db:"uploaded_at"`
}
