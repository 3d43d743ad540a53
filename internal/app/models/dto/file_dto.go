package dto

import "time"

// FileUploadResponse represents a stored course file.
type FileUploadResponse struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"courseId"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType"`
	UploadedBy int64     `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FileListResponse lists the files submitted for a course.
type FileListResponse struct {
	CourseID int64                `json:"courseId"`
	Files    []FileUploadResponse `json:"files"`
}

// DeleteConfirmResponse is the confirmation prompt payload for the two-phase
// delete: clients show it, then issue the DELETE request.
type DeleteConfirmResponse struct {
	File    FileUploadResponse `json:"file"`
	Message string             `json:"message"`
}
