package dto

import "time"

// CourseResponse represents a catalog entry. Enrolled is set for the current
// student so clients can mark courses they already hold.
type CourseResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Enrolled    bool      `json:"enrolled"`
}

// CourseListResponse represents the paginated course catalog.
type CourseListResponse struct {
	Courses           []CourseResponse `json:"courses"`
	EnrolledCourseIDs []int64          `json:"enrolledCourseIds"`
	PaginationInfo    PaginationInfo   `json:"pagination"`
}

// CreateCourseRequest creates a catalog entry (staff only).
type CreateCourseRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateCourseRequest updates a catalog entry (staff only).
type UpdateCourseRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}
