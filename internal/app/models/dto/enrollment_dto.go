package dto

import "time"

// EnrollmentResponse reports the outcome of an enroll request. Enrolling in a
// course the student already holds is not an error; AlreadyEnrolled is set
// instead.
type EnrollmentResponse struct {
	EnrollmentID    int64  `json:"enrollmentId"`
	CourseID        int64  `json:"courseId"`
	CourseName      string `json:"courseName"`
	AlreadyEnrolled bool   `json:"alreadyEnrolled"`
	Message         string `json:"message"`
}

// MyCourseResponse is one row of the current student's enrollment list.
type MyCourseResponse struct {
	EnrollmentID      int64     `json:"enrollmentId"`
	CourseID          int64     `json:"courseId"`
	CourseName        string    `json:"courseName"`
	CourseDescription string    `json:"courseDescription"`
	EnrolledAt        time.Time `json:"enrolledAt"`
}

// MyCoursesResponse lists the current student's enrollments with course details.
type MyCoursesResponse struct {
	Enrollments []MyCourseResponse `json:"enrollments"`
}
