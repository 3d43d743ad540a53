package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/repositories"
)

// EnrollmentService defines the interface for enrollment operations
type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID int64) (*dto.EnrollmentResponse, error)
	MyCourses(ctx context.Context, userID int64) (*dto.MyCoursesResponse, error)
}

// enrollmentServiceImpl implements EnrollmentService
type enrollmentServiceImpl struct {
	enrollmentRepo repositories.IEnrollmentRepository
	courseRepo     repositories.ICourseRepository
	userRepo       repositories.IUserRepository
	maxPerStudent  int
	logger         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	enrollmentRepo repositories.IEnrollmentRepository,
	courseRepo repositories.ICourseRepository,
	userRepo repositories.IUserRepository,
	maxPerStudent int,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		maxPerStudent:  maxPerStudent,
		logger:         logger,
	}
}

// Enroll enrolls the current user's student profile in a course. Enrolling
// twice in the same course is not an error; the response reports it as
// already held. The per-student cap is enforced atomically in the repository.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, userID, courseID int64) (*dto.EnrollmentResponse, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, created, err := s.enrollmentRepo.Enroll(ctx, student.ID, course.ID, s.maxPerStudent)
	if err != nil {
		return nil, err
	}

	resp := &dto.EnrollmentResponse{
		EnrollmentID:    enrollment.ID,
		CourseID:        course.ID,
		CourseName:      course.Name,
		AlreadyEnrolled: !created,
	}
	if created {
		resp.Message = "You enrolled in " + course.Name
		s.logger.Info().Int64("studentID", student.ID).Int64("courseID", course.ID).Msg("Student enrolled")
	} else {
		resp.Message = "You are already enrolled in " + course.Name
	}

	return resp, nil
}

// MyCourses lists the current user's enrollments with course details.
func (s *enrollmentServiceImpl) MyCourses(ctx context.Context, userID int64) (*dto.MyCoursesResponse, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	courses := make([]dto.MyCourseResponse, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, dto.MyCourseResponse{
			EnrollmentID:      e.ID,
			CourseID:          e.CourseID,
			CourseName:        e.CourseName,
			CourseDescription: e.CourseDescription,
			EnrolledAt:        e.EnrolledAt,
		})
	}

	return &dto.MyCoursesResponse{Enrollments: courses}, nil
}
