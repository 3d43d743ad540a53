package services

import (
	"context"
	"fmt"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/repositories"
	"github.com/mertk/coursehub/internal/pkg/helpers"
)

// CourseService defines the interface for course catalog operations
type CourseService interface {
	ListCourses(ctx context.Context, userID int64, page, size int) (*dto.CourseListResponse, error)
	GetCourse(ctx context.Context, id int64) (*dto.CourseResponse, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, id int64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// courseServiceImpl implements CourseService
type courseServiceImpl struct {
	courseRepo     repositories.ICourseRepository
	enrollmentRepo repositories.IEnrollmentRepository
	userRepo       repositories.IUserRepository
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	userRepo repositories.IUserRepository,
) CourseService {
	return &courseServiceImpl{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
	}
}

// ListCourses returns a catalog page with the current student's enrolled
// course ids so clients can mark held courses. A user without a student
// profile gets a not-found error; registration always creates the profile,
// so this should not happen in practice.
func (s *courseServiceImpl) ListCourses(ctx context.Context, userID int64, page, size int) (*dto.CourseListResponse, error) {
	student, err := s.userRepo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses, totalItems, err := s.courseRepo.GetAll(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}

	enrolledIDs, err := s.enrollmentRepo.EnrolledCourseIDs(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing enrolled course ids: %w", err)
	}

	enrolled := make(map[int64]bool, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = true
	}

	courseResponses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		courseResponses = append(courseResponses, dto.CourseResponse{
			ID:          course.ID,
			Name:        course.Name,
			Description: course.Description,
			CreatedAt:   course.CreatedAt,
			Enrolled:    enrolled[course.ID],
		})
	}

	return &dto.CourseListResponse{
		Courses:           courseResponses,
		EnrolledCourseIDs: enrolledIDs,
		PaginationInfo:    helpers.NewPaginationInfo(totalItems, page, size),
	}, nil
}

// GetCourse retrieves a single catalog entry.
func (s *courseServiceImpl) GetCourse(ctx context.Context, id int64) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.CourseResponse{
		ID:          course.ID,
		Name:        course.Name,
		Description: course.Description,
		CreatedAt:   course.CreatedAt,
	}, nil
}

// CreateCourse adds a catalog entry (staff only; the route enforces the gate).
func (s *courseServiceImpl) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
	}

	id, err := s.courseRepo.Create(ctx, course)
	if err != nil {
		return nil, err
	}

	created, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.CourseResponse{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		CreatedAt:   created.CreatedAt,
	}, nil
}

// UpdateCourse updates a catalog entry.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, id int64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	course.Name = req.Name
	course.Description = req.Description

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	return &dto.CourseResponse{
		ID:          course.ID,
		Name:        course.Name,
		Description: course.Description,
		CreatedAt:   course.CreatedAt,
	}, nil
}

// DeleteCourse removes a catalog entry; enrollments and file records cascade
// in the database.
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	return s.courseRepo.Delete(ctx, id)
}
