package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/services"
	"github.com/mertk/coursehub/internal/middleware"
)

// EnrollmentController handles enrollment operations
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
	logger            zerolog.Logger
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService, logger zerolog.Logger) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// Enroll handles course enrollment
// @Summary Enroll in a course
// @Description Enrolls the caller's student profile in a course. Enrolling twice is not an error; the response reports the course as already held. A 409 is returned when the enrollment limit is reached.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment outcome"
// @Failure 400 {object} dto.ErrorResponse "Invalid course id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Course or student profile not found"
// @Failure 409 {object} dto.ErrorResponse "Enrollment limit reached"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), userID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: enrollment})
}

// MyCourses handles the current student's enrollment listing
// @Summary List my courses
// @Description Lists the courses the caller is enrolled in, most recent first.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MyCoursesResponse} "Enrollment list"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /me/courses [get]
func (c *EnrollmentController) MyCourses(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	myCourses, err := c.enrollmentService.MyCourses(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: myCourses})
}
