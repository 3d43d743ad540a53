package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/services"
	"github.com/mertk/coursehub/internal/middleware"
	"github.com/mertk/coursehub/internal/pkg/helpers"
)

// CourseController handles course catalog operations
type CourseController struct {
	courseService services.CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{
		courseService: courseService,
		logger:        logger,
	}
}

// ListCourses handles the course catalog listing
// @Summary List courses
// @Description Returns the course catalog with the caller's enrolled course ids marked.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse} "Course catalog"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Student profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	courseList, err := c.courseService.ListCourses(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: courseList})
}

// GetCourse handles a single course lookup
// @Summary Get a course
// @Description Returns a single course by id.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course"
// @Failure 400 {object} dto.ErrorResponse "Invalid course id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: course})
}

// CreateCourse handles course creation (staff only)
// @Summary Create a course
// @Description Adds a course to the catalog. Requires staff permissions.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course details"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Staff permissions required"
// @Failure 409 {object} dto.ErrorResponse "Course name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	course, err := c.courseService.CreateCourse(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("courseID", course.ID).Str("name", course.Name).Msg("Course created")
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: course})
}

// UpdateCourse handles course updates (staff only)
// @Summary Update a course
// @Description Updates a course's name and description. Requires staff permissions.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Course details"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Staff permissions required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course name already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), courseID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: course})
}

// DeleteCourse handles course deletion (staff only)
// @Summary Delete a course
// @Description Removes a course; its enrollments and file records are removed with it. Requires staff permissions.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Course deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid course id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Staff permissions required"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	courseID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), courseID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("courseID", courseID).Msg("Course deleted")
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.SuccessResponse{Message: "Course deleted"}})
}
