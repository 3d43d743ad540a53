package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/services"
	"github.com/mertk/coursehub/internal/middleware"
)

// FileController handles course file submissions
type FileController struct {
	fileService services.FileService
	logger      zerolog.Logger
}

// NewFileController creates a new FileController
func NewFileController(fileService services.FileService, logger zerolog.Logger) *FileController {
	return &FileController{
		fileService: fileService,
		logger:      logger,
	}
}

// Upload handles a file submission for a course
// @Summary Upload a file to a course
// @Description Stores a file submitted for a course. The caller must be enrolled in the course.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} dto.APIResponse{data=dto.FileUploadResponse} "File stored"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid file"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 404 {object} dto.ErrorResponse "Course or student profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/files [post]
func (c *FileController) Upload(ctx *gin.Context) {
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

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "File is required").
			WithDetails("Request must contain a multipart file field named 'file'")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	upload, err := c.fileService.Upload(ctx.Request.Context(), userID, courseID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: upload})
}

// ListCourseFiles handles the file listing of a course
// @Summary List course files
// @Description Lists the files submitted for a course, most recent first. The caller must be enrolled.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.FileListResponse} "File list"
// @Failure 400 {object} dto.ErrorResponse "Invalid course id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this course"
// @Failure 404 {object} dto.ErrorResponse "Course or student profile not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses/{id}/files [get]
func (c *FileController) ListCourseFiles(ctx *gin.Context) {
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

	fileList, err := c.fileService.ListCourseFiles(ctx.Request.Context(), userID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: fileList})
}

// Download handles a file download
// @Summary Download a file
// @Description Streams a stored file as an attachment under its original name. Any authenticated user may download.
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {file} file "File contents"
// @Failure 400 {object} dto.ErrorResponse "Invalid file id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /files/{id}/download [get]
func (c *FileController) Download(ctx *gin.Context) {
	fileID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fullPath, fileName, err := c.fileService.Download(ctx.Request.Context(), fileID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.FileAttachment(fullPath, fileName)
}

// ConfirmDelete handles the confirmation step of a file deletion
// @Summary Confirm a file deletion
// @Description Returns the details of the file about to be deleted. Only the uploader or staff may delete.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteConfirmResponse} "Confirmation details"
// @Failure 400 {object} dto.ErrorResponse "Invalid file id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Only the uploader or staff can delete this file"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /files/{id}/confirm [get]
func (c *FileController) ConfirmDelete(ctx *gin.Context) {
	fileID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	confirm, err := c.fileService.ConfirmDelete(ctx.Request.Context(), userID, middleware.CurrentUserIsStaff(ctx), fileID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: confirm})
}

// Delete handles a file deletion
// @Summary Delete a file
// @Description Removes a stored file and its record. Only the uploader or staff may delete.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "File deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid file id"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Only the uploader or staff can delete this file"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /files/{id} [delete]
func (c *FileController) Delete(ctx *gin.Context) {
	fileID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.fileService.Delete(ctx.Request.Context(), userID, middleware.CurrentUserIsStaff(ctx), fileID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.SuccessResponse{Message: "File deleted"}})
}
