package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mertk/coursehub/internal/app/controllers"
	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	enrollmentController *controllers.EnrollmentController,
	fileController *controllers.FileController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)

		// Course catalog
		courses := authenticated.Group("/courses")
		{
			courses.GET("", courseController.ListCourses)
			courses.GET("/:id", courseController.GetCourse)
			courses.POST("/:id/enroll", enrollmentController.Enroll)
			courses.POST("/:id/files", fileController.Upload)
			courses.GET("/:id/files", fileController.ListCourseFiles)

			// Catalog management is restricted to staff accounts
			coursesStaffProtected := courses.Group("")
			coursesStaffProtected.Use(authMiddleware.StaffRequired())
			{
				coursesStaffProtected.POST("", courseController.CreateCourse)
				coursesStaffProtected.PUT("/:id", courseController.UpdateCourse)
				coursesStaffProtected.DELETE("/:id", courseController.DeleteCourse)
			}
		}

		// Current student's enrollments
		authenticated.GET("/me/courses", enrollmentController.MyCourses)

		// File access by file id
		files := authenticated.Group("/files")
		{
			files.GET("/:id/download", fileController.Download)
			files.GET("/:id/confirm", fileController.ConfirmDelete)
			files.DELETE("/:id", fileController.Delete)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}
