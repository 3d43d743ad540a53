package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
	FileUploadRepository *FileUploadRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		CourseRepository:     NewCourseRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		FileUploadRepository: NewFileUploadRepository(db),
		TokenRepository:      NewTokenRepository(db),
	}
}
