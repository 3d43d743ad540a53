package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/app/repositories"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/auth"
)

// defaultCourses is the starter catalog created on an empty database.
var defaultCourses = []models.Course{
	{Name: "Mathematics 101", Description: "Single-variable calculus and analytic geometry."},
	{Name: "Physics 101", Description: "Mechanics, waves and thermodynamics."},
	{Name: "Computer Science 101", Description: "Introduction to programming and problem solving."},
	{Name: "Literature 101", Description: "Close reading and essay writing."},
	{Name: "Chemistry 101", Description: "Atomic structure, bonding and stoichiometry."},
}

// CreateDefaultData creates the starter courses and the default staff account
// if they do not exist. Errors are collected so one failed entry does not
// block the rest.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	courseRepo := repositories.NewCourseRepository(dbPool)
	userRepo := repositories.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (courses, staff account)...")
	var finalErr error

	for i := range defaultCourses {
		course := defaultCourses[i]
		if _, err := courseRepo.Create(ctx, &course); err != nil && !errors.Is(err, apperrors.ErrCourseAlreadyExists) {
			lgr.Error().Err(err).Str("name", course.Name).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	exists, err := userRepo.UsernameExists(ctx, "admin")
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if staff user exists")
		return errors.Join(finalErr, err)
	}
	if !exists {
		lgr.Info().Msg("Creating default staff user...")

		hashedPassword, err := auth.HashPassword("Admin123!")
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing staff password")
			return errors.Join(finalErr, err)
		}

		// Staff accounts get a student profile too so they can browse the
		// catalog like any other user.
		staff := &models.User{
			Username: "admin",
			Email:    "admin@coursehub.app",
			Password: hashedPassword,
			IsStaff:  true,
		}
		if _, _, err := userRepo.CreateUserWithStudent(ctx, staff); err != nil &&
			!errors.Is(err, apperrors.ErrUsernameAlreadyExists) && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Error().Err(err).Msg("Error creating default staff user")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
