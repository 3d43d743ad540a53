package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertk/coursehub/internal/app/models"
	appdb "github.com/mertk/coursehub/internal/db"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/dberrors"
	"github.com/mertk/coursehub/internal/pkg/logger"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	CreateUserWithStudent(ctx context.Context, user *models.User) (userID, studentID int64, err error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

// UserRepository handles database operations for users and student profiles.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUserWithStudent inserts a user and its student profile in one
// transaction; registration is a single logical step.
func (r *UserRepository) CreateUserWithStudent(ctx context.Context, user *models.User) (int64, int64, error) {
	var userID, studentID int64

	err := appdb.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		userSQL, userArgs, err := squirrel.Insert("users").
			Columns("username", "email", "password", "is_staff").
			Values(user.Username, user.Email, user.Password, user.IsStaff).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, userSQL, userArgs...).Scan(&userID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
				return apperrors.ErrUsernameAlreadyExists
			}
			if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
				return apperrors.ErrEmailAlreadyExists
			}
			return err
		}

		studentSQL, studentArgs, err := squirrel.Insert("students").
			Columns("user_id").
			Values(userID).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		return tx.QueryRow(ctx, studentSQL, studentArgs...).Scan(&studentID)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrUsernameAlreadyExists) && !errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			logger.Error().Err(err).Str("username", user.Username).Msg("Error creating user with student profile")
		}
		return 0, 0, err
	}

	return userID, studentID, nil
}

func (r *UserRepository) selectUserQuery() squirrel.SelectBuilder {
	return squirrel.Select("id", "username", "email", "password", "is_staff", "created_at", "updated_at").
		From("users").
		PlaceholderFormat(squirrel.Dollar)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.IsStaff, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by id.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	sqlStr, args, err := r.selectUserQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.db.QueryRow(ctx, sqlStr, args...))
}

// GetUserByUsername retrieves a user by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	sqlStr, args, err := r.selectUserQuery().Where(squirrel.Eq{"username": username}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.db.QueryRow(ctx, sqlStr, args...))
}

// UsernameExists checks whether a username is taken.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error checking username existence")
		return false, err
	}
	return exists, nil
}

// EmailExists checks whether an email is taken.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error checking email existence")
		return false, err
	}
	return exists, nil
}

// GetStudentByUserID retrieves the student profile attached to a user.
func (r *UserRepository) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	sqlStr, args, err := squirrel.Select("id", "user_id", "created_at").
		From("students").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var student models.Student
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(&student.ID, &student.UserID, &student.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting student by user ID")
		return nil, err
	}

	return &student, nil
}
