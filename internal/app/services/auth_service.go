package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/app/models/dto"
	"github.com/mertk/coursehub/internal/app/repositories"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/auth"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID int64, refreshToken string) error
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	tokenRepo  repositories.ITokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a user account and its student profile in one step.
// Binding already checked the password confirmation, but the rule belongs to
// the service too.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, apperrors.ErrPasswordMismatch
	}

	taken, err := s.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		return nil, apperrors.ErrUsernameAlreadyExists
	}

	taken, err = s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}

	userID, studentID, err := s.userRepo.CreateUserWithStudent(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Str("username", req.Username).Msg("User registered")

	return &dto.RegisterResponse{
		UserID:    userID,
		StudentID: studentID,
		Username:  req.Username,
	}, nil
}

// Login verifies credentials and issues a token pair. Unknown username and
// wrong password both map to the same generic error so account existence is
// not leaked.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh token pair, rotating
// the refresh token. Presenting an already-revoked token means the token
// leaked or was replayed, so every refresh token of that user is revoked.
func (s *authServiceImpl) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	if stored.Revoked {
		if err := s.tokenRepo.RevokeAllForUser(ctx, stored.UserID); err != nil {
			s.logger.Error().Err(err).Int64("userID", stored.UserID).Msg("Could not revoke tokens after refresh token reuse")
		} else {
			s.logger.Warn().Int64("userID", stored.UserID).Msg("Revoked refresh token reused, all sessions revoked")
		}
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Revoke(ctx, stored.Token); err != nil {
		return nil, err
	}

	return s.issueTokenPair(ctx, user)
}

// Logout revokes the presented refresh token. Tokens belonging to another
// user are rejected.
func (s *authServiceImpl) Logout(ctx context.Context, userID int64, refreshToken string) error {
	stored, err := s.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if stored.UserID != userID {
		return apperrors.ErrPermissionDenied
	}

	if err := s.tokenRepo.Revoke(ctx, stored.Token); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("User logged out")
	return nil
}

func (s *authServiceImpl) issueTokenPair(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, user.ID, refreshToken, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             expiresIn,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: refreshExpiresIn,
	}, nil
}
