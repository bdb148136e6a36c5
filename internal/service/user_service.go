package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/repository"
)

// Domain errors.
var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// UserService handles account registration and the admin approval queue.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates a student account in the pending state. The account
// cannot log in until an admin approves it.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         model.RoleStudent,
		Approved:     false,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("Student registered, pending approval")
	return user, nil
}

// Authenticate verifies credentials and the approval state.
func (s *UserService) Authenticate(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Role == model.RoleStudent && !user.Approved {
		return nil, ErrAccountPending
	}
	return user, nil
}

// GetByID retrieves an account.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List retrieves all accounts for the admin user screen, pending first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// SetApproved flips an account's approval flag. Revoking approval also
// drops any active session so the account is locked out immediately.
func (s *UserService) SetApproved(ctx context.Context, id int, approved bool) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetApproved(ctx, id, approved); err != nil {
		return err
	}
	if !approved {
		if err := s.auth.ResetSession(ctx, id); err != nil {
			s.log.Warn().Err(err).Int("user_id", id).Msg("Failed to reset session on revoke")
		}
	}
	s.log.Info().Int("user_id", id).Bool("approved", approved).Msg("User approval updated")
	return nil
}

// Delete removes an account and its session.
func (s *UserService) Delete(ctx context.Context, id int) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.auth.ResetSession(ctx, id); err != nil {
		s.log.Warn().Err(err).Int("user_id", id).Msg("Failed to reset session on delete")
	}
	return nil
}
