package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/esscera_store/internal/hash"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

type CreateUserInput struct {
	Email    string      `json:"email"    validate:"required,email,max=255"`
	Username string      `json:"username" validate:"required,min=3,max=64"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role `json:"role"`
}

func (s *UserService) List(ctx context.Context) ([]repo.UserWithOrders, error) {
	return s.Repo.ListUsersWithOrderCounts(ctx)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, invalid("Email, username, and password are required")
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	role := models.Role(strings.ToUpper(string(in.Role)))
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, invalid("role must be one of [USER ADMIN]")
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("user with this email or username already exists: %w", ErrConflict)
		}
		return nil, err
	}
	logging.FromContext(ctx).Info("user_created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	role = models.Role(strings.ToUpper(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, invalid("role must be one of [USER ADMIN]")
	}
	u, err := s.Repo.UpdateUserRole(ctx, id, role)
	if err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}

// Delete refuses to remove the acting admin and users who placed orders.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return invalid("Cannot delete your own account")
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrUserHasOrders) {
			return fmt.Errorf("user has orders and cannot be deleted: %w", ErrConflict)
		}
		return notFound("user", err)
	}
	logging.FromContext(ctx).Info("user_deleted", "user_id", id)
	return nil
}

// RecentOrdersLimit is how many orders the dashboard shows.
const RecentOrdersLimit = 5

type StatsService struct {
	Repo *repo.GormRepo
}

type Dashboard struct {
	Stats        repo.Stats     `json:"stats"`
	RecentOrders []models.Order `json:"recent_orders"`
}

func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.Repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Repo.RecentOrders(ctx, RecentOrdersLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.Order{}
	}
	return &Dashboard{Stats: stats, RecentOrders: recent}, nil
}
