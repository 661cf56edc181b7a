package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"
	"inventario/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID           uuid.UUID         `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Role         rbac.Role         `json:"role"`
	Capabilities []rbac.Capability `json:"capabilities"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	CreateUser(ctx context.Context, actor model.Actor, req CreateUserRequest) (*UserResponse, error)
	ChangeRole(ctx context.Context, actor model.Actor, userID uuid.UUID, role string) (*UserResponse, error)
	ListUsers(ctx context.Context, actor model.Actor, page, limit int) ([]UserResponse, int64, error)
	Me(ctx context.Context, actor model.Actor) (*UserResponse, error)
	SeedAdministrator(ctx context.Context, username, password string) (bool, error)
}

type userService struct {
	txManager repository.TransactionManager
	repo      repository.UserRepository
	audit     AuditService
	secret    []byte
	ttl       time.Duration
}

// NewUserService returns a new instance of UserService
func NewUserService(txManager repository.TransactionManager, repo repository.UserRepository, audit AuditService, secret string, ttl time.Duration) UserService {
	return &userService{
		txManager: txManager,
		repo:      repo,
		audit:     audit,
		secret:    []byte(secret),
		ttl:       ttl,
	}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		Capabilities: rbac.Capabilities(user.Role),
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    user.UpdatedAt.Format(time.RFC3339),
	}
}

var errBadCredentials = fmt.Errorf("%w: invalid username or password", errs.ErrUnauthorized)

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}

	now := time.Now()
	tokenString, err := token.Issue(s.secret, user.Actor(), s.ttl, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResponse{
		Token:     tokenString,
		ExpiresAt: now.Add(s.ttl).UTC().Format(time.RFC3339),
		User:      mapToResponse(user),
	}, nil
}

func (s *userService) CreateUser(ctx context.Context, actor model.Actor, req CreateUserRequest) (*UserResponse, error) {
	if err := authorize(actor, rbac.CapManageUsers); err != nil {
		return nil, err
	}
	role, ok := rbac.ParseRole(req.Role)
	if !ok {
		return nil, fmt.Errorf("%w: invalid role %q", errs.ErrValidation, req.Role)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: username and a password of at least 6 characters are required", errs.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: username,
		Email:    strings.TrimSpace(req.Email),
		Password: string(hashedPassword),
		Role:     role,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByUsername(txCtx, username); err == nil {
			return fmt.Errorf("%w: username %q already exists", errs.ErrConflict, username)
		} else if !errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("failed to check username: %w", err)
		}

		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		_, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityUser,
			EntityID:    user.ID.String(),
			Action:      model.ActionCreated,
			Description: fmt.Sprintf("User created: %s (%s)", user.Username, user.Role),
			After:       map[string]string{"username": user.Username, "role": string(user.Role)},
			ActorID:     actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

// ChangeRole reassigns a user's role. Nobody may change their own role.
func (s *userService) ChangeRole(ctx context.Context, actor model.Actor, userID uuid.UUID, role string) (*UserResponse, error) {
	if err := authorize(actor, rbac.CapManageUsers); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, fmt.Errorf("%w: cannot change your own role", errs.ErrUnauthorized)
	}
	newRole, ok := rbac.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: invalid role %q", errs.ErrValidation, role)
	}

	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByID(txCtx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		oldRole := user.Role
		if err := s.repo.UpdateRole(txCtx, userID, newRole); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		user.Role = newRole

		_, err = s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityUser,
			EntityID:    user.ID.String(),
			Action:      model.ActionRoleChanged,
			Description: fmt.Sprintf("Role of %s changed: %s -> %s", user.Username, oldRole, newRole),
			Before:      map[string]string{"role": string(oldRole)},
			After:       map[string]string{"role": string(newRole)},
			ActorID:     actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, actor model.Actor, page, limit int) ([]UserResponse, int64, error) {
	if err := authorize(actor, rbac.CapManageUsers); err != nil {
		return nil, 0, err
	}
	page, limit = pageDefaults(page, limit)

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

// Me returns the caller's own account. Any authenticated actor may call it.
func (s *userService) Me(ctx context.Context, actor model.Actor) (*UserResponse, error) {
	if actor.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: no authenticated actor", errs.ErrUnauthorized)
	}
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", actor.ID, err)
	}
	return mapToResponse(user), nil
}

// SeedAdministrator creates the bootstrap administrator on an empty user table.
// It reports whether a user was created.
func (s *userService) SeedAdministrator(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{Username: username, Password: string(hashedPassword), Role: rbac.RoleAdministrator}
	if err := s.repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create administrator: %w", err)
	}
	return true, nil
}
