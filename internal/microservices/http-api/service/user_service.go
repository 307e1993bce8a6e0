package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
	"yamdb/internal/validators"
)

type UserService interface {
	List(ctx context.Context, search string, page int) (*dto.Page[dto.UserResponse], error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	GetMe(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) List(ctx context.Context, search string, page int) (*dto.Page[dto.UserResponse], error) {
	users, total, err := s.userRepo.List(ctx, search, page, dto.PageSize)
	if err != nil {
		return nil, err
	}
	if err := checkPage(page, total); err != nil {
		return nil, err
	}
	return dto.NewPage(dto.MapSlice(users, dto.UserFromModel), total, page, dto.PageSize), nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      policy.RoleUser,
	}
	if err := validators.ValidateUsername(user.Username); err != nil {
		return nil, err
	}
	if err := validators.ValidateEmail(user.Email); err != nil {
		return nil, err
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, duplicateUser(err)
	}

	s.logger.Info("user created", slog.String("username", user.Username), slog.String("role", string(user.Role)))
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "username", "user not found")
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "username", "user not found")
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	return s.save(ctx, user, req)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return notFound(err, "username", "user not found")
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return notFound(err, "username", "user not found")
	}
	s.logger.Info("user deleted", slog.String("username", username))
	return nil
}

func (s *userService) GetMe(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	user, err := s.me(ctx, actor, policy.ActionRetrieve)
	if err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

// UpdateMe edits the caller's own profile. Sending a role at all requires admin.
func (s *userService) UpdateMe(ctx context.Context, actor policy.Actor, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.me(ctx, actor, policy.ActionPartialUpdate)
	if err != nil {
		return nil, err
	}
	if req.Role != nil {
		if err := policy.CanChangeRole(actor); err != nil {
			return nil, err
		}
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	return s.save(ctx, user, req)
}

func (s *userService) me(ctx context.Context, actor policy.Actor, action policy.Action) (*models.User, error) {
	if err := policy.Check(actor, policy.ResourceProfile, action); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.UserID())
	if err != nil {
		return nil, notFound(err, "", "user not found")
	}
	if err := policy.CheckObject(actor, policy.ResourceProfile, action, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) save(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := validators.ValidateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := validators.ValidateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	req.ApplyTo(user)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, duplicateUser(err)
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func parseRole(value string) (policy.Role, error) {
	role, err := policy.ParseRole(value)
	if err != nil {
		return "", apperr.Validation("role", "role must be one of user, moderator, admin")
	}
	return role, nil
}

func duplicateUser(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict("username", "username or email is already registered")
	}
	return err
}
