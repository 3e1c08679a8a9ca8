package service

import (
	"context"
	"errors"

	userserrors "evcharge/internal/users/errors"
	"evcharge/internal/users/repository"
	"evcharge/internal/users/validator"
	"evcharge/pkg/auth"
	"evcharge/pkg/config"
	apperrors "evcharge/pkg/errors"
	"evcharge/pkg/model"
	"evcharge/pkg/sanitizer"
)

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type TokenIssuer interface {
	Generate(userID, email, username string) (string, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	hasher    auth.Hasher
	tokens    TokenIssuer
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	hasher auth.Hasher,
	tokens TokenIssuer,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		hasher:    hasher,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	s.sanitizeRegister(req)
	if err := s.validator.ValidateRegister(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "error", err)
		return nil, apperrors.Validation("Invalid registration input", map[string]any{"error": err.Error()})
	}

	_, err := s.repo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperrors.BadRequest("User already exists").WithCause(userserrors.ErrAlreadyExists)
	}
	if !errors.Is(err, userserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up user", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		ContactNumber: req.ContactNumber,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrAlreadyExists) {
			return nil, apperrors.BadRequest("User already exists").WithCause(err)
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, apperrors.Validation("Invalid login input", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		s.cfg.Log.Error("Failed to look up user", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.cfg.Log.Warn("Login rejected", "id", user.ID)
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	return &model.LoginResponse{Message: "Login successful", Token: token, User: user}, nil
}

func (s *userService) sanitizeRegister(req *model.RegisterRequest) {
	req.Username = sanitizer.NormalizeName(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if phone := sanitizer.NormalizePhone(req.ContactNumber); phone != "" {
		req.ContactNumber = phone
	}
}
