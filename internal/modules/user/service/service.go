package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	adminRepo "bibliomaniacs.org/bookreviews/internal/modules/admin/repository"
	"bibliomaniacs.org/bookreviews/internal/modules/user/dto"
	"bibliomaniacs.org/bookreviews/internal/modules/user/repository"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)

	// ResolveRole re-resolves the caller's role on every call; it is never
	// cached across requests so a promotion takes effect on the next one.
	ResolveRole(ctx context.Context, userID uuid.UUID) (*entity.User, string, error)

	UIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
}

type authService struct {
	repo      repository.UserRepository
	adminRepo adminRepo.AdminEmailRepository
	secret    string
	tokenTTL  time.Duration
}

func NewAuthService(repo repository.UserRepository, adminRepo adminRepo.AdminEmailRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:      repo,
		adminRepo: adminRepo,
		secret:    secret,
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.New(http.StatusBadRequest, "email already registered", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := entity.RoleUser
	if isAdmin, err := s.adminRepo.Contains(ctx, input.Email); err == nil && isAdmin {
		role = entity.RoleAdmin
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	return s.buildAuthResponse(user)
}

func (s *authService) ResolveRole(ctx context.Context, userID uuid.UUID) (*entity.User, string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.RoleNoAccount, apperror.ErrUnauthorized
		}
		return nil, "", err
	}

	// Allowlisted emails are promoted lazily, on the next resolution after
	// the allowlist change.
	if user.Role != entity.RoleAdmin {
		isAdmin, err := s.adminRepo.Contains(ctx, user.Email)
		if err != nil {
			log.Printf("admin allowlist lookup failed for %s: %v", user.Email, err)
		} else if isAdmin {
			if err := s.repo.UpdateRole(ctx, user.ID, entity.RoleAdmin); err != nil {
				return nil, "", err
			}
			user.Role = entity.RoleAdmin
		}
	}

	return user, user.Role, nil
}

func (s *authService) UIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.ErrNotFound
		}
		return uuid.Nil, err
	}
	return user.ID, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: token,
		UID:   user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	}, nil
}
