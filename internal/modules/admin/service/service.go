package service

import (
	"context"
	"errors"
	"log"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/modules/admin/repository"
	userRepo "bibliomaniacs.org/bookreviews/internal/modules/user/repository"
	"gorm.io/gorm"
)

// AdminService manages the admin email allowlist. Adding an email promotes
// any existing account immediately; accounts created later are promoted by
// role resolution.
type AdminService interface {
	List(ctx context.Context) ([]entity.AdminEmail, error)
	Add(ctx context.Context, email string) error
	Remove(ctx context.Context, email string) error
}

type adminService struct {
	repo  repository.AdminEmailRepository
	users userRepo.UserRepository
}

func NewAdminService(repo repository.AdminEmailRepository, users userRepo.UserRepository) AdminService {
	return &adminService{
		repo:  repo,
		users: users,
	}
}

func (s *adminService) List(ctx context.Context) ([]entity.AdminEmail, error) {
	return s.repo.All(ctx)
}

func (s *adminService) Add(ctx context.Context, email string) error {
	if err := s.repo.Add(ctx, email); err != nil {
		return err
	}
	return s.setRoleIfRegistered(ctx, email, entity.RoleAdmin)
}

func (s *adminService) Remove(ctx context.Context, email string) error {
	if err := s.repo.Remove(ctx, email); err != nil {
		return err
	}
	return s.setRoleIfRegistered(ctx, email, entity.RoleUser)
}

func (s *adminService) setRoleIfRegistered(ctx context.Context, email, role string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("no account for %s yet, role applies on registration", email)
			return nil
		}
		return err
	}
	return s.users.UpdateRole(ctx, user.ID, role)
}
