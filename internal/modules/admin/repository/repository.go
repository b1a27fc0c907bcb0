package repository

import (
	"context"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminEmailRepository interface {
	All(ctx context.Context) ([]entity.AdminEmail, error)
	Contains(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, email string) error
	Remove(ctx context.Context, email string) error
}

type adminEmailRepository struct {
	db *gorm.DB
}

func NewAdminEmailRepository(db *gorm.DB) AdminEmailRepository {
	return &adminEmailRepository{db: db}
}

func (r *adminEmailRepository) All(ctx context.Context) ([]entity.AdminEmail, error) {
	var admins []entity.AdminEmail
	err := r.db.WithContext(ctx).Order("email asc").Find(&admins).Error
	return admins, err
}

func (r *adminEmailRepository) Contains(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.AdminEmail{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *adminEmailRepository) Add(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.AdminEmail{Email: email}).Error
}

func (r *adminEmailRepository) Remove(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Delete(&entity.AdminEmail{}, "email = ?", email).Error
}
