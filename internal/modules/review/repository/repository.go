package repository

import (
	"context"
	"fmt"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/modules/review/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	Save(ctx context.Context, review *entity.Review) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	// List applies the server-side filter tier and sort. The search and
	// date-range tier is applied in memory by the service.
	List(ctx context.Context, key dto.CoarseKey) ([]entity.Review, error)
	FindByEmail(ctx context.Context, email string) ([]entity.Review, error)
	All(ctx context.Context) ([]entity.Review, error)

	// RecalculateTotalHours recomputes and stores the submitter's volunteer
	// hour total across all their reviews.
	RecalculateTotalHours(ctx context.Context, email string) (float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Save(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *reviewRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&entity.Review{}).Where("id = ?", id).Updates(fields).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Review{}, "id = ?", id).Error
}

func (r *reviewRepository) List(ctx context.Context, key dto.CoarseKey) ([]entity.Review, error) {
	query := r.db.WithContext(ctx).Model(&entity.Review{})

	switch key.Status {
	case entity.StatusApproved:
		query = query.Where("approved = ?", true)
	case entity.StatusPending:
		query = query.Where("approved = ? AND date_processed IS NULL", false)
	case entity.StatusRejected:
		query = query.Where("approved = ? AND date_processed IS NOT NULL", false)
	}

	if key.Grade != nil {
		query = query.Where("grade = ?", *key.Grade)
	}
	if key.School != "" {
		query = query.Where("school = ?", key.School)
	}

	switch key.EmailSent {
	case "Sent":
		query = query.Where("sent_confirmation_email = ?", true)
	case "NotSent":
		query = query.Where("sent_confirmation_email = ?", false)
	}

	sortBy := key.SortBy
	switch sortBy {
	case "rating", "book_title":
	default:
		sortBy = "date_received"
	}
	order := "desc"
	if key.SortOrder == "asc" {
		order = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	reviews := []entity.Review{}
	err := query.Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) FindByEmail(ctx context.Context, email string) ([]entity.Review, error) {
	reviews := []entity.Review{}
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("date_received desc").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) All(ctx context.Context) ([]entity.Review, error) {
	reviews := []entity.Review{}
	err := r.db.WithContext(ctx).Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) RecalculateTotalHours(ctx context.Context, email string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("email = ? AND approved = ?", email, true).
		Select("COALESCE(SUM(time_earned), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("email = ?", email).
		Update("total_hours", total).Error
	return total, err
}
