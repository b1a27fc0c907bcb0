package repository

import (
	"context"
	"errors"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"gorm.io/gorm"
)

type BookOfWeekRepository interface {
	Get(ctx context.Context) (*entity.BookOfWeek, error)
	Upsert(ctx context.Context, book *entity.BookOfWeek) error
}

type bookOfWeekRepository struct {
	db *gorm.DB
}

func NewBookOfWeekRepository(db *gorm.DB) BookOfWeekRepository {
	return &bookOfWeekRepository{db: db}
}

func (r *bookOfWeekRepository) Get(ctx context.Context) (*entity.BookOfWeek, error) {
	var book entity.BookOfWeek
	if err := r.db.WithContext(ctx).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Upsert writes the singleton row, creating it on first update.
func (r *bookOfWeekRepository) Upsert(ctx context.Context, book *entity.BookOfWeek) error {
	var existing entity.BookOfWeek
	err := r.db.WithContext(ctx).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(book).Error
	}
	if err != nil {
		return err
	}

	book.ID = existing.ID
	return r.db.WithContext(ctx).Save(book).Error
}
