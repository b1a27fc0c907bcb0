package service

import (
	"context"
	"errors"
	"log"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/modules/bookofweek/repository"
	notifService "bibliomaniacs.org/bookreviews/internal/modules/notification/service"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"gorm.io/gorm"
)

type BookOfWeekService interface {
	Get(ctx context.Context) (*entity.BookOfWeek, error)
	Update(ctx context.Context, title, author string) (*entity.BookOfWeek, error)
}

type bookOfWeekService struct {
	repo       repository.BookOfWeekRepository
	dispatcher notifService.Dispatcher
	senderName string
	now        func() time.Time
}

func NewBookOfWeekService(repo repository.BookOfWeekRepository, dispatcher notifService.Dispatcher, senderName string) BookOfWeekService {
	return &bookOfWeekService{
		repo:       repo,
		dispatcher: dispatcher,
		senderName: senderName,
		now:        time.Now,
	}
}

func (s *bookOfWeekService) Get(ctx context.Context) (*entity.BookOfWeek, error) {
	book, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *bookOfWeekService) Update(ctx context.Context, title, author string) (*entity.BookOfWeek, error) {
	book := &entity.BookOfWeek{
		Title:       title,
		Author:      author,
		LastUpdated: s.now(),
	}
	if err := s.repo.Upsert(ctx, book); err != nil {
		return nil, err
	}

	// Broadcast is best-effort; the update stands even if fan-out fails.
	if err := s.dispatcher.NotifyAll(ctx, entity.NotifBookOfTheWeek, s.senderName, title); err != nil {
		log.Printf("book-of-the-week broadcast failed: %v", err)
	}

	return book, nil
}
