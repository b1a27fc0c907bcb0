package service

import (
	"context"

	"bibliomaniacs.org/bookreviews/internal/entity"
	reviewRepo "bibliomaniacs.org/bookreviews/internal/modules/review/repository"
	"bibliomaniacs.org/bookreviews/pkg/cache"
)

// Stats are the aggregate counters shown on the admin dashboard.
type Stats struct {
	Total          int     `json:"total_reviews"`
	Approved       int     `json:"approved_reviews"`
	Pending        int     `json:"pending_reviews"`
	Rejected       int     `json:"rejected_reviews"`
	VolunteerHours float64 `json:"total_volunteer_hours"`
	EmailsNotSent  int     `json:"emails_not_sent"`
}

// Overview extends Stats with collection-wide figures.
type Overview struct {
	Stats
	UniqueReviewers int     `json:"unique_reviewers"`
	BooksReviewed   int     `json:"books_reviewed"`
	AverageRating   float64 `json:"average_rating"`
}

// Compute derives the counters from a review collection. Pure; no fetch of
// its own.
func Compute(reviews []entity.Review) Stats {
	stats := Stats{Total: len(reviews)}
	for _, r := range reviews {
		switch r.Status() {
		case entity.StatusApproved:
			stats.Approved++
			stats.VolunteerHours += r.TimeEarned
		case entity.StatusPending:
			stats.Pending++
		case entity.StatusRejected:
			stats.Rejected++
		}
		if r.Status() != entity.StatusPending && !r.SentConfirmationEmail {
			stats.EmailsNotSent++
		}
	}
	return stats
}

// Percentage returns part as a percentage of total, 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

type StatService interface {
	GetOverview(ctx context.Context) (*Overview, error)
}

type statService struct {
	reviews    reviewRepo.ReviewRepository
	queryCache *cache.QueryCache
}

func NewStatService(reviews reviewRepo.ReviewRepository, queryCache *cache.QueryCache) StatService {
	return &statService{
		reviews:    reviews,
		queryCache: queryCache,
	}
}

func (s *statService) GetOverview(ctx context.Context) (*Overview, error) {
	key := s.queryCache.Key("review_stats")

	var overview Overview
	if s.queryCache.Get(ctx, key, &overview) {
		return &overview, nil
	}

	reviews, err := s.reviews.All(ctx)
	if err != nil {
		return nil, err
	}

	overview.Stats = Compute(reviews)

	reviewers := map[string]bool{}
	books := map[string]bool{}
	ratingSum := 0.0
	for _, r := range reviews {
		reviewers[r.Email] = true
		books[r.BookTitle] = true
		ratingSum += r.Rating
	}
	overview.UniqueReviewers = len(reviewers)
	overview.BooksReviewed = len(books)
	if len(reviews) > 0 {
		overview.AverageRating = ratingSum / float64(len(reviews))
	}

	s.queryCache.Set(ctx, key, overview)
	return &overview, nil
}
