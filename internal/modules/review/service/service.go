package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	notifService "bibliomaniacs.org/bookreviews/internal/modules/notification/service"
	"bibliomaniacs.org/bookreviews/internal/modules/review/dto"
	"bibliomaniacs.org/bookreviews/internal/modules/review/repository"
	userRepo "bibliomaniacs.org/bookreviews/internal/modules/user/repository"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"bibliomaniacs.org/bookreviews/pkg/cache"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewService interface {
	// List runs both filter tiers. Coarse results are memoized; callers
	// mutating reviews must invalidate before the next read (every mutating
	// path in this service already does).
	List(ctx context.Context, filter dto.ReviewFilter) ([]entity.Review, error)
	InvalidateCache(ctx context.Context) error

	Submit(ctx context.Context, input dto.SubmitReviewRequest) (*entity.Review, error)
	ListMine(ctx context.Context, email string) (*dto.UserReviewsResponse, error)
	UpdateOwn(ctx context.Context, email string, id uuid.UUID, input dto.UpdateOwnReviewRequest) error
	DeleteOwn(ctx context.Context, email string, id uuid.UUID) error

	UpdateAdminFields(ctx context.Context, id uuid.UUID, input dto.AdminUpdateRequest) error
	BulkImport(ctx context.Context, input dto.BulkImportRequest) (*dto.BulkImportResponse, error)
}

type reviewService struct {
	repo       repository.ReviewRepository
	users      userRepo.UserRepository
	dispatcher notifService.Dispatcher
	queryCache *cache.QueryCache
	now        func() time.Time
}

func NewReviewService(repo repository.ReviewRepository, users userRepo.UserRepository, dispatcher notifService.Dispatcher, queryCache *cache.QueryCache) ReviewService {
	return &reviewService{
		repo:       repo,
		users:      users,
		dispatcher: dispatcher,
		queryCache: queryCache,
		now:        time.Now,
	}
}

func (s *reviewService) List(ctx context.Context, filter dto.ReviewFilter) ([]entity.Review, error) {
	coarse := filter.Coarse()
	key := s.queryCache.Key(coarse)

	var reviews []entity.Review
	if !s.queryCache.Get(ctx, key, &reviews) {
		var err error
		reviews, err = s.repo.List(ctx, coarse)
		if err != nil {
			return nil, err
		}
		s.queryCache.Set(ctx, key, reviews)
	}

	return secondaryFilter(reviews, filter.Search, filter.DateFrom, filter.DateTo), nil
}

func (s *reviewService) InvalidateCache(ctx context.Context) error {
	return s.queryCache.Invalidate(ctx)
}

func (s *reviewService) Submit(ctx context.Context, input dto.SubmitReviewRequest) (*entity.Review, error) {
	received := s.now()
	review := &entity.Review{
		EntryID:                   makeEntryID(received, input.Email),
		DateReceived:              received,
		FirstName:                 input.FirstName,
		LastName:                  input.LastName,
		Grade:                     input.Grade,
		School:                    input.School,
		Email:                     input.Email,
		PhoneNumber:               input.PhoneNumber,
		BookTitle:                 input.BookTitle,
		Author:                    input.Author,
		RecommendedAudienceGrades: input.RecommendedAudienceGrades,
		Rating:                    input.Rating,
		Review:                    input.Review,
		Anonymous:                 input.Anonymous,
		NotesToAdmin:              input.NotesToAdmin,
		TimeEarned:                entity.DefaultTimeEarned,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.queryCache.Invalidate(ctx); err != nil {
		log.Printf("cache invalidation after submit failed: %v", err)
	}

	// Best-effort; a failed admin notification never fails the submission.
	if admins, err := s.users.AdminIDs(ctx); err != nil {
		log.Printf("admin lookup for new-review notification failed: %v", err)
	} else if len(admins) > 0 {
		if err := s.dispatcher.Notify(ctx, entity.NotifNewReview, review.DisplayName(), admins, review.BookTitle, ""); err != nil {
			log.Printf("new-review notification failed: %v", err)
		}
	}

	return review, nil
}

func (s *reviewService) ListMine(ctx context.Context, email string) (*dto.UserReviewsResponse, error) {
	reviews, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	resp := &dto.UserReviewsResponse{Reviews: []dto.UserReviewItem{}}
	for _, r := range reviews {
		earned := 0.0
		if r.Approved {
			earned = r.TimeEarned
		}
		resp.Reviews = append(resp.Reviews, dto.UserReviewItem{
			ID:            r.ID.String(),
			BookTitle:     r.BookTitle,
			Author:        r.Author,
			Review:        r.Review,
			Rating:        r.Rating,
			Status:        r.Status(),
			DateReceived:  r.DateReceived,
			CommentToUser: r.CommentToUser,
			TimeEarned:    earned,
		})
		resp.TotalHours += earned
	}
	return resp, nil
}

func (s *reviewService) UpdateOwn(ctx context.Context, email string, id uuid.UUID, input dto.UpdateOwnReviewRequest) error {
	review, err := s.ownedPendingReview(ctx, email, id)
	if err != nil {
		return err
	}

	review.BookTitle = input.BookTitle
	review.Author = input.Author
	review.Rating = input.Rating
	review.Review = input.Review
	review.RecommendedAudienceGrades = input.RecommendedAudienceGrades
	review.Anonymous = input.Anonymous

	if err := s.repo.Save(ctx, review); err != nil {
		return err
	}
	return s.queryCache.Invalidate(ctx)
}

func (s *reviewService) DeleteOwn(ctx context.Context, email string, id uuid.UUID) error {
	if _, err := s.ownedPendingReview(ctx, email, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.queryCache.Invalidate(ctx)
}

// ownedPendingReview enforces that the caller owns the review and that it is
// still Pending; edits and deletes are forbidden once processed.
func (s *reviewService) ownedPendingReview(ctx context.Context, email string, id uuid.UUID) (*entity.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if review.Email != email {
		return nil, apperror.ErrForbidden
	}
	if review.Status() != entity.StatusPending {
		return nil, apperror.ErrNotPending
	}
	return review, nil
}

func (s *reviewService) UpdateAdminFields(ctx context.Context, id uuid.UUID, input dto.AdminUpdateRequest) error {
	fields := map[string]any{}
	if input.CommentToUser != nil {
		fields["comment_to_user"] = *input.CommentToUser
	}
	if input.NotesToAdmin != nil {
		fields["notes_to_admin"] = *input.NotesToAdmin
	}
	if input.CallNumber != nil {
		fields["call_number"] = *input.CallNumber
	}
	if input.LabelCreated != nil {
		fields["label_created"] = *input.LabelCreated
	}
	if input.OnVolgistics != nil {
		fields["on_volgistics"] = *input.OnVolgistics
	}
	if len(fields) == 0 && input.RecommendedAudienceGrades == nil {
		return apperror.ErrBadRequest
	}

	if input.RecommendedAudienceGrades != nil {
		review, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		review.RecommendedAudienceGrades = input.RecommendedAudienceGrades
		if err := s.repo.Save(ctx, review); err != nil {
			return err
		}
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
	}

	return s.queryCache.Invalidate(ctx)
}

func (s *reviewService) BulkImport(ctx context.Context, input dto.BulkImportRequest) (*dto.BulkImportResponse, error) {
	resp := &dto.BulkImportResponse{
		Successful:     []dto.ImportResultRow{},
		Failed:         []dto.ImportResultRow{},
		TotalAttempted: len(input.Reviews),
	}

	recalc := map[string]bool{}
	for idx, row := range input.Reviews {
		review := row.Review
		review.ID = uuid.Nil

		if err := applyImportDates(&review, row, s.now); err != nil {
			resp.Failed = append(resp.Failed, dto.ImportResultRow{Index: idx, Error: err.Error()})
			continue
		}
		if review.EntryID == "" {
			review.EntryID = makeEntryID(review.DateReceived, review.Email)
		}
		if review.TimeEarned == 0 {
			review.TimeEarned = entity.DefaultTimeEarned
		}

		if err := s.repo.Create(ctx, &review); err != nil {
			resp.Failed = append(resp.Failed, dto.ImportResultRow{Index: idx, Error: err.Error()})
			continue
		}

		if review.Email != "" && review.Approved {
			recalc[review.Email] = true
		}
		resp.Successful = append(resp.Successful, dto.ImportResultRow{
			Index:     idx,
			ID:        review.ID.String(),
			EntryID:   review.EntryID,
			BookTitle: review.BookTitle,
		})
	}

	for email := range recalc {
		if _, err := s.repo.RecalculateTotalHours(ctx, email); err != nil {
			log.Printf("total-hours recalculation for %s failed: %v", email, err)
		}
	}

	if err := s.queryCache.Invalidate(ctx); err != nil {
		log.Printf("cache invalidation after import failed: %v", err)
	}

	resp.Message = fmt.Sprintf("Imported %d reviews successfully", len(resp.Successful))
	return resp, nil
}

func applyImportDates(review *entity.Review, row dto.ImportReviewRow, now func() time.Time) error {
	if row.DateReceivedRaw != "" {
		received, err := time.Parse(time.RFC3339, row.DateReceivedRaw)
		if err != nil {
			return fmt.Errorf("invalid date_received: %w", err)
		}
		review.DateReceived = received
	} else if review.DateReceived.IsZero() {
		review.DateReceived = now()
	}

	if row.DateProcessedRaw != "" {
		processed, err := time.Parse(time.RFC3339, row.DateProcessedRaw)
		if err != nil {
			return fmt.Errorf("invalid date_processed: %w", err)
		}
		review.DateProcessed = &processed
	}
	return nil
}

// makeEntryID builds the human-readable sequence id:
// unix timestamp + first 8 hex chars of the email hash.
func makeEntryID(received time.Time, email string) string {
	sum := md5.Sum([]byte(email))
	return fmt.Sprintf("%d_%s", received.Unix(), hex.EncodeToString(sum[:])[:8])
}
