package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"bibliomaniacs.org/bookreviews/internal/entity"
	reviewRepo "bibliomaniacs.org/bookreviews/internal/modules/review/repository"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"bibliomaniacs.org/bookreviews/pkg/cache"
	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Draft is a generated, unsent status email. Drafts are stateless and
// regenerable; nothing is persisted until the admin marks the email sent.
type Draft struct {
	To           string `json:"to"`
	Subject      string `json:"subject"`
	ReviewerName string `json:"reviewer_name"`
	BookTitle    string `json:"book_title"`
	HTMLBody     string `json:"html_body"`
	TextBody     string `json:"text_body"`
	Status       string `json:"status"`
}

type DraftService interface {
	// Generate builds a draft for a processed (approved or rejected)
	// review. Pending reviews have no outcome to announce.
	Generate(review *entity.Review) (*Draft, error)
	GenerateByID(ctx context.Context, reviewID uuid.UUID) (*Draft, error)

	// MarkSent records that the admin sent the email by hand. There is no
	// SMTP integration; delivery is confirmed manually, by design.
	MarkSent(ctx context.Context, reviewID uuid.UUID) error
}

type draftService struct {
	reviews    reviewRepo.ReviewRepository
	queryCache *cache.QueryCache
	senderName string
}

func NewDraftService(reviews reviewRepo.ReviewRepository, queryCache *cache.QueryCache, senderName string) DraftService {
	return &draftService{
		reviews:    reviews,
		queryCache: queryCache,
		senderName: senderName,
	}
}

func (s *draftService) Generate(review *entity.Review) (*Draft, error) {
	status := review.Status()
	if status == entity.StatusPending {
		return nil, apperror.ErrBadRequest
	}

	draft := &Draft{
		To:           review.Email,
		ReviewerName: review.ReviewerName(),
		BookTitle:    review.BookTitle,
		Status:       strings.ToLower(status),
	}

	if status == entity.StatusApproved {
		draft.Subject = fmt.Sprintf("Book Review Approved: %s", review.BookTitle)
		draft.HTMLBody = approvedHTML(review, s.senderName)
		draft.TextBody = approvedText(review, s.senderName)
	} else {
		draft.Subject = fmt.Sprintf("Book Review Status Update: %s", review.BookTitle)
		draft.HTMLBody = rejectedHTML(review, s.senderName)
		draft.TextBody = rejectedText(review, s.senderName)
	}

	return draft, nil
}

func (s *draftService) GenerateByID(ctx context.Context, reviewID uuid.UUID) (*Draft, error) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return s.Generate(review)
}

func (s *draftService) MarkSent(ctx context.Context, reviewID uuid.UUID) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	if review.Status() == entity.StatusPending {
		return apperror.ErrBadRequest
	}

	err = s.reviews.UpdateFields(ctx, reviewID, map[string]any{"sent_confirmation_email": true})
	if err != nil {
		return err
	}
	return s.queryCache.Invalidate(ctx)
}

// MIME renders the draft as a complete RFC 822 message with the plain-text
// body and an HTML alternative, ready to paste into any mail client.
func (d *Draft) MIME(from string) ([]byte, error) {
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", d.To)
	m.SetHeader("Subject", d.Subject)
	m.SetBody("text/plain", d.TextBody)
	m.AddAlternative("text/html", d.HTMLBody)

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
