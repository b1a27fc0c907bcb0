package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	draftService "bibliomaniacs.org/bookreviews/internal/modules/maildraft/service"
	notifService "bibliomaniacs.org/bookreviews/internal/modules/notification/service"
	"bibliomaniacs.org/bookreviews/internal/modules/review/repository"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"bibliomaniacs.org/bookreviews/pkg/cache"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StagedTransition is a requested status change awaiting confirmation.
// A review has at most one: staging while another is in flight is rejected
// busy rather than queued.
type StagedTransition struct {
	ReviewID uuid.UUID `json:"review_id"`
	Target   string    `json:"target"`
	StagedAt time.Time `json:"staged_at"`

	// Set while a Confirm is executing this stage; guarded by the
	// workflow mutex.
	inflight bool
}

// TransitionResult is returned from a confirmed transition. The draft is
// generated eagerly for Approved/Rejected outcomes and nil for Pending.
type TransitionResult struct {
	Review *entity.Review      `json:"review"`
	Draft  *draftService.Draft `json:"email_draft,omitempty"`
}

// TransitionWorkflow drives the review status state machine with a two-step
// commit: Stage validates and parks the request, Confirm executes it,
// Cancel discards it.
type TransitionWorkflow struct {
	repo       repository.ReviewRepository
	dispatcher notifService.Dispatcher
	drafts     draftService.DraftService
	queryCache *cache.QueryCache
	senderName string
	stageTTL   time.Duration
	now        func() time.Time

	mu     sync.Mutex
	staged map[uuid.UUID]*StagedTransition
}

func NewTransitionWorkflow(
	repo repository.ReviewRepository,
	dispatcher notifService.Dispatcher,
	drafts draftService.DraftService,
	queryCache *cache.QueryCache,
	senderName string,
	stageTTL time.Duration,
) *TransitionWorkflow {
	return &TransitionWorkflow{
		repo:       repo,
		dispatcher: dispatcher,
		drafts:     drafts,
		queryCache: queryCache,
		senderName: senderName,
		stageTTL:   stageTTL,
		now:        time.Now,
		staged:     make(map[uuid.UUID]*StagedTransition),
	}
}

// Stage validates and parks a transition request. A request to the review's
// current derived status is a no-op and rejected before anything is staged.
func (w *TransitionWorkflow) Stage(ctx context.Context, reviewID uuid.UUID, target string) (*StagedTransition, error) {
	switch target {
	case entity.StatusApproved, entity.StatusPending, entity.StatusRejected:
	default:
		return nil, apperror.ErrInvalidInput
	}

	review, err := w.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if review.Status() == target {
		return nil, apperror.ErrNoTransition
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.staged[reviewID]; busy {
		return nil, apperror.ErrTransitionBusy
	}

	stage := &StagedTransition{
		ReviewID: reviewID,
		Target:   target,
		StagedAt: w.now(),
	}
	w.staged[reviewID] = stage

	// The caller gets a copy; the table entry keeps changing under the lock.
	copied := *stage
	return &copied, nil
}

// Confirm executes the staged transition. On store failure nothing is
// applied and the stage is discarded, so the caller can re-stage and
// re-confirm. Notification dispatch and draft generation are best-effort
// side effects that never fail the transition.
func (w *TransitionWorkflow) Confirm(ctx context.Context, reviewID uuid.UUID) (*TransitionResult, error) {
	// Claim the stage under the lock before executing: the entry stays in
	// the table so concurrent Stage calls keep getting rejected busy, and
	// the inflight mark rejects a concurrent Confirm or Cancel. Exactly one
	// caller executes a given stage.
	w.mu.Lock()
	stage, ok := w.staged[reviewID]
	if !ok {
		w.mu.Unlock()
		return nil, apperror.ErrNoStagedAction
	}
	if stage.inflight {
		w.mu.Unlock()
		return nil, apperror.ErrTransitionBusy
	}
	stage.inflight = true
	w.mu.Unlock()

	result, err := w.execute(ctx, stage)

	w.mu.Lock()
	delete(w.staged, reviewID)
	w.mu.Unlock()

	return result, err
}

func (w *TransitionWorkflow) execute(ctx context.Context, stage *StagedTransition) (*TransitionResult, error) {
	review, err := w.repo.FindByID(ctx, stage.ReviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	if review.Status() == stage.Target {
		return nil, apperror.ErrNoTransition
	}

	review.Approved = stage.Target == entity.StatusApproved
	if stage.Target == entity.StatusPending {
		review.DateProcessed = nil
	} else {
		processed := w.now()
		review.DateProcessed = &processed
	}

	if err := w.repo.Save(ctx, review); err != nil {
		return nil, err
	}

	if _, err := w.repo.RecalculateTotalHours(ctx, review.Email); err != nil {
		log.Printf("total-hours recalculation for %s failed: %v", review.Email, err)
	}

	result := &TransitionResult{Review: review}

	// Transitions back to Pending re-open the review quietly: no
	// notification, no draft.
	if stage.Target != entity.StatusPending {
		statusLabel := strings.ToLower(stage.Target)
		if err := w.dispatcher.NotifyByEmail(ctx, entity.NotifReviewStatus, w.senderName, []string{review.Email}, review.BookTitle, statusLabel); err != nil {
			log.Printf("review-status notification for %s failed: %v", review.ID, err)
		}

		draft, err := w.drafts.Generate(review)
		if err != nil {
			log.Printf("draft generation for %s failed: %v", review.ID, err)
		} else {
			result.Draft = draft
		}
	}

	if err := w.queryCache.Invalidate(ctx); err != nil {
		log.Printf("cache invalidation after transition failed: %v", err)
	}

	return result, nil
}

// Cancel discards a staged transition. A stage whose Confirm is already
// executing can no longer be cancelled.
func (w *TransitionWorkflow) Cancel(reviewID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	stage, ok := w.staged[reviewID]
	if !ok {
		return apperror.ErrNoStagedAction
	}
	if stage.inflight {
		return apperror.ErrTransitionBusy
	}
	delete(w.staged, reviewID)
	return nil
}

// SweepStale discards stages older than the TTL and reports how many.
func (w *TransitionWorkflow) SweepStale() int {
	cutoff := w.now().Add(-w.stageTTL)

	w.mu.Lock()
	defer w.mu.Unlock()
	removed := 0
	for id, stage := range w.staged {
		if !stage.inflight && stage.StagedAt.Before(cutoff) {
			delete(w.staged, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs SweepStale on an interval until ctx is done.
func (w *TransitionWorkflow) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := w.SweepStale(); removed > 0 {
					log.Printf("discarded %d stale staged transitions", removed)
				}
			}
		}
	}()
}
