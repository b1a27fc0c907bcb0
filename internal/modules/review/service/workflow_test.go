package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	maildraft "bibliomaniacs.org/bookreviews/internal/modules/maildraft/service"
	"bibliomaniacs.org/bookreviews/internal/modules/review/dto"
	"bibliomaniacs.org/bookreviews/pkg/apperror"
	"bibliomaniacs.org/bookreviews/pkg/cache"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeReviewRepo struct {
	reviews   map[uuid.UUID]entity.Review
	failSave  bool
	saveCount int

	// When set, Save signals saveStarted and then waits on saveRelease,
	// holding the write open so tests can interleave concurrent calls.
	saveStarted chan struct{}
	saveRelease chan struct{}
}

func newFakeReviewRepo(reviews ...entity.Review) *fakeReviewRepo {
	repo := &fakeReviewRepo{reviews: map[uuid.UUID]entity.Review{}}
	for _, r := range reviews {
		repo.reviews[r.ID] = r
	}
	return repo
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := r
	return &copied, nil
}

func (f *fakeReviewRepo) Save(ctx context.Context, review *entity.Review) error {
	if f.failSave {
		return errors.New("store unavailable")
	}
	if f.saveStarted != nil {
		f.saveStarted <- struct{}{}
	}
	if f.saveRelease != nil {
		<-f.saveRelease
	}
	f.saveCount++
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeReviewRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	r, ok := f.reviews[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if sent, ok := fields["sent_confirmation_email"].(bool); ok {
		r.SentConfirmationEmail = sent
	}
	f.reviews[id] = r
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) List(ctx context.Context, key dto.CoarseKey) ([]entity.Review, error) {
	out := []entity.Review{}
	for _, r := range f.reviews {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReviewRepo) FindByEmail(ctx context.Context, email string) ([]entity.Review, error) {
	out := []entity.Review{}
	for _, r := range f.reviews {
		if r.Email == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) All(ctx context.Context) ([]entity.Review, error) {
	return f.List(ctx, dto.CoarseKey{})
}

func (f *fakeReviewRepo) RecalculateTotalHours(ctx context.Context, email string) (float64, error) {
	var total float64
	for _, r := range f.reviews {
		if r.Email == email && r.Approved {
			total += r.TimeEarned
		}
	}
	for id, r := range f.reviews {
		if r.Email == email {
			r.TotalHours = total
			f.reviews[id] = r
		}
	}
	return total, nil
}

type notifyCall struct {
	notifType string
	emails    []string
	status    string
}

type fakeDispatcher struct {
	calls []notifyCall
}

func (f *fakeDispatcher) Notify(ctx context.Context, notifType, sender string, recipients []uuid.UUID, bookTitle, statusLabel string) error {
	f.calls = append(f.calls, notifyCall{notifType: notifType, status: statusLabel})
	return nil
}

func (f *fakeDispatcher) NotifyByEmail(ctx context.Context, notifType, sender string, emails []string, bookTitle, statusLabel string) error {
	f.calls = append(f.calls, notifyCall{notifType: notifType, emails: emails, status: statusLabel})
	return nil
}

func (f *fakeDispatcher) NotifyAll(ctx context.Context, notifType, sender, bookTitle string) error {
	f.calls = append(f.calls, notifyCall{notifType: notifType})
	return nil
}

func (f *fakeDispatcher) Inbox(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	return nil, nil
}

func (f *fakeDispatcher) ClearType(ctx context.Context, userID uuid.UUID, notifType string) error {
	return nil
}

func pendingReview() entity.Review {
	return entity.Review{
		ID:           uuid.New(),
		EntryID:      "1700000000_abcd1234",
		DateReceived: time.Now(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		BookTitle:    "1984",
		Author:       "George Orwell",
		Rating:       5,
		Review:       "Bleak and brilliant.",
		TimeEarned:   entity.DefaultTimeEarned,
	}
}

func newTestWorkflow(repo *fakeReviewRepo, dispatcher *fakeDispatcher) *TransitionWorkflow {
	queryCache := cache.NewQueryCache(nil, "reviews", time.Minute)
	drafts := maildraft.NewDraftService(repo, queryCache, "Review Team")
	return NewTransitionWorkflow(repo, dispatcher, drafts, queryCache, "Review Team", 10*time.Minute)
}

func TestStageRejectsNoOpTransition(t *testing.T) {
	review := pendingReview()
	workflow := newTestWorkflow(newFakeReviewRepo(review), &fakeDispatcher{})

	_, err := workflow.Stage(context.Background(), review.ID, entity.StatusPending)
	if !errors.Is(err, apperror.ErrNoTransition) {
		t.Fatalf("err = %v, want ErrNoTransition", err)
	}
}

func TestStageRejectsUnknownTarget(t *testing.T) {
	review := pendingReview()
	workflow := newTestWorkflow(newFakeReviewRepo(review), &fakeDispatcher{})

	_, err := workflow.Stage(context.Background(), review.ID, "Published")
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestStageWhileStagedIsBusy(t *testing.T) {
	review := pendingReview()
	workflow := newTestWorkflow(newFakeReviewRepo(review), &fakeDispatcher{})
	ctx := context.Background()

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("first stage failed: %v", err)
	}
	if _, err := workflow.Stage(ctx, review.ID, entity.StatusRejected); !errors.Is(err, apperror.ErrTransitionBusy) {
		t.Fatalf("err = %v, want ErrTransitionBusy", err)
	}
}

func TestConfirmWithoutStage(t *testing.T) {
	review := pendingReview()
	workflow := newTestWorkflow(newFakeReviewRepo(review), &fakeDispatcher{})

	_, err := workflow.Confirm(context.Background(), review.ID)
	if !errors.Is(err, apperror.ErrNoStagedAction) {
		t.Fatalf("err = %v, want ErrNoStagedAction", err)
	}
}

func TestConfirmApproval(t *testing.T) {
	review := pendingReview()
	repo := newFakeReviewRepo(review)
	dispatcher := &fakeDispatcher{}
	workflow := newTestWorkflow(repo, dispatcher)
	ctx := context.Background()

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	result, err := workflow.Confirm(ctx, review.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if got := result.Review.Status(); got != entity.StatusApproved {
		t.Errorf("status = %q, want Approved", got)
	}
	if result.Review.DateProcessed == nil {
		t.Error("DateProcessed not set")
	}
	if result.Draft == nil {
		t.Fatal("expected an email draft for an approval")
	}
	if result.Draft.Status != "approved" {
		t.Errorf("draft status = %q, want approved", result.Draft.Status)
	}

	if len(dispatcher.calls) != 1 {
		t.Fatalf("notification calls = %d, want 1", len(dispatcher.calls))
	}
	call := dispatcher.calls[0]
	if call.notifType != entity.NotifReviewStatus || call.status != "approved" {
		t.Errorf("unexpected notification: %+v", call)
	}
	if len(call.emails) != 1 || call.emails[0] != review.Email {
		t.Errorf("notification recipients = %v, want [%s]", call.emails, review.Email)
	}

	stored, _ := repo.FindByID(ctx, review.ID)
	if stored.TotalHours != entity.DefaultTimeEarned {
		t.Errorf("TotalHours = %v, want %v", stored.TotalHours, entity.DefaultTimeEarned)
	}
}

func TestConfirmReopenIsQuiet(t *testing.T) {
	review := pendingReview()
	repo := newFakeReviewRepo(review)
	dispatcher := &fakeDispatcher{}
	workflow := newTestWorkflow(repo, dispatcher)
	ctx := context.Background()

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("stage approve failed: %v", err)
	}
	if _, err := workflow.Confirm(ctx, review.ID); err != nil {
		t.Fatalf("confirm approve failed: %v", err)
	}

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusPending); err != nil {
		t.Fatalf("stage reopen failed: %v", err)
	}
	result, err := workflow.Confirm(ctx, review.ID)
	if err != nil {
		t.Fatalf("confirm reopen failed: %v", err)
	}

	if got := result.Review.Status(); got != entity.StatusPending {
		t.Errorf("status = %q, want Pending", got)
	}
	if result.Review.DateProcessed != nil {
		t.Error("DateProcessed should be cleared on reopen")
	}
	if result.Draft != nil {
		t.Error("reopen must not produce a draft")
	}
	// Only the approval notified; the reopen is silent.
	if len(dispatcher.calls) != 1 {
		t.Errorf("notification calls = %d, want 1", len(dispatcher.calls))
	}
}

func TestConfirmFailureLeavesStateAndAllowsRetry(t *testing.T) {
	review := pendingReview()
	repo := newFakeReviewRepo(review)
	workflow := newTestWorkflow(repo, &fakeDispatcher{})
	ctx := context.Background()

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	repo.failSave = true
	if _, err := workflow.Confirm(ctx, review.ID); err == nil {
		t.Fatal("expected confirm to fail")
	}

	stored, _ := repo.FindByID(ctx, review.ID)
	if stored.Status() != entity.StatusPending {
		t.Errorf("status after failed confirm = %q, want Pending", stored.Status())
	}

	// The failed stage was discarded; a fresh stage and confirm succeed.
	repo.failSave = false
	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("re-stage failed: %v", err)
	}
	if _, err := workflow.Confirm(ctx, review.ID); err != nil {
		t.Fatalf("re-confirm failed: %v", err)
	}

	stored, _ = repo.FindByID(ctx, review.ID)
	if stored.Status() != entity.StatusApproved {
		t.Errorf("status after retry = %q, want Approved", stored.Status())
	}
}

func TestConcurrentConfirmExecutesOnce(t *testing.T) {
	review := pendingReview()
	repo := newFakeReviewRepo(review)
	repo.saveStarted = make(chan struct{}, 1)
	repo.saveRelease = make(chan struct{})
	dispatcher := &fakeDispatcher{}
	workflow := newTestWorkflow(repo, dispatcher)
	ctx := context.Background()

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := workflow.Confirm(ctx, review.ID)
		firstDone <- err
	}()

	// Hold the first Confirm open inside the store write, then race a second
	// Confirm and a Cancel against it: both must be rejected busy.
	<-repo.saveStarted
	if _, err := workflow.Confirm(ctx, review.ID); !errors.Is(err, apperror.ErrTransitionBusy) {
		t.Errorf("second confirm err = %v, want ErrTransitionBusy", err)
	}
	if err := workflow.Cancel(review.ID); !errors.Is(err, apperror.ErrTransitionBusy) {
		t.Errorf("cancel during confirm err = %v, want ErrTransitionBusy", err)
	}

	close(repo.saveRelease)
	if err := <-firstDone; err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}

	if repo.saveCount != 1 {
		t.Errorf("saves = %d, want 1", repo.saveCount)
	}
	if len(dispatcher.calls) != 1 {
		t.Errorf("notification calls = %d, want 1", len(dispatcher.calls))
	}
}

func TestCancelDiscardsStage(t *testing.T) {
	review := pendingReview()
	workflow := newTestWorkflow(newFakeReviewRepo(review), &fakeDispatcher{})
	ctx := context.Background()

	if _, err := workflow.Stage(ctx, review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("stage failed: %v", err)
	}
	if err := workflow.Cancel(review.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := workflow.Cancel(review.ID); !errors.Is(err, apperror.ErrNoStagedAction) {
		t.Fatalf("second cancel err = %v, want ErrNoStagedAction", err)
	}

	// Cancelled means stageable again.
	if _, err := workflow.Stage(ctx, review.ID, entity.StatusRejected); err != nil {
		t.Fatalf("stage after cancel failed: %v", err)
	}
}

func TestSweepStale(t *testing.T) {
	review := pendingReview()
	workflow := newTestWorkflow(newFakeReviewRepo(review), &fakeDispatcher{})

	if _, err := workflow.Stage(context.Background(), review.ID, entity.StatusApproved); err != nil {
		t.Fatalf("stage failed: %v", err)
	}

	if removed := workflow.SweepStale(); removed != 0 {
		t.Errorf("fresh stage swept: removed = %d", removed)
	}

	workflow.now = func() time.Time { return time.Now().Add(time.Hour) }
	if removed := workflow.SweepStale(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
