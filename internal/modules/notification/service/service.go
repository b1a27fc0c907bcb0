package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/modules/notification/repository"
	userRepo "bibliomaniacs.org/bookreviews/internal/modules/user/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dispatcher fans notifications out to recipient inboxes. Delivery is
// best-effort: a failed or unresolvable recipient is logged and skipped,
// never surfaced to the action that triggered the dispatch.
type Dispatcher interface {
	Notify(ctx context.Context, notifType, sender string, recipients []uuid.UUID, bookTitle, statusLabel string) error
	NotifyByEmail(ctx context.Context, notifType, sender string, emails []string, bookTitle, statusLabel string) error
	NotifyAll(ctx context.Context, notifType, sender, bookTitle string) error

	Inbox(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error)
	ClearType(ctx context.Context, userID uuid.UUID, notifType string) error
}

type dispatcher struct {
	inboxes     repository.InboxRepository
	users       userRepo.UserRepository
	redisClient *redis.Client
	now         func() time.Time
}

func NewDispatcher(inboxes repository.InboxRepository, users userRepo.UserRepository, redisClient *redis.Client) Dispatcher {
	return &dispatcher{
		inboxes:     inboxes,
		users:       users,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (d *dispatcher) Notify(ctx context.Context, notifType, sender string, recipients []uuid.UUID, bookTitle, statusLabel string) error {
	icon, message, ok := entity.RenderNotification(notifType, sender, bookTitle, statusLabel)
	if !ok {
		return fmt.Errorf("invalid notification type: %s", notifType)
	}

	notif := entity.Notification{
		Type:      notifType,
		Icon:      icon,
		Message:   message,
		CreatedAt: d.now().UnixMilli(),
	}

	// Each recipient is independent; one failure must not block the rest.
	for _, userID := range recipients {
		if err := d.deliver(ctx, userID, notif); err != nil {
			log.Printf("notification delivery to %s skipped: %v", userID, err)
		}
	}

	return nil
}

func (d *dispatcher) NotifyByEmail(ctx context.Context, notifType, sender string, emails []string, bookTitle, statusLabel string) error {
	recipients := make([]uuid.UUID, 0, len(emails))
	for _, email := range emails {
		user, err := d.users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("no account for %s, notification skipped", email)
				continue
			}
			log.Printf("uid lookup for %s failed: %v", email, err)
			continue
		}
		recipients = append(recipients, user.ID)
	}

	if len(recipients) == 0 {
		return nil
	}
	return d.Notify(ctx, notifType, sender, recipients, bookTitle, statusLabel)
}

func (d *dispatcher) NotifyAll(ctx context.Context, notifType, sender, bookTitle string) error {
	ids, err := d.users.AllIDs(ctx)
	if err != nil {
		return err
	}
	return d.Notify(ctx, notifType, sender, ids, bookTitle, "")
}

// deliver is a read-modify-write against the recipient's current inbox:
// prepend, truncate to the cap, persist, then publish for live listeners.
func (d *dispatcher) deliver(ctx context.Context, userID uuid.UUID, notif entity.Notification) error {
	inbox, err := d.inboxes.GetInbox(ctx, userID)
	if err != nil {
		return err
	}

	inbox = append([]entity.Notification{notif}, inbox...)
	if len(inbox) > entity.InboxCap {
		inbox = inbox[:entity.InboxCap]
	}

	if err := d.inboxes.SaveInbox(ctx, userID, inbox); err != nil {
		return err
	}

	if d.redisClient != nil {
		channel := fmt.Sprintf("user_notifications:%s", userID.String())
		if payload, err := json.Marshal(notif); err == nil {
			d.redisClient.Publish(ctx, channel, payload)
		}
	}

	return nil
}

func (d *dispatcher) Inbox(ctx context.Context, userID uuid.UUID) ([]entity.Notification, error) {
	inbox, err := d.inboxes.GetInbox(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(inbox, func(i, j int) bool {
		return inbox[i].CreatedAt > inbox[j].CreatedAt
	})
	if len(inbox) > entity.InboxDisplayCap {
		inbox = inbox[:entity.InboxDisplayCap]
	}
	return inbox, nil
}

func (d *dispatcher) ClearType(ctx context.Context, userID uuid.UUID, notifType string) error {
	inbox, err := d.inboxes.GetInbox(ctx, userID)
	if err != nil {
		return err
	}

	kept := inbox[:0]
	for _, notif := range inbox {
		if notif.Type != notifType {
			kept = append(kept, notif)
		}
	}
	if len(kept) == len(inbox) {
		return nil
	}
	return d.inboxes.SaveInbox(ctx, userID, kept)
}
