package entity

import "fmt"

// Notification types understood by the dispatcher.
const (
	NotifNewReview     = "new_review"
	NotifReviewStatus  = "review_status"
	NotifBookOfTheWeek = "book_of_the_week"
)

// Inbox bounds. Writes truncate to InboxCap; reads return at most
// InboxDisplayCap entries, newest first.
const (
	InboxCap        = 8
	InboxDisplayCap = 12
)

// Notification is a bounded, per-user activity-feed entry kept inline on
// the user row. It is a value, not a table.
type Notification struct {
	Type      string `json:"type"`
	Icon      string `json:"icon"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

// RenderNotification builds the icon and pre-rendered message for a
// notification type. Returns false for unknown types.
func RenderNotification(notifType, sender, bookTitle, statusLabel string) (icon, message string, ok bool) {
	switch notifType {
	case NotifNewReview:
		return "document-text-outline",
			fmt.Sprintf("%s submitted a new review of %s", sender, bookTitle),
			true
	case NotifReviewStatus:
		return "checkmark-circle-outline",
			fmt.Sprintf("Your review of %s was %s by %s", bookTitle, statusLabel, sender),
			true
	case NotifBookOfTheWeek:
		return "sparkles-outline",
			"Book of the Week has been updated, check it out!",
			true
	}
	return "", "", false
}
