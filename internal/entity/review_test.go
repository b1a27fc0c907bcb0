package entity

import (
	"testing"
	"time"
)

func TestReviewStatus(t *testing.T) {
	processed := time.Now()

	tests := []struct {
		name          string
		approved      bool
		dateProcessed *time.Time
		want          string
	}{
		{
			name:     "approved",
			approved: true,
			want:     StatusApproved,
		},
		{
			name:          "approved with processed date",
			approved:      true,
			dateProcessed: &processed,
			want:          StatusApproved,
		},
		{
			name:          "rejected",
			approved:      false,
			dateProcessed: &processed,
			want:          StatusRejected,
		},
		{
			name:     "pending",
			approved: false,
			want:     StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Review{Approved: tt.approved, DateProcessed: tt.dateProcessed}
			if got := r.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReviewerName(t *testing.T) {
	r := Review{FirstName: "Ada", LastName: "Lovelace"}
	if got := r.ReviewerName(); got != "Ada Lovelace" {
		t.Errorf("ReviewerName() = %q, want %q", got, "Ada Lovelace")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		anonymous string
		want      string
	}{
		{"no preference", AnonymityNone, "Ada Lovelace"},
		{"first name only", AnonymityFirstName, "Ada"},
		{"fully anonymous", AnonymityFull, "An anonymous reviewer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Review{FirstName: "Ada", LastName: "Lovelace", Anonymous: tt.anonymous}
			if got := r.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderNotification(t *testing.T) {
	tests := []struct {
		name        string
		notifType   string
		sender      string
		book        string
		status      string
		wantIcon    string
		wantMessage string
		wantOK      bool
	}{
		{
			name:        "new review",
			notifType:   NotifNewReview,
			sender:      "Ada Lovelace",
			book:        "1984",
			wantIcon:    "document-text-outline",
			wantMessage: "Ada Lovelace submitted a new review of 1984",
			wantOK:      true,
		},
		{
			name:        "review status",
			notifType:   NotifReviewStatus,
			sender:      "Review Team",
			book:        "Dune",
			status:      "approved",
			wantIcon:    "checkmark-circle-outline",
			wantMessage: "Your review of Dune was approved by Review Team",
			wantOK:      true,
		},
		{
			name:        "book of the week",
			notifType:   NotifBookOfTheWeek,
			wantIcon:    "sparkles-outline",
			wantMessage: "Book of the Week has been updated, check it out!",
			wantOK:      true,
		},
		{
			name:      "unknown type",
			notifType: "unknown",
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			icon, message, ok := RenderNotification(tt.notifType, tt.sender, tt.book, tt.status)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if icon != tt.wantIcon {
				t.Errorf("icon = %q, want %q", icon, tt.wantIcon)
			}
			if message != tt.wantMessage {
				t.Errorf("message = %q, want %q", message, tt.wantMessage)
			}
		})
	}
}
