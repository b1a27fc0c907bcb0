package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review status labels derived from (approved, date_processed).
const (
	StatusApproved = "Approved"
	StatusPending  = "Pending"
	StatusRejected = "Rejected"
)

// Anonymity choices a submitter can make for the published review.
const (
	AnonymityFull      = "anonymous"
	AnonymityFirstName = "first name only"
	AnonymityNone      = ""
)

// DefaultTimeEarned is the volunteer-hour credit granted per approved review.
const DefaultTimeEarned = 0.5

type Review struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EntryID string    `gorm:"type:varchar(64);uniqueIndex" json:"entry_id"`

	DateReceived  time.Time  `json:"date_received"`
	DateProcessed *time.Time `json:"date_processed"`

	// Reviewer info
	FirstName   string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string `gorm:"type:varchar(100);not null" json:"last_name"`
	Grade       int    `json:"grade"`
	School      string `gorm:"type:varchar(255)" json:"school"`
	Email       string `gorm:"type:varchar(255);not null;index" json:"email"`
	PhoneNumber string `gorm:"type:varchar(32)" json:"phone_number"`

	// Book information
	BookTitle                 string   `gorm:"type:varchar(255);not null" json:"book_title"`
	Author                    string   `gorm:"type:varchar(255);not null" json:"author"`
	RecommendedAudienceGrades []string `gorm:"serializer:json" json:"recommended_audience_grade"`

	// Review content
	Rating    float64 `json:"rating"`
	Review    string  `gorm:"type:text" json:"review"`
	Anonymous string  `gorm:"type:varchar(32)" json:"anonymous"`

	// Admin processing
	Approved              bool   `gorm:"default:false" json:"approved"`
	CommentToUser         string `gorm:"type:text" json:"comment_to_user"`
	NotesToAdmin          string `gorm:"type:text" json:"notes_to_admin"`
	SentConfirmationEmail bool   `gorm:"default:false" json:"sent_confirmation_email"`

	// Volunteer tracking
	TimeEarned   float64 `gorm:"default:0.5" json:"time_earned"`
	TotalHours   float64 `gorm:"default:0" json:"total_hours"`
	OnVolgistics bool    `gorm:"default:false" json:"on_volgistics"`

	// Library management
	CallNumber   string `gorm:"type:varchar(64)" json:"call_number"`
	LabelCreated bool   `gorm:"default:false" json:"label_created"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Status derives the lifecycle status. This is the only place the
// (approved, date_processed) pair is interpreted; no caller re-derives it.
func (r *Review) Status() string {
	if r.Approved {
		return StatusApproved
	}
	if r.DateProcessed != nil {
		return StatusRejected
	}
	return StatusPending
}

// ReviewerName is the submitter's full name, used where the review is
// addressed to the submitter themselves (drafts, own-review views).
func (r *Review) ReviewerName() string {
	return r.FirstName + " " + r.LastName
}

// DisplayName is the name shown to everyone else, honoring the submitter's
// anonymity preference.
func (r *Review) DisplayName() string {
	switch r.Anonymous {
	case AnonymityFull:
		return "An anonymous reviewer"
	case AnonymityFirstName:
		return r.FirstName
	}
	return r.ReviewerName()
}
