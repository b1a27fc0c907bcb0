package dto

import (
	"time"

	"bibliomaniacs.org/bookreviews/internal/entity"
)

type SubmitReviewRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Grade       int    `json:"grade" binding:"required"`
	School      string `json:"school"`
	PhoneNumber string `json:"phone_number"`

	BookTitle                 string   `json:"book_title" binding:"required"`
	Author                    string   `json:"author" binding:"required"`
	Rating                    float64  `json:"rating" binding:"required,min=1,max=5"`
	Review                    string   `json:"review" binding:"required"`
	RecommendedAudienceGrades []string `json:"recommended_audience_grade"`
	Anonymous                 string   `json:"anonymous" binding:"omitempty,oneof=anonymous 'first name only'"`

	NotesToAdmin string `json:"notes_to_admin"`
}

type UpdateOwnReviewRequest struct {
	BookTitle                 string   `json:"book_title" binding:"required"`
	Author                    string   `json:"author" binding:"required"`
	Rating                    float64  `json:"rating" binding:"required,min=1,max=5"`
	Review                    string   `json:"review" binding:"required"`
	RecommendedAudienceGrades []string `json:"recommended_audience_grade"`
	Anonymous                 string   `json:"anonymous" binding:"omitempty,oneof=anonymous 'first name only'"`
}

// ReviewFilter carries both filter tiers: status/grade/school/email_sent and
// the sort key are applied in SQL, search and the date bounds in memory.
type ReviewFilter struct {
	Status    string `form:"status" binding:"omitempty,oneof=All Approved Pending Rejected"`
	Grade     *int   `form:"grade"`
	School    string `form:"school"`
	EmailSent string `form:"email_sent" binding:"omitempty,oneof=All Sent NotSent"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=date_received rating book_title"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
}

// CoarseKey is the server-side portion of the filter, used as the cache key
// so one memoized result serves every search refinement over it.
type CoarseKey struct {
	Status    string `json:"status"`
	Grade     *int   `json:"grade"`
	School    string `json:"school"`
	EmailSent string `json:"email_sent"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

func (f ReviewFilter) Coarse() CoarseKey {
	return CoarseKey{
		Status:    f.Status,
		Grade:     f.Grade,
		School:    f.School,
		EmailSent: f.EmailSent,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
	}
}

type TransitionRequest struct {
	Target string `json:"target" binding:"required,oneof=Approved Pending Rejected"`
}

type AdminUpdateRequest struct {
	CommentToUser             *string  `json:"comment_to_user"`
	NotesToAdmin              *string  `json:"notes_to_admin"`
	CallNumber                *string  `json:"call_number"`
	LabelCreated              *bool    `json:"label_created"`
	OnVolgistics              *bool    `json:"on_volgistics"`
	RecommendedAudienceGrades []string `json:"recommended_audience_grade"`
}

type UserReviewItem struct {
	ID            string    `json:"id"`
	BookTitle     string    `json:"book_title"`
	Author        string    `json:"author"`
	Review        string    `json:"review"`
	Rating        float64   `json:"rating"`
	Status        string    `json:"status"`
	DateReceived  time.Time `json:"date_received"`
	CommentToUser string    `json:"comment_to_user"`
	TimeEarned    float64   `json:"time_earned"`
}

type UserReviewsResponse struct {
	Reviews    []UserReviewItem `json:"reviews"`
	TotalHours float64          `json:"total_hours"`
}

type ImportReviewRow struct {
	entity.Review
	DateReceivedRaw  string `json:"date_received"`
	DateProcessedRaw string `json:"date_processed"`
}

type ImportResultRow struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	EntryID   string `json:"entry_id,omitempty"`
	BookTitle string `json:"book_title,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BulkImportRequest struct {
	Reviews []ImportReviewRow `json:"reviews" binding:"required,min=1"`
}

type BulkImportResponse struct {
	Message        string            `json:"message"`
	Successful     []ImportResultRow `json:"successful"`
	Failed         []ImportResultRow `json:"failed"`
	TotalAttempted int               `json:"total_attempted"`
}
