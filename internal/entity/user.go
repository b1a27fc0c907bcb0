package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles resolved by the access gate. Unauthenticated callers are treated as
// RoleNoAccount; it is never stored.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleNoAccount = "no account"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(32);default:user" json:"role"`

	// Bounded notification inbox, newest first.
	Notifications []Notification `gorm:"serializer:json" json:"notifications"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
