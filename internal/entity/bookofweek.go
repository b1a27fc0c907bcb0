package entity

import "time"

// BookOfWeek is a singleton record; only one row exists.
type BookOfWeek struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Author      string    `gorm:"type:varchar(255);not null" json:"author"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// AdminEmail is one entry of the admin allowlist. Users whose email appears
// here are promoted to the admin role on their next role resolution.
type AdminEmail struct {
	Email     string    `gorm:"type:varchar(255);primaryKey" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
