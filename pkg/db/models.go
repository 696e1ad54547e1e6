package db

import (
	"time"

	"gorm.io/datatypes"
)

// Task kinds. "exact" is stored for data compatibility but scheduling
// treats both kinds the same.
const (
	TaskKindNormal = "normal"
	TaskKindExact  = "exact"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time
	Language  string `gorm:"not null;default:en"`
	Timezone  string `gorm:"not null;default:UTC"`
	// LastLogin is nil until the user follows a login link for the
	// first time; a nil value marks an abandoned registration.
	LastLogin *time.Time
	// LastLoginEmail anchors the login-email rate limiter. Never moves
	// backwards.
	LastLoginEmail time.Time `gorm:"not null"`
}

type Task struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"index;not null"`
	User         User `gorm:"constraint:OnDelete:CASCADE"`
	Kind         string
	Name         string `gorm:"not null"`
	Description  string
	CreatedAt    time.Time
	IntervalDays int       `gorm:"not null"`
	Due          time.Time `gorm:"type:date;not null;index"`
	// Reminded holds the due date a reminder was last sent for. It
	// suppresses further reminders until Due advances past it.
	Reminded *time.Time `gorm:"type:date"`
}

// TaskDone is one completion event. Append-only.
type TaskDone struct {
	ID         uint `gorm:"primaryKey"`
	TaskID     uint `gorm:"index;not null"`
	Task       Task `gorm:"constraint:OnDelete:CASCADE"`
	Done       time.Time `gorm:"type:date;not null"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

type Session struct {
	Token     string `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Data      datatypes.JSONMap
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null;index"`
}
