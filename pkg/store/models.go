package store

import "time"

// GORM models used for persistence.
type UserModel struct {
	UserID int64  `gorm:"primaryKey;autoIncrement"`
	Email  string `gorm:"uniqueIndex;not null"`
	Role   string `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type MediaModel struct {
	MediaID    int64     `gorm:"primaryKey;autoIncrement"`
	UserID     int64     `gorm:"not null;index"`
	Title      string `gorm:"not null"`
	Caption    string
	Location   string
	People     string
	BlobURL    string    `gorm:"not null"`
	UploadedAt time.Time `gorm:"not null"`
}

func (MediaModel) TableName() string { return "media" }

type CommentModel struct {
	CommentID   int64     `gorm:"primaryKey;autoIncrement"`
	MediaID     int64     `gorm:"not null;index"`
	UserID      int64     `gorm:"not null"`
	CommentText string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (CommentModel) TableName() string { return "comments" }
