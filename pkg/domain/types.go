package domain

import "time"

type UserRole string

const (
	RoleCreator UserRole = "Creator"
	RoleViewer  UserRole = "Viewer"
)

type User struct {
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}

// MediaRecord is one uploaded media item joined with its uploader's email.
// Records are immutable after upload; there is no edit or delete operation.
type MediaRecord struct {
	MediaID      int64     `json:"mediaId"`
	UserID       int64     `json:"userId"`
	Title        string    `json:"title"`
	Caption      string    `json:"caption"`
	Location     string    `json:"location"`
	People       string    `json:"people"`
	BlobURL      string    `json:"blobUrl"`
	UploadedAt   time.Time `json:"uploadedAt"`
	CreatorEmail string    `json:"creatorEmail"`
}

type Comment struct {
	CommentID   int64     `json:"commentId"`
	MediaID     int64     `json:"mediaId"`
	UserID      int64     `json:"userId"`
	CommentText string    `json:"commentText"`
	CreatedAt   time.Time `json:"createdAt"`
}
