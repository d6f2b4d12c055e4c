package store

import (
	"mediashare/pkg/domain"
)

// Store defines persistence operations for users, media, and comments.
type Store interface {
	// users
	GetUserByID(id int64) (domain.User, bool, error)

	// media
	ListMedia() ([]domain.MediaRecord, error)
	GetMedia(id int64) (domain.MediaRecord, bool, error)
	InsertMedia(m domain.MediaRecord) (domain.MediaRecord, error)

	// comments
	InsertComment(c domain.Comment) (domain.Comment, error)
}
