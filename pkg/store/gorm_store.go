package store

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mediashare/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &MediaModel{}, &CommentModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id int64) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "user_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// mediaRow is the projection of the media/users join.
type mediaRow struct {
	MediaID      int64
	UserID       int64
	Title        string
	Caption      string
	Location     string
	People       string
	BlobURL      string
	UploadedAt   time.Time
	CreatorEmail string
}

// ListMedia returns all media joined with the uploader's email. No explicit
// order is imposed; rows come back in whatever order the database yields them.
func (s *GormStore) ListMedia() ([]domain.MediaRecord, error) {
	var rows []mediaRow
	if err := s.db.Model(&MediaModel{}).
		Select("media.*, users.email AS creator_email").
		Joins("JOIN users ON users.user_id = media.user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]domain.MediaRecord, 0, len(rows))
	for _, row := range rows {
		res = append(res, mediaFromRow(row))
	}
	return res, nil
}

// GetMedia returns a single joined media record by ID.
func (s *GormStore) GetMedia(id int64) (domain.MediaRecord, bool, error) {
	var row mediaRow
	err := s.db.Model(&MediaModel{}).
		Select("media.*, users.email AS creator_email").
		Joins("JOIN users ON users.user_id = media.user_id").
		Where("media.media_id = ?", id).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.MediaRecord{}, false, nil
		}
		return domain.MediaRecord{}, false, err
	}
	return mediaFromRow(row), true, nil
}

// InsertMedia stores a new media row. The ID and upload timestamp are assigned
// here, not by the caller.
func (s *GormStore) InsertMedia(m domain.MediaRecord) (domain.MediaRecord, error) {
	model := MediaModel{
		UserID:     m.UserID,
		Title:      m.Title,
		Caption:    m.Caption,
		Location:   m.Location,
		People:     m.People,
		BlobURL:    m.BlobURL,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.MediaRecord{}, err
	}
	m.MediaID = model.MediaID
	m.UploadedAt = model.UploadedAt
	return m, nil
}

// InsertComment stores a new comment row with a store-assigned timestamp.
// The media ID is not checked against the media table here; referential
// integrity is left to the database.
func (s *GormStore) InsertComment(c domain.Comment) (domain.Comment, error) {
	model := CommentModel{
		MediaID:     c.MediaID,
		UserID:      c.UserID,
		CommentText: c.CommentText,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Comment{}, err
	}
	c.CommentID = model.CommentID
	c.CreatedAt = model.CreatedAt
	return c, nil
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		UserID: m.UserID,
		Email:  m.Email,
		Role:   domain.UserRole(m.Role),
	}
}

func mediaFromRow(row mediaRow) domain.MediaRecord {
	return domain.MediaRecord{
		MediaID:      row.MediaID,
		UserID:       row.UserID,
		Title:        row.Title,
		Caption:      row.Caption,
		Location:     row.Location,
		People:       row.People,
		BlobURL:      row.BlobURL,
		UploadedAt:   row.UploadedAt,
		CreatorEmail: row.CreatorEmail,
	}
}
