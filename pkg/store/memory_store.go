package store

import (
	"sync"
	"time"

	"mediashare/pkg/domain"
)

// MemoryStore keeps metadata in-process for tests and local runs.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]domain.User
	media      []domain.MediaRecord
	comments   []domain.Comment
	nextMedia  int64
	nextCmt    int64
	nextUserID int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]domain.User),
		nextMedia: 1,
		nextCmt:   1,
	}
}

// AddUser seeds a user and returns it with an assigned ID.
func (m *MemoryStore) AddUser(email string, role domain.UserRole) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := domain.User{UserID: m.nextUserID, Email: email, Role: role}
	m.users[u.UserID] = u
	return u
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id int64) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// ListMedia returns media in insertion order with the uploader email joined in.
func (m *MemoryStore) ListMedia() ([]domain.MediaRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.MediaRecord, len(m.media))
	copy(res, m.media)
	return res, nil
}

// GetMedia retrieves a media record by ID.
func (m *MemoryStore) GetMedia(id int64) (domain.MediaRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.media {
		if rec.MediaID == id {
			return rec, true, nil
		}
	}
	return domain.MediaRecord{}, false, nil
}

// InsertMedia appends a media record, assigning ID and upload timestamp.
func (m *MemoryStore) InsertMedia(rec domain.MediaRecord) (domain.MediaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.MediaID = m.nextMedia
	m.nextMedia++
	rec.UploadedAt = time.Now().UTC()
	if u, ok := m.users[rec.UserID]; ok {
		rec.CreatorEmail = u.Email
	}
	m.media = append(m.media, rec)
	return rec, nil
}

// InsertComment appends a comment, assigning ID and creation timestamp. The
// media ID is not checked for existence.
func (m *MemoryStore) InsertComment(c domain.Comment) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CommentID = m.nextCmt
	m.nextCmt++
	c.CreatedAt = time.Now().UTC()
	m.comments = append(m.comments, c)
	return c, nil
}

// Comments returns all stored comments (test helper).
func (m *MemoryStore) Comments() []domain.Comment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Comment, len(m.comments))
	copy(res, m.comments)
	return res
}
