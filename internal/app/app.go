package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/singleflight"

	"mediashare/internal/cache"
	"mediashare/pkg/domain"
	"mediashare/pkg/storage"
	"mediashare/pkg/store"
)

// ErrNotCreator is returned when the uploading user is missing or does not
// hold the Creator role. A missing user fails closed.
var ErrNotCreator = errors.New("uploader is not a creator")

// Config wires required dependencies for the application core.
type Config struct {
	Store    store.Store
	Objects  storage.ObjectStore
	Listings cache.ListingCache
}

// App is the core application service composing the metadata store, the blob
// store, and the listing cache.
type App struct {
	store     store.Store
	objects   storage.ObjectStore
	listings  cache.ListingCache
	listGroup singleflight.Group
	now       func() time.Time
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Objects == nil {
		return nil, fmt.Errorf("object store required")
	}
	if cfg.Listings == nil {
		return nil, fmt.Errorf("listing cache required")
	}
	return &App{
		store:    cfg.Store,
		objects:  cfg.Objects,
		listings: cfg.Listings,
		now:      time.Now,
	}, nil
}

// ListMedia returns the full media listing. A valid cached snapshot is served
// directly; on a miss the store is queried once (concurrent misses share a
// single round trip) and the cache repopulated. Cache backend errors degrade
// to a miss rather than failing the request.
func (a *App) ListMedia() ([]domain.MediaRecord, error) {
	snapshot, ok, err := a.listings.Get()
	if err != nil {
		slog.Warn("listing cache read failed", "err", err)
	} else if ok {
		return snapshot, nil
	}
	v, err, _ := a.listGroup.Do("media-listing", func() (any, error) {
		records, err := a.store.ListMedia()
		if err != nil {
			return nil, fmt.Errorf("list media: %w", err)
		}
		if err := a.listings.Set(records); err != nil {
			slog.Warn("listing cache write failed", "err", err)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MediaRecord), nil
}

// GetMedia fetches a single media record by ID, always bypassing the cache.
func (a *App) GetMedia(id int64) (domain.MediaRecord, bool, error) {
	return a.store.GetMedia(id)
}

// UploadInput carries the multipart metadata fields of an upload.
type UploadInput struct {
	UserID   int64
	Title    string
	Caption  string
	Location string
	People   string
	Filename string
	Size     int64
}

// Upload runs the upload pipeline: role check, blob write, metadata insert,
// cache invalidation. Each step is a commit point; completed steps are not
// rolled back when a later one fails.
func (a *App) Upload(in UploadInput, file io.Reader) (string, error) {
	user, found, err := a.store.GetUserByID(in.UserID)
	if err != nil {
		return "", fmt.Errorf("look up uploader: %w", err)
	}
	if !found || user.Role != domain.RoleCreator {
		return "", ErrNotCreator
	}

	// Uniqueness of the blob name rests on timestamp granularity plus the
	// original filename.
	blobName := fmt.Sprintf("%d-%s", a.now().UnixMilli(), blobFilename(in.Filename))
	contentType, body, err := detectContentType(in.Filename, file)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if err := a.objects.Put(context.Background(), blobName, body, in.Size, contentType); err != nil {
		return "", fmt.Errorf("save blob: %w", err)
	}
	blobURL := a.objects.PublicURL(blobName)

	// The blob is not removed if the insert fails.
	if _, err := a.store.InsertMedia(domain.MediaRecord{
		UserID:   in.UserID,
		Title:    in.Title,
		Caption:  in.Caption,
		Location: in.Location,
		People:   in.People,
		BlobURL:  blobURL,
	}); err != nil {
		return "", fmt.Errorf("save media metadata: %w", err)
	}

	if err := a.listings.Invalidate(); err != nil {
		return "", fmt.Errorf("invalidate listing cache: %w", err)
	}
	return blobURL, nil
}

// AddComment inserts a comment with a store-assigned timestamp. The media ID
// is not checked for existence and the listing cache is untouched.
func (a *App) AddComment(mediaID, userID int64, text string) (domain.Comment, error) {
	comment, err := a.store.InsertComment(domain.Comment{
		MediaID:     mediaID,
		UserID:      userID,
		CommentText: text,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

// detectContentType resolves the upload's content type from the filename
// extension, sniffing the leading bytes when the extension is unknown. The
// returned reader replays any sniffed bytes.
func detectContentType(filename string, r io.Reader) (string, io.Reader, error) {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct, r, nil
	}
	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	header = header[:n]
	return mimetype.Detect(header).String(), io.MultiReader(bytes.NewReader(header), r), nil
}

func blobFilename(name string) string {
	name = sanitizeFilename(filepath.Base(name))
	if name == "" {
		return "upload"
	}
	return name
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if r <= 0x7f {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
				b.WriteRune(r)
				lastUnderscore = false
				continue
			}
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
