package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mediashare/internal/app"
	"mediashare/internal/cache"
	"mediashare/pkg/domain"
	"mediashare/pkg/store"
)

type countingStore struct {
	*store.MemoryStore
	listCalls   int32
	insertCalls int32
}

func (s *countingStore) ListMedia() ([]domain.MediaRecord, error) {
	atomic.AddInt32(&s.listCalls, 1)
	return s.MemoryStore.ListMedia()
}

func (s *countingStore) InsertMedia(m domain.MediaRecord) (domain.MediaRecord, error) {
	atomic.AddInt32(&s.insertCalls, 1)
	return s.MemoryStore.InsertMedia(m)
}

type fakeObjectStore struct {
	puts int32
}

func (f *fakeObjectStore) Put(_ context.Context, _ string, r io.Reader, _ int64, _ string) error {
	atomic.AddInt32(&f.puts, 1)
	_, err := io.Copy(io.Discard, r)
	return err
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "http://blobs.local/media-uploads/" + key
}

func (f *fakeObjectStore) Delete(_ context.Context, _ string) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *countingStore, *fakeObjectStore) {
	t.Helper()
	st := &countingStore{MemoryStore: store.NewMemoryStore()}
	objects := &fakeObjectStore{}
	core, err := app.New(app.Config{Store: st, Objects: objects, Listings: cache.NewMemoryCache()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{App: core})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st, objects
}

func multipartUpload(t *testing.T, url string, userID int64, title, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, value := range map[string]string{
		"title":    title,
		"caption":  "a caption",
		"location": "somewhere",
		"people":   "alice,bob",
		"userId":   strconv.FormatInt(userID, 10),
	} {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("write field %s: %v", field, err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.Copy(fw, strings.NewReader(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mw.Close()

	resp, err := http.Post(url+"/api/media", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post upload: %v", err)
	}
	return resp
}

func TestListMediaServedFromCache(t *testing.T) {
	ts, st, _ := newTestServer(t)
	creator := st.AddUser("creator@example.com", domain.RoleCreator)
	if _, err := st.MemoryStore.InsertMedia(domain.MediaRecord{UserID: creator.UserID, Title: "seeded"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/api/media")
		if err != nil {
			t.Fatalf("get media: %v", err)
		}
		var records []domain.MediaRecord
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if len(records) != 1 || records[0].Title != "seeded" {
			t.Fatalf("unexpected listing: %+v", records)
		}
	}
	if got := atomic.LoadInt32(&st.listCalls); got != 1 {
		t.Fatalf("store list calls = %d, want 1", got)
	}
}

func TestGetMediaByID(t *testing.T) {
	ts, st, _ := newTestServer(t)
	creator := st.AddUser("creator@example.com", domain.RoleCreator)
	rec, err := st.MemoryStore.InsertMedia(domain.MediaRecord{UserID: creator.UserID, Title: "target"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/media/" + strconv.FormatInt(rec.MediaID, 10))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got domain.MediaRecord
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MediaID != rec.MediaID || got.CreatorEmail != "creator@example.com" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetMediaByIDNotFound(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/media/9999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetMediaByIDNonNumeric(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/media/not-a-number")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestUploadByCreatorThenListReflectsIt(t *testing.T) {
	ts, st, _ := newTestServer(t)
	creator := st.AddUser("creator@example.com", domain.RoleCreator)

	// Warm the cache before the upload.
	warm, err := http.Get(ts.URL + "/api/media")
	if err != nil {
		t.Fatalf("warm list: %v", err)
	}
	warm.Body.Close()

	resp := multipartUpload(t, ts.URL, creator.UserID, "new photo", "photo.jpg", "jpegbytes")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	var uploaded struct {
		Message string `json:"message"`
		BlobURL string `json:"blobUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if uploaded.Message != "Media uploaded" || uploaded.BlobURL == "" {
		t.Fatalf("unexpected upload response: %+v", uploaded)
	}

	list, err := http.Get(ts.URL + "/api/media")
	if err != nil {
		t.Fatalf("list after upload: %v", err)
	}
	defer list.Body.Close()
	var records []domain.MediaRecord
	if err := json.NewDecoder(list.Body).Decode(&records); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(records) != 1 || records[0].Title != "new photo" {
		t.Fatalf("listing does not reflect upload: %+v", records)
	}
	if records[0].BlobURL != uploaded.BlobURL {
		t.Fatalf("blob url mismatch: %q vs %q", records[0].BlobURL, uploaded.BlobURL)
	}
}

func TestUploadByNonCreatorForbiddenNoWrites(t *testing.T) {
	ts, st, objects := newTestServer(t)
	viewer := st.AddUser("viewer@example.com", domain.RoleViewer)

	resp := multipartUpload(t, ts.URL, viewer.UserID, "denied", "photo.jpg", "jpegbytes")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&objects.puts); got != 0 {
		t.Fatalf("blob store puts = %d, want 0", got)
	}
	if got := atomic.LoadInt32(&st.insertCalls); got != 0 {
		t.Fatalf("metadata inserts = %d, want 0", got)
	}
}

func TestAddCommentInsertsAgainstAnyMediaID(t *testing.T) {
	ts, st, _ := newTestServer(t)
	user := st.AddUser("viewer@example.com", domain.RoleViewer)
	arrival := time.Now().UTC().Add(-time.Second)

	body, _ := json.Marshal(map[string]any{"userId": user.UserID, "commentText": "lovely"})
	resp, err := http.Post(ts.URL+"/api/media/4242/comment", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post comment: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	comments := st.Comments()
	if len(comments) != 1 {
		t.Fatalf("stored comments = %d, want 1", len(comments))
	}
	if comments[0].MediaID != 4242 || comments[0].CommentText != "lovely" {
		t.Fatalf("unexpected comment: %+v", comments[0])
	}
	if comments[0].CreatedAt.Before(arrival) {
		t.Fatalf("timestamp %v predates arrival %v", comments[0].CreatedAt, arrival)
	}
}
