package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"mediashare/internal/app"
	"mediashare/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	MaxUploadBytes int64
}

// Server exposes the media-sharing HTTP endpoints.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 * 1024 * 1024
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/media", s.handleMedia)
	s.mux.HandleFunc("/api/media/", s.handleMediaByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListMedia(w, r)
	case http.MethodPost:
		s.handleUploadMedia(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /api/media/{id} or /api/media/{id}/comment
func (s *Server) handleMediaByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/media/")
	parts := strings.SplitN(path, "/", 2)
	rawID := parts[0]
	if rawID == "" {
		notFound(w, "not found")
		return
	}

	if len(parts) == 2 && parts[1] == "comment" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleAddComment(w, r, rawID)
		return
	}
	if len(parts) == 2 {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.handleGetMedia(w, r, rawID)
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	records, err := s.app.ListMedia()
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("list media failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request, rawID string) {
	// A non-numeric id is reported as a generic server error, not as a
	// validation failure.
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	record, found, err := s.app.GetMedia(id)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("get media failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if !found {
		notFound(w, "media not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()

	userID, err := strconv.ParseInt(r.FormValue("userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	blobURL, err := s.app.Upload(app.UploadInput{
		UserID:   userID,
		Title:    r.FormValue("title"),
		Caption:  r.FormValue("caption"),
		Location: r.FormValue("location"),
		People:   r.FormValue("people"),
		Filename: header.Filename,
		Size:     header.Size,
	}, file)
	if err != nil {
		if errors.Is(err, app.ErrNotCreator) {
			writeError(w, http.StatusForbidden, "unauthorized")
			return
		}
		util.LoggerFromContext(r.Context()).Error("upload failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Media uploaded",
		"blobUrl": blobURL,
	})
}

type commentRequest struct {
	UserID      int64  `json:"userId"`
	CommentText string `json:"commentText"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, rawID string) {
	mediaID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	var req commentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.app.AddComment(mediaID, req.UserID, req.CommentText); err != nil {
		util.LoggerFromContext(r.Context()).Error("add comment failed", "mediaId", mediaID, "err", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Comment added"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCodeForMedia(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCodeForMedia(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "unauthorized":
		return "MEDIA_UPLOAD_FORBIDDEN"
	case message == "media not found":
		return "MEDIA_NOT_FOUND"
	case strings.Contains(message, "file is required"):
		return "MEDIA_FILE_REQUIRED"
	case message == "invalid form data":
		return "MEDIA_INVALID_UPLOAD_FORM"
	case message == "invalid json body":
		return "MEDIA_INVALID_REQUEST"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case message == "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "MEDIA_INVALID_REQUEST"
	case http.StatusForbidden:
		return "MEDIA_UPLOAD_FORBIDDEN"
	case http.StatusNotFound:
		return "MEDIA_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
