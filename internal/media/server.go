package media

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"gochat/internal/dbmongo"

	"github.com/gorilla/mux"
)

// Server resolves the durable /media/{fileId} URLs that message content and
// avatars point at.
type Server struct {
	storage *dbmongo.MediaStorage
}

func NewServer(storage *dbmongo.MediaStorage) *Server {
	return &Server{storage: storage}
}

func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/media/{fileId}", s.ServeFile).Methods("GET")
}

func (s *Server) ServeFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	reader, file, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = contentTypeByExt(file.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))

	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("media: stream %s: %v", fileID, err)
	}
}

func contentTypeByExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
