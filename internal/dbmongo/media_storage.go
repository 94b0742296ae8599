package dbmongo

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gochat/internal/common"
	"gochat/internal/config"
)

// image folders only accept the types the clients can render
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// MediaStorage stores uploaded files in GridFS and hands back durable URLs
// served by the media HTTP server.
type MediaStorage struct {
	gridFS  *gridfs.Bucket
	baseURL string
}

func NewMediaStorage(mongoClient *MongoClient, cfg *config.Config) *MediaStorage {
	return &MediaStorage{
		gridFS:  mongoClient.GridFS,
		baseURL: strings.TrimSuffix(cfg.Media.BaseURL, "/"),
	}
}

type MediaFile struct {
	ID         string               `json:"id"`          // GridFS ObjectID
	Filename   string               `json:"filename"`    // Original filename
	Size       int64                `json:"size"`        // File size in bytes
	MimeType   string               `json:"mime_type"`
	FileType   common.MediaFileType `json:"file_type"`   // image, video, audio, file
	UploadedBy string               `json:"uploaded_by"` // User ID who uploaded
	UploadedAt time.Time            `json:"uploaded_at"` // Upload timestamp
}

// UploadFile stores content under folder and returns the durable URL.
// Avatar and image-message folders reject anything but jpeg/jpg/png.
func (ms *MediaStorage) UploadFile(ctx context.Context, filename, mimeType, folder, uploaderID string, content io.Reader) (string, error) {
	fileType := common.DetectFileType(mimeType)
	if fileType == common.MediaFileTypeImage && !allowedImageTypes[strings.ToLower(mimeType)] {
		return "", common.NewError(common.CodeValidation, "invalid file type, only PNG, JPG and JPEG are allowed")
	}

	metadata := bson.M{
		"file_type":   fileType.String(),
		"mime_type":   mimeType,
		"folder":      folder,
		"uploaded_by": uploaderID,
		"uploaded_at": time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer stream.Close()

	if _, err := io.Copy(stream, content); err != nil {
		return "", fmt.Errorf("file copy failed: %w", err)
	}

	fileID := stream.FileID.(primitive.ObjectID).Hex()
	return fmt.Sprintf("%s/%s", ms.baseURL, fileID), nil
}

// DownloadFile streams a stored file back by GridFS id.
func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.Reader, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, common.NewError(common.CodeNotFound, "invalid file ID")
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, nil, common.NewError(common.CodeNotFound, "file not found")
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	mediaFile := &MediaFile{
		ID:         fileID,
		Filename:   fileInfo.Name,
		Size:       fileInfo.Length,
		MimeType:   getStringFromMap(metadata, "mime_type"),
		FileType:   common.MediaFileType(getStringFromMap(metadata, "file_type")),
		UploadedBy: getStringFromMap(metadata, "uploaded_by"),
		UploadedAt: fileInfo.UploadDate,
	}

	return stream, mediaFile, nil
}

// DeleteFile removes a stored file given its durable URL. Best effort: a
// failed delete is logged, never surfaced.
func (ms *MediaStorage) DeleteFile(ctx context.Context, fileURL string) error {
	fileID := FileIDFromURL(fileURL)
	if fileID == "" {
		return nil
	}
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil
	}
	if err := ms.gridFS.Delete(objectID); err != nil {
		log.Printf("failed to delete media %s: %v", fileID, err)
	}
	return nil
}

// FileIDFromURL extracts the GridFS id segment of a durable media URL.
func FileIDFromURL(fileURL string) string {
	idx := strings.LastIndex(fileURL, "/")
	if idx < 0 || idx == len(fileURL)-1 {
		return ""
	}
	return fileURL[idx+1:]
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
