package common

import "strings"

// MediaFileType represents the file format family of an uploaded message
// attachment.
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
	MediaFileTypeAudio MediaFileType = "audio"
	MediaFileTypeFile  MediaFileType = "file"
)

// String returns the string representation
func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid checks if the media file type is valid
func (mft MediaFileType) IsValid() bool {
	switch mft {
	case MediaFileTypeImage, MediaFileTypeVideo, MediaFileTypeAudio, MediaFileTypeFile:
		return true
	}
	return false
}

func DetectFileType(mimeType string) MediaFileType {
	lowerMimeType := strings.ToLower(mimeType)
	if strings.HasPrefix(lowerMimeType, "image/") {
		return MediaFileTypeImage
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo
	}
	if strings.HasPrefix(lowerMimeType, "audio/") {
		return MediaFileTypeAudio
	}
	return MediaFileTypeFile
}
