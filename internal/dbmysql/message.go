package dbmysql

import (
	"time"
)

const (
	MessageKindText  = "text"
	MessageKindImage = "image"
	MessageKindFile  = "file"
	MessageKindAudio = "audio"
	MessageKindVideo = "video"
	MessageKindEvent = "event"
)

// Message is append-only; after creation only its read set grows.
// Delivered is false only for private-chat messages suppressed by a block.
type Message struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ChatID    string    `gorm:"column:chat_id;size:36;not null;index" json:"chat_id"`
	SenderID  uint64    `gorm:"column:sender_id;not null;index" json:"sender_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Kind      string    `gorm:"column:kind;type:enum('text','image','file','audio','video','event');default:'text'" json:"kind"`
	Caption   string    `gorm:"column:caption;size:500" json:"caption,omitempty"`
	Delivered bool      `gorm:"column:delivered;default:true" json:"delivered"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Sender *User `gorm:"-" json:"sender,omitempty"`
}

// IsMediaKind reports whether the kind carries an uploaded file reference.
func IsMediaKind(kind string) bool {
	switch kind {
	case MessageKindImage, MessageKindFile, MessageKindAudio, MessageKindVideo:
		return true
	}
	return false
}

// MessageRead is one entry of a message's readBy set. The unique index makes
// mark-as-seen idempotent at the storage layer.
type MessageRead struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID string    `gorm:"column:message_id;size:36;not null;index:idx_message_reader,unique" json:"message_id"`
	UserID    uint64    `gorm:"column:user_id;not null;index:idx_message_reader,unique" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
