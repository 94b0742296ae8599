package dbmysql

import (
	"fmt"
	"time"
)

const (
	ChatTypePrivate = "private"
	ChatTypeGroup   = "group"
)

type Chat struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"column:name;size:100;not null" json:"name"`
	Type          string    `gorm:"column:type;type:enum('private','group');default:'private'" json:"type"`
	AdminID       *uint64   `gorm:"column:admin_id" json:"admin_id,omitempty"`
	AvatarURL     string    `gorm:"column:avatar_url;size:500" json:"avatar_url"`
	LastMessageID *string   `gorm:"column:last_message_id;size:36" json:"last_message_id,omitempty"`
	// PairKey is the sorted member pair for private chats ("minID:maxID") and a
	// uuid filler for groups. The unique index makes lazy private-chat creation
	// first-writer-wins when two first messages race.
	PairKey   string    `gorm:"column:pair_key;uniqueIndex;size:64;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// PrivatePairKey builds the PairKey value for a two-member private chat.
func PrivatePairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ChatMember links a user to a chat and owns that member's unread counter.
// Absent rows read as unread 0.
type ChatMember struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID      string    `gorm:"column:chat_id;size:36;not null;index:idx_chat_user,unique" json:"chat_id"`
	UserID      uint64    `gorm:"column:user_id;not null;index:idx_chat_user,unique;index" json:"user_id"`
	UnreadCount uint      `gorm:"column:unread_count;default:0" json:"unread_count"`
	JoinedAt    time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`
}
