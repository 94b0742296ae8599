package dbmysql

import (
	"time"
)

// Contact is one entry of a user's contact list. Name overrides the contact
// user's own display name when set.
type Contact struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID       uint64    `gorm:"column:owner_id;not null;index:idx_owner_contact,unique" json:"owner_id"`
	ContactUserID uint64    `gorm:"column:contact_user_id;not null;index:idx_owner_contact,unique" json:"contact_user_id"`
	Name          string    `gorm:"column:name;size:100" json:"name"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	ContactUser *User `gorm:"-" json:"contact_user,omitempty"`
}

// BlockedUser records that blocker does not want messages from blocked.
// A block in either direction suppresses private-chat delivery.
type BlockedUser struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BlockerID     uint64    `gorm:"column:blocker_id;not null;index:idx_blocker_blocked,unique" json:"blocker_id"`
	BlockedUserID uint64    `gorm:"column:blocked_user_id;not null;index:idx_blocker_blocked,unique" json:"blocked_user_id"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
