package dbmysql

import (
	"time"
)

type User struct {
	UserID       uint64    `gorm:"primaryKey;column:user_id;autoIncrement" json:"user_id"`
	Name         string    `gorm:"column:name;size:100;not null" json:"name"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	AvatarURL    string    `gorm:"column:avatar_url;size:500" json:"avatar_url"`
	Online       bool      `gorm:"column:online;default:false" json:"online"`
	LastSeen     time.Time `gorm:"column:last_seen" json:"last_seen"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// RefreshToken is one issued refresh credential. Logout deletes the row;
// access tokens are short lived and simply expire.
type RefreshToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;index;not null" json:"user_id"`
	Token     string    `gorm:"column:token;uniqueIndex;size:500;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
