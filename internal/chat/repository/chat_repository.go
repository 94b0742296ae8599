package repository

import (
	"context"

	"gochat/internal/dbmysql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *dbmysql.Chat, memberIDs []uint64) error
	GetByID(ctx context.Context, chatID string) (*dbmysql.Chat, error)
	GetPrivateByPairKey(ctx context.Context, pairKey string) (*dbmysql.Chat, error)
	ListByUser(ctx context.Context, userID uint64) ([]*dbmysql.Chat, error)
	Update(ctx context.Context, chat *dbmysql.Chat) error
	SetLastMessage(ctx context.Context, chatID, messageID string) error
	ListMembers(ctx context.Context, chatID string) ([]*dbmysql.ChatMember, error)
	GetMember(ctx context.Context, chatID string, userID uint64) (*dbmysql.ChatMember, error)
	AddMember(ctx context.Context, chatID string, userID uint64) error
	RemoveMember(ctx context.Context, chatID string, userID uint64) error
	IncrementUnreadExcept(ctx context.Context, chatID string, senderID uint64) error
	ResetUnread(ctx context.Context, chatID string, userID uint64) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// Create persists the chat row first, then its member rows. A duplicate
// PairKey surfaces as gorm.ErrDuplicatedKey so the caller can retry the
// lookup (racing lazy private creation).
func (r *chatRepository) Create(ctx context.Context, chat *dbmysql.Chat, memberIDs []uint64) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return err
	}
	for _, userID := range memberIDs {
		if err := r.AddMember(ctx, chat.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, chatID string) (*dbmysql.Chat, error) {
	var chat dbmysql.Chat
	err := r.db.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) GetPrivateByPairKey(ctx context.Context, pairKey string) (*dbmysql.Chat, error) {
	var chat dbmysql.Chat
	err := r.db.WithContext(ctx).
		Where("pair_key = ? AND type = ?", pairKey, dbmysql.ChatTypePrivate).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListByUser returns the chats the user belongs to, most recent activity
// first. Every accepted message touches the chat row, so updated_at orders
// by last-message activity.
func (r *chatRepository) ListByUser(ctx context.Context, userID uint64) ([]*dbmysql.Chat, error) {
	var chats []*dbmysql.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) Update(ctx context.Context, chat *dbmysql.Chat) error {
	return r.db.WithContext(ctx).Save(chat).Error
}

func (r *chatRepository) SetLastMessage(ctx context.Context, chatID, messageID string) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.Chat{}).
		Where("id = ?", chatID).
		Update("last_message_id", messageID).Error
}

func (r *chatRepository) ListMembers(ctx context.Context, chatID string) ([]*dbmysql.ChatMember, error) {
	var members []*dbmysql.ChatMember
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *chatRepository) GetMember(ctx context.Context, chatID string, userID uint64) (*dbmysql.ChatMember, error) {
	var member dbmysql.ChatMember
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember is idempotent: adding an existing member is a no-op.
func (r *chatRepository) AddMember(ctx context.Context, chatID string, userID uint64) error {
	member := &dbmysql.ChatMember{ChatID: chatID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

func (r *chatRepository) RemoveMember(ctx context.Context, chatID string, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&dbmysql.ChatMember{}).Error
}

// IncrementUnreadExcept bumps every member counter but the sender's in a
// single UPDATE, so concurrent sends never lose increments.
func (r *chatRepository) IncrementUnreadExcept(ctx context.Context, chatID string, senderID uint64) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.ChatMember{}).
		Where("chat_id = ? AND user_id <> ?", chatID, senderID).
		Update("unread_count", gorm.Expr("unread_count + ?", 1)).Error
}

func (r *chatRepository) ResetUnread(ctx context.Context, chatID string, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("unread_count", 0).Error
}
