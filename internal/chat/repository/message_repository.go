package repository

import (
	"context"

	"gochat/internal/dbmysql"

	"gorm.io/gorm"
)

var mediaKinds = []string{
	dbmysql.MessageKindImage,
	dbmysql.MessageKindFile,
	dbmysql.MessageKindAudio,
	dbmysql.MessageKindVideo,
}

type MessageRepository interface {
	Create(ctx context.Context, msg *dbmysql.Message) error
	GetByID(ctx context.Context, messageID string) (*dbmysql.Message, error)
	ListByChat(ctx context.Context, chatID string, viewerID uint64) ([]*dbmysql.Message, error)
	ListMediaByChat(ctx context.Context, chatID string, viewerID uint64) ([]*dbmysql.Message, error)
	MarkAllRead(ctx context.Context, chatID string, readerID uint64) error
	ListReaders(ctx context.Context, messageID string) ([]uint64, error)
	ListReadsByChat(ctx context.Context, chatID string) ([]*dbmysql.MessageRead, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *dbmysql.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) GetByID(ctx context.Context, messageID string) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).Where("id = ?", messageID).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByChat returns the chat history the viewer may see: everything
// delivered plus the viewer's own suppressed messages, oldest first.
func (r *messageRepository) ListByChat(ctx context.Context, chatID string, viewerID uint64) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND (delivered = ? OR sender_id = ?)", chatID, true, viewerID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) ListMediaByChat(ctx context.Context, chatID string, viewerID uint64) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND (delivered = ? OR sender_id = ?) AND kind IN ?", chatID, true, viewerID, mediaKinds).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkAllRead adds the reader to every message of the chat it has not read
// yet. INSERT IGNORE plus the unique (message_id, user_id) index makes the
// call idempotent.
func (r *messageRepository) MarkAllRead(ctx context.Context, chatID string, readerID uint64) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT IGNORE INTO message_reads (message_id, user_id, created_at) "+
			"SELECT id, ?, NOW() FROM messages WHERE chat_id = ?",
		readerID, chatID,
	).Error
}

func (r *messageRepository) ListReaders(ctx context.Context, messageID string) ([]uint64, error) {
	var reads []*dbmysql.MessageRead
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reads).Error
	if err != nil {
		return nil, err
	}
	readers := make([]uint64, 0, len(reads))
	for _, rd := range reads {
		readers = append(readers, rd.UserID)
	}
	return readers, nil
}

// ListReadsByChat loads the read rows of a whole chat in one query so list
// endpoints can attach read sets without a per-message lookup.
func (r *messageRepository) ListReadsByChat(ctx context.Context, chatID string) ([]*dbmysql.MessageRead, error) {
	var reads []*dbmysql.MessageRead
	err := r.db.WithContext(ctx).
		Joins("JOIN messages ON messages.id = message_reads.message_id").
		Where("messages.chat_id = ?", chatID).
		Find(&reads).Error
	return reads, err
}
