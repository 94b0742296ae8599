package user

import (
	"context"

	"gochat/internal/dbmysql"

	"gorm.io/gorm"
)

type BlockRepository interface {
	CreateBlock(ctx context.Context, blockerID, blockedUserID uint64) error
	DeleteBlock(ctx context.Context, blockerID, blockedUserID uint64) error
	// IsBlocked reports whether a block exists in either direction.
	IsBlocked(ctx context.Context, a, b uint64) (bool, error)
	ListBlocked(ctx context.Context, blockerID uint64) ([]uint64, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) CreateBlock(ctx context.Context, blockerID, blockedUserID uint64) error {
	block := &dbmysql.BlockedUser{
		BlockerID:     blockerID,
		BlockedUserID: blockedUserID,
	}
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *blockRepository) DeleteBlock(ctx context.Context, blockerID, blockedUserID uint64) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_user_id = ?", blockerID, blockedUserID).
		Delete(&dbmysql.BlockedUser{}).Error
}

func (r *blockRepository) IsBlocked(ctx context.Context, a, b uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.BlockedUser{}).
		Where("(blocker_id = ? AND blocked_user_id = ?) OR (blocker_id = ? AND blocked_user_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

func (r *blockRepository) ListBlocked(ctx context.Context, blockerID uint64) ([]uint64, error) {
	var blocks []*dbmysql.BlockedUser
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.BlockedUserID)
	}
	return ids, nil
}
