package user

import (
	"context"

	"gochat/internal/dbmysql"

	"gorm.io/gorm"
)

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *dbmysql.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*dbmysql.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserTokens(ctx context.Context, userID uint64) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) SaveRefreshToken(ctx context.Context, token *dbmysql.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) GetRefreshToken(ctx context.Context, token string) (*dbmysql.RefreshToken, error) {
	var rt dbmysql.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *tokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&dbmysql.RefreshToken{}).Error
}

func (r *tokenRepository) DeleteUserTokens(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&dbmysql.RefreshToken{}).Error
}
