package user

import (
	"context"
	"time"

	"gochat/internal/dbmysql"

	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
	GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []uint64) ([]*dbmysql.User, error)
	UpdateUser(ctx context.Context, user *dbmysql.User) error
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	SetPresence(ctx context.Context, userID uint64, online bool, lastSeen time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, userIDs []uint64) ([]*dbmysql.User, error) {
	if len(userIDs) == 0 {
		return []*dbmysql.User{}, nil
	}
	var users []*dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error
	return users, err
}

func (r *userRepository) UpdateUser(ctx context.Context, user *dbmysql.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) SetPresence(ctx context.Context, userID uint64, online bool, lastSeen time.Time) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"online": online, "last_seen": lastSeen}).Error
}
