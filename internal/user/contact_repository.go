package user

import (
	"context"

	"gochat/internal/dbmysql"

	"gorm.io/gorm"
)

type ContactRepository interface {
	CreateContact(ctx context.Context, contact *dbmysql.Contact) error
	GetContact(ctx context.Context, ownerID, contactUserID uint64) (*dbmysql.Contact, error)
	UpdateContact(ctx context.Context, contact *dbmysql.Contact) error
	DeleteContact(ctx context.Context, ownerID, contactUserID uint64) error
	ListContacts(ctx context.Context, ownerID uint64) ([]*dbmysql.Contact, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) CreateContact(ctx context.Context, contact *dbmysql.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepository) GetContact(ctx context.Context, ownerID, contactUserID uint64) (*dbmysql.Contact, error) {
	var contact dbmysql.Contact
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND contact_user_id = ?", ownerID, contactUserID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepository) UpdateContact(ctx context.Context, contact *dbmysql.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *contactRepository) DeleteContact(ctx context.Context, ownerID, contactUserID uint64) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ? AND contact_user_id = ?", ownerID, contactUserID).
		Delete(&dbmysql.Contact{}).Error
}

func (r *contactRepository) ListContacts(ctx context.Context, ownerID uint64) ([]*dbmysql.Contact, error) {
	var contacts []*dbmysql.Contact

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	// Manually fetch the contact users
	var contactUserIDs []uint64
	for _, c := range contacts {
		contactUserIDs = append(contactUserIDs, c.ContactUserID)
	}

	if len(contactUserIDs) == 0 {
		return contacts, nil
	}

	var users []*dbmysql.User
	err = r.db.WithContext(ctx).
		Where("user_id IN ?", contactUserIDs).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*dbmysql.User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}
	for _, c := range contacts {
		c.ContactUser = byID[c.ContactUserID]
	}

	return contacts, nil
}
