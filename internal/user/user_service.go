package user

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmysql"

	"gorm.io/gorm"
)

// Uploader is the external upload collaborator (GridFS media storage).
type Uploader interface {
	UploadFile(ctx context.Context, filename, mimeType, folder, uploaderID string, content io.Reader) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type AuthResult struct {
	UserID       uint64 `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AvatarUpload struct {
	Filename string
	MimeType string
	Content  io.Reader
}

// ContactView is a contact entry resolved against the live profile. Name is
// the owner's override when set, the contact's own name otherwise.
type ContactView struct {
	UserID    uint64    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	Online    bool      `json:"online"`
	LastSeen  time.Time `json:"last_seen"`
}

type UserService interface {
	CreateUser(ctx context.Context, name, email, password, passwordConfirmation string) (*dbmysql.User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID uint64, refreshToken string) error
	GetUser(ctx context.Context, userID uint64) (*dbmysql.User, error)
	ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword, passwordConfirmation string) error
	EditProfile(ctx context.Context, userID uint64, name string, avatar *AvatarUpload) (*dbmysql.User, error)
	BlockUser(ctx context.Context, userID, targetUserID uint64) error
	UnblockUser(ctx context.Context, userID, targetUserID uint64) error
	GetContacts(ctx context.Context, userID uint64) ([]*ContactView, error)
	AddContact(ctx context.Context, userID uint64, email string) (*ContactView, error)
	EditContact(ctx context.Context, userID, contactUserID uint64, name string) error
	DeleteContact(ctx context.Context, userID, contactUserID uint64) error
	SetPresence(ctx context.Context, userID uint64, online bool) (time.Time, error)
}

type userService struct {
	userRepo    UserRepository
	contactRepo ContactRepository
	blockRepo   BlockRepository
	tokenRepo   TokenRepository
	uploader    Uploader
}

func NewUserService(
	userRepo UserRepository,
	contactRepo ContactRepository,
	blockRepo BlockRepository,
	tokenRepo TokenRepository,
	uploader Uploader,
) UserService {
	return &userService{
		userRepo:    userRepo,
		contactRepo: contactRepo,
		blockRepo:   blockRepo,
		tokenRepo:   tokenRepo,
		uploader:    uploader,
	}
}

func (s *userService) CreateUser(ctx context.Context, name, email, password, passwordConfirmation string) (*dbmysql.User, error) {
	if err := common.ValidateName(name); err != nil {
		return nil, err
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := common.ValidatePasswordConfirmation(password, passwordConfirmation); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.NewError(common.CodeConflict, "user already exists")
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &dbmysql.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		LastSeen:     time.Now(),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, common.NewError(common.CodeValidation, "email and password required")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.CodeUnauthenticated, "invalid email or password")
		}
		return nil, err
	}

	if err := common.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, common.NewError(common.CodeUnauthenticated, "invalid email or password")
	}

	access, err := common.GenerateAccessToken(user.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := common.GenerateRefreshToken(user.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.SaveRefreshToken(ctx, &dbmysql.RefreshToken{
		UserID: user.UserID,
		Token:  refresh,
	}); err != nil {
		return nil, err
	}

	return &AuthResult{UserID: user.UserID, AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshToken exchanges a stored refresh token for a fresh access token.
func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := common.ValidRefreshToken(refreshToken)
	if err != nil {
		return "", common.NewError(common.CodeUnauthenticated, "invalid or expired refresh token")
	}

	if _, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", common.NewError(common.CodeUnauthenticated, "refresh token revoked")
		}
		return "", err
	}

	return common.GenerateAccessToken(claims.UserID)
}

func (s *userService) Logout(ctx context.Context, userID uint64, refreshToken string) error {
	if refreshToken != "" {
		if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	} else if err := s.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.SetPresence(ctx, userID, false, time.Now())
}

func (s *userService) GetUser(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword, passwordConfirmation string) error {
	if err := common.ValidatePasswordConfirmation(newPassword, passwordConfirmation); err != nil {
		return err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := common.CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return common.NewError(common.CodeUnauthenticated, "wrong password")
	}

	hashed, err := common.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.userRepo.UpdateUser(ctx, user)
}

func (s *userService) EditProfile(ctx context.Context, userID uint64, name string, avatar *AvatarUpload) (*dbmysql.User, error) {
	if err := common.ValidateName(name); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if avatar != nil {
		url, err := s.uploader.UploadFile(ctx, avatar.Filename, avatar.MimeType, "avatars",
			strconv.FormatUint(userID, 10), avatar.Content)
		if err != nil {
			return nil, err
		}
		if user.AvatarURL != "" {
			s.uploader.DeleteFile(ctx, user.AvatarURL)
		}
		user.AvatarURL = url
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) BlockUser(ctx context.Context, userID, targetUserID uint64) error {
	if userID == targetUserID {
		return common.NewError(common.CodeValidation, "cannot block yourself")
	}
	if _, err := s.GetUser(ctx, targetUserID); err != nil {
		return err
	}
	if err := s.blockRepo.CreateBlock(ctx, userID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.NewError(common.CodeConflict, "user already blocked")
		}
		return err
	}
	return nil
}

func (s *userService) UnblockUser(ctx context.Context, userID, targetUserID uint64) error {
	return s.blockRepo.DeleteBlock(ctx, userID, targetUserID)
}

func (s *userService) GetContacts(ctx context.Context, userID uint64) ([]*ContactView, error) {
	contacts, err := s.contactRepo.ListContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*ContactView, 0, len(contacts))
	for _, c := range contacts {
		if c.ContactUser == nil {
			continue
		}
		name := c.ContactUser.Name
		if c.Name != "" {
			name = c.Name
		}
		views = append(views, &ContactView{
			UserID:    c.ContactUserID,
			Name:      name,
			Email:     c.ContactUser.Email,
			AvatarURL: c.ContactUser.AvatarURL,
			Online:    c.ContactUser.Online,
			LastSeen:  c.ContactUser.LastSeen,
		})
	}
	return views, nil
}

func (s *userService) AddContact(ctx context.Context, userID uint64, email string) (*ContactView, error) {
	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.CodeNotFound, "user not found")
		}
		return nil, err
	}
	if target.UserID == userID {
		return nil, common.NewError(common.CodeValidation, "cannot add yourself as a contact")
	}

	err = s.contactRepo.CreateContact(ctx, &dbmysql.Contact{
		OwnerID:       userID,
		ContactUserID: target.UserID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.NewError(common.CodeConflict, "contact already exists")
		}
		return nil, err
	}

	return &ContactView{
		UserID:    target.UserID,
		Name:      target.Name,
		Email:     target.Email,
		AvatarURL: target.AvatarURL,
		Online:    target.Online,
		LastSeen:  target.LastSeen,
	}, nil
}

func (s *userService) EditContact(ctx context.Context, userID, contactUserID uint64, name string) error {
	if err := common.ValidateName(name); err != nil {
		return err
	}

	contact, err := s.contactRepo.GetContact(ctx, userID, contactUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NewError(common.CodeNotFound, "contact not found")
		}
		return err
	}

	contact.Name = name
	return s.contactRepo.UpdateContact(ctx, contact)
}

func (s *userService) DeleteContact(ctx context.Context, userID, contactUserID uint64) error {
	return s.contactRepo.DeleteContact(ctx, userID, contactUserID)
}

// SetPresence flips the online flag and stamps last seen; used by the
// realtime channel on connect/disconnect.
func (s *userService) SetPresence(ctx context.Context, userID uint64, online bool) (time.Time, error) {
	now := time.Now()
	if err := s.userRepo.SetPresence(ctx, userID, online, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}
