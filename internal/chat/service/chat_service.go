package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gochat/internal/chat/repository"
	"gochat/internal/common"
	"gochat/internal/dbmysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockChecker answers whether two users have blocked each other, in either
// direction.
type BlockChecker interface {
	IsBlocked(ctx context.Context, a, b uint64) (bool, error)
}

// Uploader is the external upload collaborator (GridFS media storage).
type Uploader interface {
	UploadFile(ctx context.Context, filename, mimeType, folder, uploaderID string, content io.Reader) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// Notifier fans an event out to every live session joined to a room. Fire
// and forget: it never blocks and never fails the write path.
type Notifier interface {
	Emit(room string, event string, payload interface{})
}

// UserDirectory resolves user ids to profiles; the user repository
// implements it.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []uint64) ([]*dbmysql.User, error)
}

// MemberView is a chat member resolved against the live profile.
type MemberView struct {
	UserID    uint64    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	Online    bool      `json:"online"`
	LastSeen  time.Time `json:"last_seen"`
}

type MessageView struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chat_id"`
	SenderID  uint64      `json:"sender_id"`
	Sender    *MemberView `json:"sender,omitempty"`
	Content   string      `json:"content"`
	Kind      string      `json:"kind"`
	Caption   string      `json:"caption,omitempty"`
	Delivered bool        `json:"delivered"`
	ReadBy    []uint64    `json:"read_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatView is a chat as one particular viewer sees it: private chats carry
// the other member's name and avatar, recomputed on every read, and the
// avatar is nulled under a block.
type ChatView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	AdminID     *uint64       `json:"admin_id,omitempty"`
	AvatarURL   string        `json:"avatar_url"`
	Members     []*MemberView `json:"members"`
	LastMessage *MessageView  `json:"last_message,omitempty"`
	UnreadCount uint          `json:"unread_count"`
}

type FileUpload struct {
	Filename string
	MimeType string
	Content  io.Reader
}

type SendMessageInput struct {
	ChatID    string   // empty: lazily create a private chat from MemberIDs
	MemberIDs []uint64 // counterpart ids for lazy creation
	Content   string
	Kind      string // defaults to text
	Caption   string
	File      *FileUpload // required for media kinds
}

type newMessagePayload struct {
	Message *MessageView `json:"message"`
	Data    *ChatView    `json:"data,omitempty"`
}

type chatUpdatePayload struct {
	Chat *ChatView `json:"chat"`
}

// ChatService is the delivery core: conversation lifecycle, the message
// send pipeline, read-state bookkeeping and fanout.
type ChatService interface {
	CreateChat(ctx context.Context, creatorID uint64, memberIDs []uint64, name string) (*ChatView, error)
	EditChat(ctx context.Context, callerID uint64, chatID, name string, avatar *FileUpload) (*ChatView, error)
	AddUsersToChat(ctx context.Context, callerID uint64, chatID string, userIDs []uint64) (*ChatView, error)
	DeleteUserFromChat(ctx context.Context, callerID uint64, chatID string, userID uint64) (*ChatView, error)
	SendMessage(ctx context.Context, senderID uint64, in SendMessageInput) (*MessageView, error)
	MarkMessageAsSeen(ctx context.Context, readerID uint64, chatID string) error
	GetUserChats(ctx context.Context, viewerID uint64) ([]*ChatView, error)
	GetChatMessages(ctx context.Context, viewerID uint64, chatID string) ([]*MessageView, error)
	GetChatMedia(ctx context.Context, viewerID uint64, chatID string) ([]*MessageView, error)
	GetMessageInfo(ctx context.Context, viewerID uint64, messageID string) (*MessageView, error)
}

type chatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	users       UserDirectory
	blocks      BlockChecker
	uploader    Uploader
	notifier    Notifier
}

func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	users UserDirectory,
	blocks BlockChecker,
	uploader Uploader,
	notifier Notifier,
) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		users:       users,
		blocks:      blocks,
		uploader:    uploader,
		notifier:    notifier,
	}
}

func userRoom(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

func (s *chatService) CreateChat(ctx context.Context, creatorID uint64, memberIDs []uint64, name string) (*ChatView, error) {
	memberIDs = dedupeWithout(memberIDs, creatorID)
	if len(memberIDs) == 0 {
		return nil, common.NewError(common.CodeValidation, "chat needs at least one other member")
	}

	if _, err := s.resolveUsers(ctx, memberIDs); err != nil {
		return nil, err
	}

	if len(memberIDs) == 1 {
		chat, _, err := s.findOrCreatePrivate(ctx, creatorID, memberIDs[0])
		if err != nil {
			return nil, err
		}
		return s.buildChatView(ctx, chat, creatorID)
	}

	if err := common.ValidateName(name); err != nil {
		return nil, err
	}

	creator, err := s.users.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	admin := creatorID
	chat := &dbmysql.Chat{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    dbmysql.ChatTypeGroup,
		AdminID: &admin,
		PairKey: uuid.NewString(),
	}
	allMembers := append([]uint64{creatorID}, memberIDs...)
	if err := s.chatRepo.Create(ctx, chat, allMembers); err != nil {
		return nil, err
	}

	event, err := s.appendEventMessage(ctx, chat, creatorID, fmt.Sprintf("Created by %s", creator.Name))
	if err != nil {
		return nil, err
	}

	s.fanOutToMembers(ctx, chat, allMembers, "newMessage", func(memberID uint64) interface{} {
		view, err := s.buildChatView(ctx, chat, memberID)
		if err != nil {
			view = nil
		}
		return newMessagePayload{Message: event, Data: view}
	})

	return s.buildChatView(ctx, chat, creatorID)
}

func (s *chatService) EditChat(ctx context.Context, callerID uint64, chatID, name string, avatar *FileUpload) (*ChatView, error) {
	chat, err := s.requireAdmin(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateName(name); err != nil {
		return nil, err
	}

	chat.Name = name
	if avatar != nil {
		url, err := s.uploader.UploadFile(ctx, avatar.Filename, avatar.MimeType, "chat-avatars",
			userRoom(callerID), avatar.Content)
		if err != nil {
			return nil, err
		}
		if chat.AvatarURL != "" {
			s.uploader.DeleteFile(ctx, chat.AvatarURL)
		}
		chat.AvatarURL = url
	}
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}

	event, err := s.appendEventMessage(ctx, chat, callerID, "Chat info was updated")
	if err != nil {
		return nil, err
	}

	s.notifyChatChanged(ctx, chat, event)

	return s.buildChatView(ctx, chat, callerID)
}

func (s *chatService) AddUsersToChat(ctx context.Context, callerID uint64, chatID string, userIDs []uint64) (*ChatView, error) {
	chat, err := s.requireAdmin(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}

	userIDs = dedupeWithout(userIDs, callerID)
	if len(userIDs) == 0 {
		return nil, common.NewError(common.CodeValidation, "no users to add")
	}

	added, err := s.resolveUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, userID := range userIDs {
		if err := s.chatRepo.AddMember(ctx, chatID, userID); err != nil {
			return nil, err
		}
	}

	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(added))
	for _, u := range added {
		names = append(names, u.Name)
	}

	event, err := s.appendEventMessage(ctx, chat, callerID,
		fmt.Sprintf("%s added %s", caller.Name, strings.Join(names, ", ")))
	if err != nil {
		return nil, err
	}

	s.notifyChatChanged(ctx, chat, event)

	return s.buildChatView(ctx, chat, callerID)
}

func (s *chatService) DeleteUserFromChat(ctx context.Context, callerID uint64, chatID string, userID uint64) (*ChatView, error) {
	chat, err := s.requireAdmin(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}
	if userID == callerID {
		return nil, common.NewError(common.CodeValidation, "admin cannot remove themselves")
	}

	if _, err := s.chatRepo.GetMember(ctx, chatID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.CodeValidation, "user is not a member of this chat")
		}
		return nil, err
	}

	removed, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.RemoveMember(ctx, chatID, userID); err != nil {
		return nil, err
	}

	event, err := s.appendEventMessage(ctx, chat, callerID,
		fmt.Sprintf("%s removed %s", caller.Name, removed.Name))
	if err != nil {
		return nil, err
	}

	// the removed user gets the update too, so their client can drop the chat
	s.notifier.Emit(userRoom(userID), "chatUpdate", chatUpdatePayload{Chat: &ChatView{ID: chat.ID, Type: chat.Type}})
	s.notifyChatChanged(ctx, chat, event)

	return s.buildChatView(ctx, chat, callerID)
}

// SendMessage is the critical path: resolve (or lazily create) the chat,
// resolve media, apply block suppression, persist, bump counters, fan out.
func (s *chatService) SendMessage(ctx context.Context, senderID uint64, in SendMessageInput) (*MessageView, error) {
	kind := in.Kind
	if kind == "" {
		kind = dbmysql.MessageKindText
	}
	if kind == dbmysql.MessageKindEvent {
		return nil, common.NewError(common.CodeValidation, "event messages cannot be sent directly")
	}

	var chat *dbmysql.Chat
	created := false
	if in.ChatID != "" {
		var err error
		chat, _, err = s.requireMember(ctx, in.ChatID, senderID)
		if err != nil {
			return nil, err
		}
	} else {
		others := dedupeWithout(in.MemberIDs, senderID)
		if len(others) != 1 {
			return nil, common.NewError(common.CodeValidation, "a new chat needs exactly one other member")
		}
		var err error
		chat, created, err = s.findOrCreatePrivate(ctx, senderID, others[0])
		if err != nil {
			return nil, err
		}
	}

	content := in.Content
	if dbmysql.IsMediaKind(kind) {
		if in.File == nil {
			return nil, common.NewError(common.CodeValidation, "media messages need a file")
		}
		url, err := s.uploader.UploadFile(ctx, in.File.Filename, in.File.MimeType, "messages",
			userRoom(senderID), in.File.Content)
		if err != nil {
			return nil, err
		}
		content = url
	} else if kind == dbmysql.MessageKindText && strings.TrimSpace(content) == "" {
		return nil, common.NewError(common.CodeValidation, "message content cannot be empty")
	}

	suppressed := false
	if chat.Type == dbmysql.ChatTypePrivate {
		other, err := s.privateCounterpart(ctx, chat, senderID)
		if err != nil {
			return nil, err
		}
		suppressed, err = s.blocks.IsBlocked(ctx, senderID, other)
		if err != nil {
			return nil, err
		}
	}

	msg := &dbmysql.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		SenderID:  senderID,
		Content:   content,
		Kind:      kind,
		Caption:   in.Caption,
		Delivered: !suppressed,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if !suppressed {
		if err := s.chatRepo.SetLastMessage(ctx, chat.ID, msg.ID); err != nil {
			return nil, err
		}
		if err := s.chatRepo.IncrementUnreadExcept(ctx, chat.ID, senderID); err != nil {
			return nil, err
		}
	}

	view, err := s.messageView(ctx, msg, nil)
	if err != nil {
		return nil, err
	}

	if suppressed {
		// the sender's own UI still reflects the send
		s.notifier.Emit(userRoom(senderID), "newMessage", newMessagePayload{Message: view})
		return view, nil
	}

	members, err := s.chatRepo.ListMembers(ctx, chat.ID)
	if err != nil {
		return view, nil
	}
	memberIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}
	s.fanOutToMembers(ctx, chat, memberIDs, "newMessage", func(memberID uint64) interface{} {
		payload := newMessagePayload{Message: view}
		if created {
			// first event after lazy creation carries the chat so clients
			// materialize it without a second round trip
			if cv, err := s.buildChatView(ctx, chat, memberID); err == nil {
				payload.Data = cv
			}
		}
		return payload
	})

	return view, nil
}

// MarkMessageAsSeen adds the reader to every message of the chat and resets
// the reader's unread counter. Idempotent.
func (s *chatService) MarkMessageAsSeen(ctx context.Context, readerID uint64, chatID string) error {
	if _, _, err := s.requireMember(ctx, chatID, readerID); err != nil {
		return err
	}
	if err := s.messageRepo.MarkAllRead(ctx, chatID, readerID); err != nil {
		return err
	}
	return s.chatRepo.ResetUnread(ctx, chatID, readerID)
}

func (s *chatService) GetUserChats(ctx context.Context, viewerID uint64) ([]*ChatView, error) {
	chats, err := s.chatRepo.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	views := make([]*ChatView, 0, len(chats))
	for _, chat := range chats {
		view, err := s.buildChatView(ctx, chat, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *chatService) GetChatMessages(ctx context.Context, viewerID uint64, chatID string) ([]*MessageView, error) {
	if _, _, err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListByChat(ctx, chatID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.messageViews(ctx, chatID, messages)
}

func (s *chatService) GetChatMedia(ctx context.Context, viewerID uint64, chatID string) ([]*MessageView, error) {
	if _, _, err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListMediaByChat(ctx, chatID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.messageViews(ctx, chatID, messages)
}

// GetMessageInfo returns one message with its read set; only the sender may
// look a message up this way.
func (s *chatService) GetMessageInfo(ctx context.Context, viewerID uint64, messageID string) (*MessageView, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.CodeNotFound, "message not found")
		}
		return nil, err
	}
	if msg.SenderID != viewerID {
		return nil, common.NewError(common.CodeNotFound, "message not found")
	}

	readers, err := s.messageRepo.ListReaders(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return s.messageView(ctx, msg, readers)
}

// ---- guards ----

func (s *chatService) requireChat(ctx context.Context, chatID string) (*dbmysql.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewError(common.CodeNotFound, "chat not found")
		}
		return nil, err
	}
	return chat, nil
}

// requireMember is the single membership guard every chat operation runs
// before touching anything.
func (s *chatService) requireMember(ctx context.Context, chatID string, userID uint64) (*dbmysql.Chat, *dbmysql.ChatMember, error) {
	chat, err := s.requireChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	member, err := s.chatRepo.GetMember(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, common.NewError(common.CodeUnauthorized, "not a member of this chat")
		}
		return nil, nil, err
	}
	return chat, member, nil
}

func (s *chatService) requireAdmin(ctx context.Context, chatID string, userID uint64) (*dbmysql.Chat, error) {
	chat, _, err := s.requireMember(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat.Type != dbmysql.ChatTypeGroup || chat.AdminID == nil || *chat.AdminID != userID {
		return nil, common.NewError(common.CodeUnauthorized, "only the chat admin can do that")
	}
	return chat, nil
}

// ---- helpers ----

// findOrCreatePrivate resolves the private chat between two users, creating
// it lazily. The PairKey unique index makes a creation race first-writer-
// wins; the loser retries the lookup.
func (s *chatService) findOrCreatePrivate(ctx context.Context, a, b uint64) (*dbmysql.Chat, bool, error) {
	if _, err := s.resolveUsers(ctx, []uint64{b}); err != nil {
		return nil, false, err
	}

	pairKey := dbmysql.PrivatePairKey(a, b)
	chat, err := s.chatRepo.GetPrivateByPairKey(ctx, pairKey)
	if err == nil {
		return chat, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	chat = &dbmysql.Chat{
		ID:      uuid.NewString(),
		Name:    dbmysql.ChatTypePrivate,
		Type:    dbmysql.ChatTypePrivate,
		PairKey: pairKey,
	}
	if err := s.chatRepo.Create(ctx, chat, []uint64{a, b}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			chat, err = s.chatRepo.GetPrivateByPairKey(ctx, pairKey)
			return chat, false, err
		}
		return nil, false, err
	}
	return chat, true, nil
}

func (s *chatService) privateCounterpart(ctx context.Context, chat *dbmysql.Chat, userID uint64) (uint64, error) {
	members, err := s.chatRepo.ListMembers(ctx, chat.ID)
	if err != nil {
		return 0, err
	}
	for _, m := range members {
		if m.UserID != userID {
			return m.UserID, nil
		}
	}
	return 0, common.NewError(common.CodeNotFound, "chat counterpart not found")
}

// resolveUsers loads the given users and fails with NotFound when any id
// does not resolve.
func (s *chatService) resolveUsers(ctx context.Context, userIDs []uint64) ([]*dbmysql.User, error) {
	users, err := s.users.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(userIDs) {
		return nil, common.NewError(common.CodeNotFound, "user not found")
	}
	return users, nil
}

// appendEventMessage persists a system message documenting a lifecycle
// action and makes it the chat's last message. Event messages do not touch
// unread counters.
func (s *chatService) appendEventMessage(ctx context.Context, chat *dbmysql.Chat, actorID uint64, content string) (*MessageView, error) {
	msg := &dbmysql.Message{
		ID:        uuid.NewString(),
		ChatID:    chat.ID,
		SenderID:  actorID,
		Content:   content,
		Kind:      dbmysql.MessageKindEvent,
		Delivered: true,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chatRepo.SetLastMessage(ctx, chat.ID, msg.ID); err != nil {
		return nil, err
	}
	return s.messageView(ctx, msg, nil)
}

// notifyChatChanged fans a lifecycle event message plus the refreshed chat
// out to the current member set.
func (s *chatService) notifyChatChanged(ctx context.Context, chat *dbmysql.Chat, event *MessageView) {
	members, err := s.chatRepo.ListMembers(ctx, chat.ID)
	if err != nil {
		return
	}
	memberIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}
	s.fanOutToMembers(ctx, chat, memberIDs, "newMessage", func(uint64) interface{} {
		return newMessagePayload{Message: event}
	})
	s.fanOutToMembers(ctx, chat, memberIDs, "chatUpdate", func(memberID uint64) interface{} {
		view, err := s.buildChatView(ctx, chat, memberID)
		if err != nil {
			return nil
		}
		return chatUpdatePayload{Chat: view}
	})
}

func (s *chatService) fanOutToMembers(ctx context.Context, chat *dbmysql.Chat, memberIDs []uint64, event string, payloadFor func(userID uint64) interface{}) {
	for _, memberID := range memberIDs {
		payload := payloadFor(memberID)
		if payload == nil {
			continue
		}
		s.notifier.Emit(userRoom(memberID), event, payload)
	}
}

func (s *chatService) buildChatView(ctx context.Context, chat *dbmysql.Chat, viewerID uint64) (*ChatView, error) {
	members, err := s.chatRepo.ListMembers(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]uint64, 0, len(members))
	var unread uint
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
		if m.UserID == viewerID {
			unread = m.UnreadCount
		}
	}

	users, err := s.users.GetUsersByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	memberViews := make([]*MemberView, 0, len(users))
	byID := make(map[uint64]*MemberView, len(users))
	for _, u := range users {
		mv := toMemberView(u)
		memberViews = append(memberViews, mv)
		byID[u.UserID] = mv
	}

	view := &ChatView{
		ID:          chat.ID,
		Name:        chat.Name,
		Type:        chat.Type,
		AdminID:     chat.AdminID,
		AvatarURL:   chat.AvatarURL,
		Members:     memberViews,
		UnreadCount: unread,
	}

	// private chats show the other member's profile, recomputed per viewer
	if chat.Type == dbmysql.ChatTypePrivate {
		for _, m := range members {
			if m.UserID == viewerID {
				continue
			}
			other, ok := byID[m.UserID]
			if !ok {
				break
			}
			view.Name = other.Name
			view.AvatarURL = other.AvatarURL
			blocked, err := s.blocks.IsBlocked(ctx, viewerID, m.UserID)
			if err == nil && blocked {
				view.AvatarURL = ""
			}
			break
		}
	}

	if chat.LastMessageID != nil {
		if last, err := s.messageRepo.GetByID(ctx, *chat.LastMessageID); err == nil {
			if lv, err := s.messageView(ctx, last, nil); err == nil {
				view.LastMessage = lv
			}
		}
	}

	return view, nil
}

func (s *chatService) messageView(ctx context.Context, msg *dbmysql.Message, readers []uint64) (*MessageView, error) {
	if readers == nil {
		readers = []uint64{}
	}
	view := &MessageView{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Kind:      msg.Kind,
		Caption:   msg.Caption,
		Delivered: msg.Delivered,
		ReadBy:    readers,
		CreatedAt: msg.CreatedAt,
	}
	if sender, err := s.users.GetUserByID(ctx, msg.SenderID); err == nil {
		view.Sender = toMemberView(sender)
	}
	return view, nil
}

func (s *chatService) messageViews(ctx context.Context, chatID string, messages []*dbmysql.Message) ([]*MessageView, error) {
	senderIDs := make([]uint64, 0, len(messages))
	seen := make(map[uint64]bool)
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders, err := s.users.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	senderByID := make(map[uint64]*MemberView, len(senders))
	for _, u := range senders {
		senderByID[u.UserID] = toMemberView(u)
	}

	reads, err := s.messageRepo.ListReadsByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	readersByMessage := make(map[string][]uint64)
	for _, rd := range reads {
		readersByMessage[rd.MessageID] = append(readersByMessage[rd.MessageID], rd.UserID)
	}

	views := make([]*MessageView, 0, len(messages))
	for _, m := range messages {
		readers := readersByMessage[m.ID]
		if readers == nil {
			readers = []uint64{}
		}
		views = append(views, &MessageView{
			ID:        m.ID,
			ChatID:    m.ChatID,
			SenderID:  m.SenderID,
			Sender:    senderByID[m.SenderID],
			Content:   m.Content,
			Kind:      m.Kind,
			Caption:   m.Caption,
			Delivered: m.Delivered,
			ReadBy:    readers,
			CreatedAt: m.CreatedAt,
		})
	}
	return views, nil
}

func toMemberView(u *dbmysql.User) *MemberView {
	return &MemberView{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Online:    u.Online,
		LastSeen:  u.LastSeen,
	}
}

func dedupeWithout(ids []uint64, exclude uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]bool)
	for _, id := range ids {
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
