package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gochat/internal/chat/service"
	"gochat/internal/common"

	"github.com/gorilla/mux"
)

// Handler wires the HTTP API onto the chat service. Method names follow the
// public operation names.
type Handler struct {
	chatService service.ChatService
}

func NewHandler(chatService service.ChatService) *Handler {
	return &Handler{chatService: chatService}
}

type createChatRequest struct {
	MemberIDs []uint64 `json:"member_ids"`
	Name      string   `json:"name"`
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	chat, err := h.chatService.CreateChat(r.Context(), userID, req.MemberIDs, req.Name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, chat)
}

// EditChat accepts multipart form data: a "name" field and an optional
// "avatar" file.
func (h *Handler) EditChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	chatID := mux.Vars(r)["chatId"]

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid multipart form"))
		return
	}

	name := r.FormValue("name")

	var avatar *service.FileUpload
	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatar = &service.FileUpload{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  file,
		}
	}

	chat, err := h.chatService.EditChat(r.Context(), userID, chatID, name, avatar)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, chat)
}

type addUsersRequest struct {
	UserIDs []uint64 `json:"user_ids"`
}

func (h *Handler) AddUsersToChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	chatID := mux.Vars(r)["chatId"]

	var req addUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	chat, err := h.chatService.AddUsersToChat(r.Context(), userID, chatID, req.UserIDs)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, chat)
}

func (h *Handler) DeleteUserFromChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	vars := mux.Vars(r)
	chatID := vars["chatId"]
	target, err := strconv.ParseUint(vars["userId"], 10, 64)
	if err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid user id"))
		return
	}

	chat, err := h.chatService.DeleteUserFromChat(r.Context(), userID, chatID, target)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, chat)
}

type sendMessageRequest struct {
	ChatID    string   `json:"chat_id"`
	MemberIDs []uint64 `json:"member_ids"`
	Content   string   `json:"content"`
	Kind      string   `json:"kind"`
	Caption   string   `json:"caption"`
}

// SendMessage accepts either a JSON body (text messages) or multipart form
// data with a "file" part (media messages).
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var in service.SendMessageInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			common.WriteError(w, common.NewError(common.CodeValidation, "invalid multipart form"))
			return
		}
		in.ChatID = r.FormValue("chat_id")
		in.Kind = r.FormValue("kind")
		in.Caption = r.FormValue("caption")
		in.Content = r.FormValue("content")
		for _, raw := range r.Form["member_ids"] {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				common.WriteError(w, common.NewError(common.CodeValidation, "invalid member id"))
				return
			}
			in.MemberIDs = append(in.MemberIDs, id)
		}
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			in.File = &service.FileUpload{
				Filename: header.Filename,
				MimeType: header.Header.Get("Content-Type"),
				Content:  file,
			}
		}
	} else {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
			return
		}
		in = service.SendMessageInput{
			ChatID:    req.ChatID,
			MemberIDs: req.MemberIDs,
			Content:   req.Content,
			Kind:      req.Kind,
			Caption:   req.Caption,
		}
	}

	msg, err := h.chatService.SendMessage(r.Context(), userID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) MarkMessageAsSeen(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	chatID := mux.Vars(r)["chatId"]

	if err := h.chatService.MarkMessageAsSeen(r.Context(), userID, chatID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "marked as seen"})
}

func (h *Handler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	chats, err := h.chatService.GetUserChats(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, chats)
}

func (h *Handler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	chatID := mux.Vars(r)["chatId"]

	messages, err := h.chatService.GetChatMessages(r.Context(), userID, chatID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, messages)
}

func (h *Handler) GetChatMedia(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	chatID := mux.Vars(r)["chatId"]

	media, err := h.chatService.GetChatMedia(r.Context(), userID, chatID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, media)
}

func (h *Handler) GetMessageInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}
	messageID := mux.Vars(r)["messageId"]

	msg, err := h.chatService.GetMessageInfo(r.Context(), userID, messageID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, msg)
}
