package user

import (
	"encoding/json"
	"net/http"

	"gochat/internal/common"
)

// Handler wires the HTTP API onto the user service. Method names follow the
// public operation names.
type Handler struct {
	userService UserService
}

func NewHandler(userService UserService) *Handler {
	return &Handler{userService: userService}
}

type createUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	u, err := h.userService.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.PasswordConfirmation)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]uint64{"user_id": u.UserID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	access, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req refreshRequest
	// body is optional; without a token every session of the user is revoked
	json.NewDecoder(r.Body).Decode(&req)

	if err := h.userService.Logout(r.Context(), userID, req.RefreshToken); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	u, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, u)
}

type changePasswordRequest struct {
	OldPassword          string `json:"old_password"`
	NewPassword          string `json:"new_password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword, req.PasswordConfirmation); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// EditProfile accepts multipart form data: a "name" field and an optional
// "avatar" file.
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid multipart form"))
		return
	}

	name := r.FormValue("name")

	var avatar *AvatarUpload
	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatar = &AvatarUpload{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Content:  file,
		}
	}

	u, err := h.userService.EditProfile(r.Context(), userID, name, avatar)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, u)
}

type blockRequest struct {
	UserID uint64 `json:"user_id"`
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	if err := h.userService.BlockUser(r.Context(), userID, req.UserID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "user blocked"})
}

func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	if err := h.userService.UnblockUser(r.Context(), userID, req.UserID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "user unblocked"})
}

func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	contacts, err := h.userService.GetContacts(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, contacts)
}

type addContactRequest struct {
	Email string `json:"email"`
}

func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req addContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	contact, err := h.userService.AddContact(r.Context(), userID, req.Email)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, contact)
}

type editContactRequest struct {
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
}

func (h *Handler) EditContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req editContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	if err := h.userService.EditContact(r.Context(), userID, req.UserID, req.Name); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "contact updated"})
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewError(common.CodeUnauthenticated, "not authenticated"))
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, common.NewError(common.CodeValidation, "invalid request body"))
		return
	}

	if err := h.userService.DeleteContact(r.Context(), userID, req.UserID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}
