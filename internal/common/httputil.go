package common

import (
	"encoding/json"
	"log"
	"net/http"
)

type errorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// WriteError maps a taxonomy error onto the HTTP response. Untyped errors
// become a plain 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		msg = "internal server error"
	}
	WriteJSON(w, status, errorResponse{Error: msg, Code: CodeOf(err)})
}
