package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/edabot/internal/service/chat"
	"github.com/sandevgo/edabot/pkg/log"
)

// Conversations is the piece of the chat orchestrator the API needs.
type Conversations interface {
	Handle(ctx context.Context, sessionID, userText string) (chat.Reply, error)
}

type Handler struct {
	conversations Conversations
}

func NewHandler(conversations Conversations) *Handler {
	return &Handler{conversations: conversations}
}

type processRequest struct {
	ResponseText string `json:"response_text"`
	SessionID    string `json:"session_id"`
}

type processResponse struct {
	Status        string `json:"status"`
	ProcessedText string `json:"processed_text"`
	SessionID     string `json:"session_id"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ProcessText handles one conversation exchange. Shape validation is
// the only hard failure here: pipeline errors still answer with a
// success envelope whose text carries the detail, so the gateway always
// has something conversational to relay.
func (h *Handler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "No response text provided"})
		return
	}

	if strings.TrimSpace(req.ResponseText) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: "No response text provided"})
		return
	}

	reply, err := h.conversations.Handle(r.Context(), req.SessionID, req.ResponseText)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("session_id", reply.SessionID).Msg("pipeline failed")
		reply.Answer = fmt.Sprintf("Error: %v", err)
	}

	writeJSON(w, http.StatusOK, processResponse{
		Status:        "success",
		ProcessedText: reply.Answer,
		SessionID:     reply.SessionID,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error","message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}
