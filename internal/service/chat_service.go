package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/mandato360/internal/chat"
	"github.com/mmynk/mandato360/internal/models"
)

// ChatService exposes the Consill IA assistant over HTTP.
type ChatService struct {
	assistant *chat.Assistant
}

// NewChatService creates a new ChatService.
func NewChatService(assistant *chat.Assistant) *ChatService {
	return &ChatService{assistant: assistant}
}

// Register mounts the chat routes on r.
func (s *ChatService) Register(r *mux.Router) {
	r.HandleFunc("/api/chat/conversations", s.ListConversations).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/conversations", s.CreateConversation).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/conversations/{id}", s.GetConversation).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/conversations/{id}", s.RenameConversation).Methods(http.MethodPatch)
	r.HandleFunc("/api/chat/conversations/{id}", s.DeleteConversation).Methods(http.MethodDelete)
	r.HandleFunc("/api/chat/conversations/{id}/messages", s.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/conversations/{id}/export.txt", s.ExportConversation).Methods(http.MethodGet)
}

// ConversationList is the sidebar content.
type ConversationList struct {
	Online        bool                  `json:"online"`
	Conversations []models.Conversation `json:"conversations"`
}

// ListConversations lists conversations, filtered by ?q= on the title.
// The first visit creates the initial conversation.
func (s *ChatService) ListConversations(w http.ResponseWriter, r *http.Request) {
	if _, err := s.assistant.EnsureConversation(r.Context()); err != nil {
		writeError(w, r, err, "Erro ao carregar conversas")
		return
	}
	list, err := s.assistant.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err, "Erro ao carregar conversas")
		return
	}
	writeJSON(w, http.StatusOK, ConversationList{Online: s.assistant.Online(), Conversations: list})
}

// CreateConversation starts a new conversation.
func (s *ChatService) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.assistant.NewConversation(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao criar conversa")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// GetConversation returns one conversation.
func (s *ChatService) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.assistant.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Conversa não encontrada")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// RenameConversation applies {"title": "..."}.
func (s *ChatService) RenameConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}
	conv, err := s.assistant.Rename(r.Context(), mux.Vars(r)["id"], req.Title)
	if err != nil {
		writeError(w, r, err, "Erro ao renomear conversa")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteConversation removes a conversation and returns the one that
// becomes active.
func (s *ChatService) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	active, err := s.assistant.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Erro ao excluir conversa")
		return
	}
	writeJSON(w, http.StatusOK, active)
}

// SendMessage posts {"content": "..."} and returns the conversation with
// the user message and the reply appended. Assistant failures are part of
// the conversation, not HTTP errors.
func (s *ChatService) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}

	slog.Info("Chat message received", "conversation_id", id, "length", len(req.Content))
	conv, err := s.assistant.Send(r.Context(), id, req.Content)
	if err != nil {
		writeError(w, r, err, "Erro ao enviar mensagem")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// ExportConversation downloads the plain-text transcript.
func (s *ChatService) ExportConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	text, err := s.assistant.Export(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Conversa não encontrada")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", chat.ExportFilename(id)))
	w.Write([]byte(text))
}
