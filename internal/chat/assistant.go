// Package chat implements the Consill IA assistant: multi-conversation chat
// backed by a hosted completion service.
//
// Service failures never reach the caller. They are recorded in the
// conversation as a model message with a fixed Portuguese text.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/mandato360/internal/metrics"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/storage"
)

// Texts shown to the user.
const (
	DefaultTitle   = "Nova Conversa"
	DefaultWelcome = "Olá! Iniciei um novo contexto. Como posso auxiliar estrategicamente agora?"
	OfflineMessage = "⚠️ Consill IA em modo offline: API Key não configurada."
	ErrorMessage   = "⚠️ Ocorreu um erro ao processar sua solicitação. Verifique sua conexão ou chave de API."
	EmptyReply     = "Sem resposta."
)

const (
	titleMaxRunes  = 25
	transcriptSep  = "\n-------------------\n"
	timestampStyle = "02/01/2006, 15:04:05"
)

var (
	// ErrEmptyMessage is returned when a blank message is sent.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrEmptyTitle is returned when a conversation is renamed to a blank title.
	ErrEmptyTitle = errors.New("title is empty")
)

// Options configures an Assistant.
type Options struct {
	SystemInstruction string
	WelcomeMessage    string

	// Timeout bounds one completion. Zero means no timeout beyond ctx.
	Timeout time.Duration

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Assistant manages conversations and talks to the completion service.
type Assistant struct {
	store     storage.Store
	completer Completer
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewAssistant creates an assistant. A nil completer puts it in offline
// mode: every message gets OfflineMessage as reply.
func NewAssistant(store storage.Store, completer Completer, opts Options) *Assistant {
	if opts.WelcomeMessage == "" {
		opts.WelcomeMessage = DefaultWelcome
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		store:     store,
		completer: completer,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Online reports whether a completion service is configured.
func (a *Assistant) Online() bool {
	return a.completer != nil
}

// NewConversation creates a conversation holding the welcome message.
func (a *Assistant) NewConversation(ctx context.Context) (models.Conversation, error) {
	now := a.now()
	conv := models.Conversation{
		Title:     DefaultTitle,
		CreatedAt: now,
		Messages: []models.Message{{
			Role:      models.RoleModel,
			Content:   a.opts.WelcomeMessage,
			Timestamp: now,
		}},
	}
	if err := a.store.CreateConversation(ctx, &conv); err != nil {
		return models.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	a.logger.Info("Conversation created", "conversation_id", conv.ID)
	return conv, nil
}

// EnsureConversation returns the newest conversation, creating one when
// none exists.
func (a *Assistant) EnsureConversation(ctx context.Context) (models.Conversation, error) {
	list, err := a.store.ListConversations(ctx)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(list) > 0 {
		return list[0], nil
	}
	return a.NewConversation(ctx)
}

// Get returns one conversation.
func (a *Assistant) Get(ctx context.Context, id string) (models.Conversation, error) {
	return a.store.GetConversation(ctx, id)
}

// Search lists conversations whose title contains term, ignoring case.
// A blank term lists everything, newest first.
func (a *Assistant) Search(ctx context.Context, term string) ([]models.Conversation, error) {
	list, err := a.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list, nil
	}
	out := make([]models.Conversation, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Title), term) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Send appends the user message and the assistant reply to a conversation
// and returns the updated conversation. Only a blank message or a storage
// failure produce an error; completion failures become ErrorMessage.
func (a *Assistant) Send(ctx context.Context, id, text string) (models.Conversation, error) {
	if strings.TrimSpace(text) == "" {
		return models.Conversation{}, ErrEmptyMessage
	}

	conv, err := a.store.GetConversation(ctx, id)
	if err != nil {
		return models.Conversation{}, err
	}
	rename := conv.Title == DefaultTitle && len(conv.Messages) <= 1

	conv, err = a.store.AppendMessage(ctx, id, models.Message{
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: a.now(),
	})
	if err != nil {
		return models.Conversation{}, err
	}
	if rename {
		if err := a.store.RenameConversation(ctx, id, autoTitle(text)); err != nil {
			return models.Conversation{}, err
		}
	}

	reply := a.complete(ctx, conv)

	conv, err = a.store.AppendMessage(ctx, id, models.Message{
		Role:      models.RoleModel,
		Content:   reply,
		Timestamp: a.now(),
	})
	if err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

func (a *Assistant) complete(ctx context.Context, conv models.Conversation) string {
	if a.completer == nil {
		a.opts.Metrics.ObserveChatSend(metrics.ChatOutcomeOffline)
		return OfflineMessage
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	start := a.now()
	reply, err := a.completer.Complete(ctx, a.opts.SystemInstruction, conv.Messages)
	if err != nil {
		a.logger.Error("Chat completion failed",
			"conversation_id", conv.ID,
			"error", err,
		)
		a.opts.Metrics.ObserveChatSend(metrics.ChatOutcomeError)
		return ErrorMessage
	}
	a.logger.Info("Chat completion ok",
		"conversation_id", conv.ID,
		"duration_ms", a.now().Sub(start).Milliseconds(),
		"reply_length", len(reply),
	)
	if strings.TrimSpace(reply) == "" {
		a.opts.Metrics.ObserveChatSend(metrics.ChatOutcomeEmpty)
		return EmptyReply
	}
	a.opts.Metrics.ObserveChatSend(metrics.ChatOutcomeOK)
	return reply
}

// Rename sets a conversation title.
func (a *Assistant) Rename(ctx context.Context, id, title string) (models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Conversation{}, ErrEmptyTitle
	}
	if err := a.store.RenameConversation(ctx, id, title); err != nil {
		return models.Conversation{}, err
	}
	return a.store.GetConversation(ctx, id)
}

// Delete removes a conversation and returns the conversation that becomes
// active: the newest remaining one, or a fresh one when none is left.
func (a *Assistant) Delete(ctx context.Context, id string) (models.Conversation, error) {
	if err := a.store.DeleteConversation(ctx, id); err != nil {
		return models.Conversation{}, err
	}
	a.logger.Info("Conversation deleted", "conversation_id", id)
	return a.EnsureConversation(ctx)
}

// Export renders a conversation as a plain-text transcript.
func (a *Assistant) Export(ctx context.Context, id string) (string, error) {
	conv, err := a.store.GetConversation(ctx, id)
	if err != nil {
		return "", err
	}
	return Transcript(conv), nil
}

// ExportFilename is the download name of a transcript.
func ExportFilename(id string) string {
	return "consill-chat-" + id + ".txt"
}

// Transcript formats every message as "[AUTHOR - timestamp]\ncontent\n".
func Transcript(conv models.Conversation) string {
	parts := make([]string, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		author := "CONSILL IA"
		if m.Role == models.RoleUser {
			author = "USUÁRIO"
		}
		parts = append(parts, fmt.Sprintf("[%s - %s]\n%s\n", author, m.Timestamp.Format(timestampStyle), m.Content))
	}
	return strings.Join(parts, transcriptSep)
}

// autoTitle is the first message cut to 25 characters.
func autoTitle(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	return string([]rune(text)[:titleMaxRunes]) + "..."
}
