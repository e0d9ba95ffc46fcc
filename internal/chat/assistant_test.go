package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/mmynk/mandato360/internal/metrics"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/storage"
	"github.com/mmynk/mandato360/internal/storage/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	system  string
	history []models.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, systemInstruction string, history []models.Message) (string, error) {
	f.mu.Lock()
	f.system = systemInstruction
	f.history = append([]models.Message(nil), history...)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func newTestAssistant(t *testing.T, c Completer, opts Options) *Assistant {
	t.Helper()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAssistant(memory.New(storage.Seed{}), c, opts)
}

func contents(conv models.Conversation) []string {
	var out []string
	for _, m := range conv.Messages {
		out = append(out, string(m.Role)+":"+m.Content)
	}
	return out
}

func TestNewConversation(t *testing.T) {
	a := newTestAssistant(t, nil, Options{})
	conv, err := a.NewConversation(context.Background())
	if err != nil {
		t.Fatalf("NewConversation failed: %v", err)
	}
	if conv.ID == "" || conv.Title != DefaultTitle {
		t.Errorf("Unexpected conversation %+v", conv)
	}
	if diff := cmp.Diff([]string{"model:" + DefaultWelcome}, contents(conv)); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSend(t *testing.T) {
	tests := []struct {
		name      string
		completer Completer
		want      string
	}{
		{
			name:      "offline without completer",
			completer: nil,
			want:      OfflineMessage,
		},
		{
			name:      "model reply",
			completer: &fakeCompleter{reply: "**Estratégia** pronta"},
			want:      "**Estratégia** pronta",
		},
		{
			name:      "service error becomes sentinel",
			completer: &fakeCompleter{err: errors.New("connection refused")},
			want:      ErrorMessage,
		},
		{
			name:      "empty reply",
			completer: &fakeCompleter{reply: "  "},
			want:      EmptyReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := metrics.New()
			a := newTestAssistant(t, tt.completer, Options{Metrics: m})

			conv, err := a.NewConversation(ctx)
			if err != nil {
				t.Fatalf("NewConversation failed: %v", err)
			}
			conv, err = a.Send(ctx, conv.ID, "Qual a melhor estratégia?")
			if err != nil {
				t.Fatalf("Send returned error: %v", err)
			}

			want := []string{
				"model:" + DefaultWelcome,
				"user:Qual a melhor estratégia?",
				"model:" + tt.want,
			}
			if diff := cmp.Diff(want, contents(conv)); diff != "" {
				t.Errorf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSendPassesHistoryAndInstruction(t *testing.T) {
	ctx := context.Background()
	fake := &fakeCompleter{reply: "ok"}
	a := newTestAssistant(t, fake, Options{SystemInstruction: "Você é a Consill IA."})

	conv, _ := a.NewConversation(ctx)
	if _, err := a.Send(ctx, conv.ID, "primeira"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := a.Send(ctx, conv.ID, "segunda"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if fake.system != "Você é a Consill IA." {
		t.Errorf("Unexpected system instruction %q", fake.system)
	}
	var got []string
	for _, m := range fake.history {
		got = append(got, m.Content)
	}
	want := []string{DefaultWelcome, "primeira", "ok", "segunda"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestSendTimeout(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, &fakeCompleter{block: true}, Options{Timeout: 10 * time.Millisecond})

	conv, _ := a.NewConversation(ctx)
	conv, err := a.Send(ctx, conv.ID, "olá")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if last := conv.Messages[len(conv.Messages)-1]; last.Content != ErrorMessage {
		t.Errorf("Expected error sentinel after timeout, got %q", last.Content)
	}
}

func TestSendErrors(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, nil, Options{})
	conv, _ := a.NewConversation(ctx)

	if _, err := a.Send(ctx, conv.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Expected ErrEmptyMessage, got %v", err)
	}
	if _, err := a.Send(ctx, "missing", "olá"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	got, _ := a.Get(ctx, conv.ID)
	if len(got.Messages) != 1 {
		t.Errorf("Blank message must not be stored, got %d messages", len(got.Messages))
	}
}

// failingAppendStore rejects every AppendMessage call.
type failingAppendStore struct {
	storage.Store
}

func (failingAppendStore) AppendMessage(context.Context, string, models.Message) (models.Conversation, error) {
	return models.Conversation{}, errors.New("disk full")
}

func TestSendKeepsTitleWhenAppendFails(t *testing.T) {
	ctx := context.Background()
	store := failingAppendStore{Store: memory.New(storage.Seed{})}
	a := NewAssistant(store, &fakeCompleter{reply: "ok"}, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	conv, err := a.NewConversation(ctx)
	if err != nil {
		t.Fatalf("NewConversation failed: %v", err)
	}
	if _, err := a.Send(ctx, conv.ID, "Como montar uma estratégia para Porto Alegre?"); err == nil {
		t.Fatal("Expected the append error to surface")
	}

	got, err := a.Get(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != DefaultTitle {
		t.Errorf("Title changed without a stored message: %q", got.Title)
	}
	if len(got.Messages) != 1 {
		t.Errorf("Expected only the welcome message, got %d", len(got.Messages))
	}
}

func TestAutoTitle(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, &fakeCompleter{reply: "ok"}, Options{})

	conv, _ := a.NewConversation(ctx)
	conv, _ = a.Send(ctx, conv.ID, "Como montar uma estratégia para Porto Alegre?")
	if conv.Title != "Como montar uma estratégi..." {
		t.Errorf("Unexpected title %q", conv.Title)
	}

	// Only the first message renames.
	conv, _ = a.Send(ctx, conv.ID, "Outra pergunta")
	if conv.Title != "Como montar uma estratégi..." {
		t.Errorf("Title changed on second message: %q", conv.Title)
	}

	short, _ := a.NewConversation(ctx)
	short, _ = a.Send(ctx, short.ID, "Leis municipais")
	if short.Title != "Leis municipais" {
		t.Errorf("Unexpected short title %q", short.Title)
	}

	renamed, _ := a.NewConversation(ctx)
	if _, err := a.Rename(ctx, renamed.ID, "Minha pauta"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	renamed, _ = a.Send(ctx, renamed.ID, "Pergunta qualquer")
	if renamed.Title != "Minha pauta" {
		t.Errorf("Custom title was overwritten: %q", renamed.Title)
	}
}

func TestRenameSearchDelete(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, nil, Options{})

	first, _ := a.NewConversation(ctx)
	second, _ := a.NewConversation(ctx)

	if _, err := a.Rename(ctx, first.ID, "Estratégia Eleitoral 2026"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if _, err := a.Rename(ctx, first.ID, " "); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Expected ErrEmptyTitle, got %v", err)
	}

	found, err := a.Search(ctx, "eleitoral")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != first.ID {
		t.Errorf("Unexpected search result %+v", found)
	}

	active, err := a.Delete(ctx, second.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if active.ID != first.ID {
		t.Errorf("Expected remaining conversation to become active, got %s", active.ID)
	}

	active, err = a.Delete(ctx, first.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if active.ID == first.ID || active.Title != DefaultTitle {
		t.Errorf("Expected a fresh conversation, got %+v", active)
	}
	all, _ := a.Search(ctx, "")
	if len(all) != 1 {
		t.Errorf("Expected exactly one conversation after deleting all, got %d", len(all))
	}

	if _, err := a.Delete(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTranscript(t *testing.T) {
	ts := time.Date(2026, 3, 5, 14, 7, 9, 0, time.UTC)
	conv := models.Conversation{
		ID: "abc",
		Messages: []models.Message{
			{Role: models.RoleModel, Content: "Olá!", Timestamp: ts},
			{Role: models.RoleUser, Content: "Oi", Timestamp: ts.Add(time.Minute)},
		},
	}

	want := "[CONSILL IA - 05/03/2026, 14:07:09]\nOlá!\n" +
		"\n-------------------\n" +
		"[USUÁRIO - 05/03/2026, 14:08:09]\nOi\n"
	if got := Transcript(conv); got != want {
		t.Errorf("Transcript mismatch:\n got %q\nwant %q", got, want)
	}
	if got := ExportFilename("abc"); got != "consill-chat-abc.txt" {
		t.Errorf("Unexpected filename %q", got)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	a := newTestAssistant(t, nil, Options{WelcomeMessage: "Bem-vindo"})
	conv, _ := a.NewConversation(ctx)

	text, err := a.Export(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasPrefix(text, "[CONSILL IA - ") || !strings.HasSuffix(text, "]\nBem-vindo\n") {
		t.Errorf("Unexpected transcript %q", text)
	}
	if _, err := a.Export(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestToContentsSkipsLeadingModelTurns(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleModel, Content: "welcome"},
		{Role: models.RoleUser, Content: "pergunta"},
		{Role: models.RoleModel, Content: "resposta"},
		{Role: models.RoleUser, Content: "outra"},
	}
	got := toContents(history)
	if len(got) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "model" {
		t.Errorf("Unexpected roles %q %q", got[0].Role, got[1].Role)
	}
	if got[0].Parts[0].Text != "pergunta" {
		t.Errorf("Unexpected first text %q", got[0].Parts[0].Text)
	}
}
