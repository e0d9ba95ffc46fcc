// Package storage provides abstractions for dashboard state storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/mandato360/internal/models"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("not found")

// Seed is the initial state a store starts from.
type Seed struct {
	Pool         models.Pool
	Categories   []models.CategoryCap
	Contributors []models.Contributor
	Financials   []models.FinancialYear
	Contacts     []models.Contact
}

// Store defines the state operations the services need.
// Implementations must be safe for concurrent use and must never hand out
// slices or pointers shared with their internal state.
type Store interface {
	// GetPool returns the equity pool configuration.
	GetPool(ctx context.Context) (models.Pool, error)

	// SetPool replaces the equity pool configuration.
	SetPool(ctx context.Context, pool models.Pool) error

	// ListCategories returns the category caps in display order.
	ListCategories(ctx context.Context) ([]models.CategoryCap, error)

	// UpdateCategory replaces the category with the same ID.
	// Returns ErrNotFound if no such category exists.
	UpdateCategory(ctx context.Context, category models.CategoryCap) error

	// ListContributors returns the contributors in insertion order.
	ListContributors(ctx context.Context) ([]models.Contributor, error)

	// GetContributor retrieves a contributor by ID.
	GetContributor(ctx context.Context, id string) (models.Contributor, error)

	// CreateContributor appends a contributor. When c.ID is empty the store
	// assigns the next sequential ID and writes it back into c.
	CreateContributor(ctx context.Context, c *models.Contributor) error

	// UpdateContributor replaces the contributor with the same ID.
	UpdateContributor(ctx context.Context, c models.Contributor) error

	// DeleteContributor removes a contributor.
	DeleteContributor(ctx context.Context, id string) error

	// ListFinancials returns the projection rows in table order.
	ListFinancials(ctx context.Context) ([]models.FinancialYear, error)

	// ReplaceFinancials swaps the whole projection table.
	ReplaceFinancials(ctx context.Context, rows []models.FinancialYear) error

	// ListContacts returns the CRM contacts.
	ListContacts(ctx context.Context) ([]models.Contact, error)

	// ListConversations returns conversations, most recently created first.
	ListConversations(ctx context.Context) ([]models.Conversation, error)

	// GetConversation retrieves a conversation by ID.
	GetConversation(ctx context.Context, id string) (models.Conversation, error)

	// CreateConversation stores a new conversation. The ID is generated when
	// empty and written back into conv.
	CreateConversation(ctx context.Context, conv *models.Conversation) error

	// AppendMessage adds a message to a conversation and returns the
	// updated conversation.
	AppendMessage(ctx context.Context, conversationID string, msg models.Message) (models.Conversation, error)

	// RenameConversation changes a conversation title.
	RenameConversation(ctx context.Context, id, title string) error

	// DeleteConversation removes a conversation.
	DeleteConversation(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
