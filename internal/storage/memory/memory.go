// Package memory provides an in-memory implementation of the storage.Store
// interface. State is discarded when the process exits.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on top of plain slices.
type Store struct {
	mu sync.RWMutex

	pool          models.Pool
	categories    []models.CategoryCap
	contributors  []models.Contributor
	financials    []models.FinancialYear
	contacts      []models.Contact
	conversations []models.Conversation

	now func() time.Time
}

// New creates a store holding a copy of seed.
func New(seed storage.Seed) *Store {
	s := &Store{
		pool:       seed.Pool,
		categories: slices.Clone(seed.Categories),
		financials: slices.Clone(seed.Financials),
		contacts:   slices.Clone(seed.Contacts),
		now:        time.Now,
	}
	for _, c := range seed.Contributors {
		s.contributors = append(s.contributors, c.Clone())
	}
	return s
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// GetPool returns the pool configuration.
func (s *Store) GetPool(ctx context.Context) (models.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool, nil
}

// SetPool replaces the pool configuration.
func (s *Store) SetPool(ctx context.Context, pool models.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = pool
	return nil
}

// ListCategories returns a copy of the category caps.
func (s *Store) ListCategories(ctx context.Context) ([]models.CategoryCap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories), nil
}

// UpdateCategory replaces a category cap by ID.
func (s *Store) UpdateCategory(ctx context.Context, category models.CategoryCap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.categories, func(c models.CategoryCap) bool { return c.ID == category.ID })
	if i < 0 {
		return fmt.Errorf("category %s: %w", category.ID, storage.ErrNotFound)
	}
	s.categories[i] = category
	return nil
}

// ListContributors returns copies of all contributors.
func (s *Store) ListContributors(ctx context.Context) ([]models.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Contributor, 0, len(s.contributors))
	for _, c := range s.contributors {
		out = append(out, c.Clone())
	}
	return out, nil
}

// GetContributor retrieves a contributor by ID.
func (s *Store) GetContributor(ctx context.Context, id string) (models.Contributor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.contributorIndex(id)
	if i < 0 {
		return models.Contributor{}, fmt.Errorf("contributor %s: %w", id, storage.ErrNotFound)
	}
	return s.contributors[i].Clone(), nil
}

// CreateContributor appends c, assigning the next numeric ID when c.ID is
// empty. The contributor is validated after the ID is assigned.
func (s *Store) CreateContributor(ctx context.Context, c *models.Contributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextContributorID()
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if s.contributorIndex(c.ID) >= 0 {
		return fmt.Errorf("%w: duplicate id %s", models.ErrInvalidContributor, c.ID)
	}
	s.contributors = append(s.contributors, c.Clone())
	return nil
}

// UpdateContributor replaces a contributor by ID.
func (s *Store) UpdateContributor(ctx context.Context, c models.Contributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.contributorIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("contributor %s: %w", c.ID, storage.ErrNotFound)
	}
	s.contributors[i] = c.Clone()
	return nil
}

// DeleteContributor removes a contributor by ID.
func (s *Store) DeleteContributor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.contributorIndex(id)
	if i < 0 {
		return fmt.Errorf("contributor %s: %w", id, storage.ErrNotFound)
	}
	s.contributors = slices.Delete(s.contributors, i, i+1)
	return nil
}

func (s *Store) contributorIndex(id string) int {
	return slices.IndexFunc(s.contributors, func(c models.Contributor) bool { return c.ID == id })
}

// nextContributorID returns one more than the largest numeric ID in use.
// Non-numeric IDs (from override fixtures) are ignored.
func (s *Store) nextContributorID() string {
	highest := 0
	for _, c := range s.contributors {
		if n, err := strconv.Atoi(c.ID); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// ListFinancials returns a copy of the projection table.
func (s *Store) ListFinancials(ctx context.Context) ([]models.FinancialYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.financials), nil
}

// ReplaceFinancials swaps the projection table.
func (s *Store) ReplaceFinancials(ctx context.Context, rows []models.FinancialYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.financials = slices.Clone(rows)
	return nil
}

// ListContacts returns a copy of the CRM contacts.
func (s *Store) ListContacts(ctx context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contacts), nil
}

// ListConversations returns copies of all conversations, newest first.
func (s *Store) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, c.Clone())
	}
	return out, nil
}

// GetConversation retrieves a conversation by ID.
func (s *Store) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.conversationIndex(id)
	if i < 0 {
		return models.Conversation{}, fmt.Errorf("conversation %s: %w", id, storage.ErrNotFound)
	}
	return s.conversations[i].Clone(), nil
}

// CreateConversation prepends conv so the list stays newest first.
func (s *Store) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = s.now()
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID == "" {
			conv.Messages[i].ID = uuid.New().String()
		}
	}
	s.conversations = slices.Insert(s.conversations, 0, conv.Clone())
	return nil
}

// AppendMessage adds msg to a conversation, generating its ID and timestamp
// when missing.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg models.Message) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.conversationIndex(conversationID)
	if i < 0 {
		return models.Conversation{}, fmt.Errorf("conversation %s: %w", conversationID, storage.ErrNotFound)
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.conversations[i].Messages = append(s.conversations[i].Messages, msg)
	return s.conversations[i].Clone(), nil
}

// RenameConversation changes a conversation title.
func (s *Store) RenameConversation(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.conversationIndex(id)
	if i < 0 {
		return fmt.Errorf("conversation %s: %w", id, storage.ErrNotFound)
	}
	s.conversations[i].Title = title
	return nil
}

// DeleteConversation removes a conversation by ID.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.conversationIndex(id)
	if i < 0 {
		return fmt.Errorf("conversation %s: %w", id, storage.ErrNotFound)
	}
	s.conversations = slices.Delete(s.conversations, i, i+1)
	return nil
}

func (s *Store) conversationIndex(id string) int {
	return slices.IndexFunc(s.conversations, func(c models.Conversation) bool { return c.ID == id })
}
