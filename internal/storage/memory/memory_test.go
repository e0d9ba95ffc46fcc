package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/storage"
)

func testSeed() storage.Seed {
	return storage.Seed{
		Pool: models.Pool{SizePercent: 5, Mode: models.PoolModePhantom},
		Categories: []models.CategoryCap{
			{ID: "dev", Name: "Desenvolvimento", MaxPercent: 3},
			{ID: "legal", Name: "Jurídico", MaxPercent: 0.5},
		},
		Contributors: []models.Contributor{
			{ID: "1", Name: "Dev Senior", Category: "dev", Type: models.ContributionHours, Quantity: 100, ValueUnit: 150, Weight: 1.2, VestingMonths: 24, CliffMonths: 6},
			{ID: "2", Name: "Advogado", Category: "legal", Type: models.ContributionDelivery, Quantity: 1, ValueUnit: 3000, Weight: 1, VestingMonths: 12, CliffMonths: 0},
		},
		Financials: []models.FinancialYear{
			{Year: 2026, Revenue: 100, Costs: 40, Profit: 60},
		},
		Contacts: []models.Contact{
			{ID: "c1", Name: "Vereador João", City: "Curitiba", Status: models.ContactNew},
		},
	}
}

func TestStoreContributors(t *testing.T) {
	ctx := context.Background()
	store := New(testSeed())

	t.Run("CreateContributor assigns next sequential ID", func(t *testing.T) {
		c := &models.Contributor{Name: "Novo Contribuidor", Category: "dev", Type: models.ContributionHours, Weight: 1, VestingMonths: 24, CliffMonths: 6}
		if err := store.CreateContributor(ctx, c); err != nil {
			t.Fatalf("CreateContributor failed: %v", err)
		}
		if c.ID != "3" {
			t.Errorf("Expected ID 3, got %q", c.ID)
		}
	})

	t.Run("CreateContributor rejects invalid records", func(t *testing.T) {
		c := &models.Contributor{Name: "", Category: "dev", Type: models.ContributionHours}
		err := store.CreateContributor(ctx, c)
		if !errors.Is(err, models.ErrInvalidContributor) {
			t.Fatalf("Expected ErrInvalidContributor, got %v", err)
		}
	})

	t.Run("CreateContributor rejects duplicate IDs", func(t *testing.T) {
		c := &models.Contributor{ID: "1", Name: "Outro", Category: "dev", Type: models.ContributionCapital}
		if err := store.CreateContributor(ctx, c); !errors.Is(err, models.ErrInvalidContributor) {
			t.Fatalf("Expected ErrInvalidContributor, got %v", err)
		}
	})

	t.Run("returned contributors are copies", func(t *testing.T) {
		desc := "Lançamento"
		c := &models.Contributor{Name: "Marketing", Category: "mkt", Type: models.ContributionDelivery, HasMilestone: true, MilestoneDescription: &desc}
		if err := store.CreateContributor(ctx, c); err != nil {
			t.Fatalf("CreateContributor failed: %v", err)
		}
		got, err := store.GetContributor(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetContributor failed: %v", err)
		}
		*got.MilestoneDescription = "alterado"
		again, _ := store.GetContributor(ctx, c.ID)
		if *again.MilestoneDescription != "Lançamento" {
			t.Errorf("Store state leaked through returned pointer: %q", *again.MilestoneDescription)
		}
	})

	t.Run("UpdateContributor and DeleteContributor", func(t *testing.T) {
		c, err := store.GetContributor(ctx, "2")
		if err != nil {
			t.Fatalf("GetContributor failed: %v", err)
		}
		c.IsLocked = true
		if err := store.UpdateContributor(ctx, c); err != nil {
			t.Fatalf("UpdateContributor failed: %v", err)
		}
		got, _ := store.GetContributor(ctx, "2")
		if !got.IsLocked {
			t.Error("Expected contributor to be locked")
		}

		if err := store.DeleteContributor(ctx, "2"); err != nil {
			t.Fatalf("DeleteContributor failed: %v", err)
		}
		if _, err := store.GetContributor(ctx, "2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteContributor(ctx, "2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("ListContributors keeps insertion order", func(t *testing.T) {
		list, err := store.ListContributors(ctx)
		if err != nil {
			t.Fatalf("ListContributors failed: %v", err)
		}
		var ids []string
		for _, c := range list {
			ids = append(ids, c.ID)
		}
		if diff := cmp.Diff([]string{"1", "3", "4"}, ids); diff != "" {
			t.Errorf("ids mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestStorePoolAndCategories(t *testing.T) {
	ctx := context.Background()
	store := New(testSeed())

	if err := store.SetPool(ctx, models.Pool{SizePercent: 8, Mode: models.PoolModeEquity}); err != nil {
		t.Fatalf("SetPool failed: %v", err)
	}
	pool, _ := store.GetPool(ctx)
	if pool.SizePercent != 8 || pool.Mode != models.PoolModeEquity {
		t.Errorf("Unexpected pool %+v", pool)
	}

	if err := store.UpdateCategory(ctx, models.CategoryCap{ID: "dev", Name: "Dev", MaxPercent: 4}); err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}
	cats, _ := store.ListCategories(ctx)
	if cats[0].MaxPercent != 4 {
		t.Errorf("Expected dev cap 4, got %v", cats[0].MaxPercent)
	}
	if err := store.UpdateCategory(ctx, models.CategoryCap{ID: "none"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStoreFinancials(t *testing.T) {
	ctx := context.Background()
	store := New(testSeed())

	rows, _ := store.ListFinancials(ctx)
	rows[0].Revenue = 999
	again, _ := store.ListFinancials(ctx)
	if again[0].Revenue != 100 {
		t.Fatalf("Store state leaked through returned slice")
	}

	want := []models.FinancialYear{{Year: 2030, Revenue: 10, Costs: 5, Profit: 5}}
	if err := store.ReplaceFinancials(ctx, want); err != nil {
		t.Fatalf("ReplaceFinancials failed: %v", err)
	}
	got, _ := store.ListFinancials(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("financials mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreConversations(t *testing.T) {
	ctx := context.Background()
	store := New(testSeed())

	first := &models.Conversation{Title: "Primeira"}
	second := &models.Conversation{Title: "Segunda"}
	for _, c := range []*models.Conversation{first, second} {
		if err := store.CreateConversation(ctx, c); err != nil {
			t.Fatalf("CreateConversation failed: %v", err)
		}
		if c.ID == "" || c.CreatedAt.IsZero() {
			t.Fatalf("Expected ID and CreatedAt to be generated, got %+v", c)
		}
	}

	list, _ := store.ListConversations(ctx)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("Expected newest conversation first, got %+v", list)
	}

	conv, err := store.AppendMessage(ctx, first.ID, models.Message{Role: models.RoleUser, Content: "Olá"})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if len(conv.Messages) != 1 || conv.Messages[0].ID == "" || conv.Messages[0].Timestamp.IsZero() {
		t.Fatalf("Unexpected messages %+v", conv.Messages)
	}

	if err := store.RenameConversation(ctx, first.ID, "Renomeada"); err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}
	got, _ := store.GetConversation(ctx, first.ID)
	if got.Title != "Renomeada" {
		t.Errorf("Expected renamed title, got %q", got.Title)
	}

	if err := store.DeleteConversation(ctx, first.ID); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
	if _, err := store.AppendMessage(ctx, first.ID, models.Message{}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	store := New(storage.Seed{})
	conv := &models.Conversation{Title: "Paralela"}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.AppendMessage(ctx, conv.ID, models.Message{Role: models.RoleUser, Content: "x"}); err != nil {
				t.Errorf("AppendMessage failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.GetConversation(ctx, conv.ID)
	if len(got.Messages) != 50 {
		t.Fatalf("Expected 50 messages, got %d", len(got.Messages))
	}
}
