package settings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/redis"
)

type stubStore struct {
	row       *models.AdvanceSettings
	saved     *models.AdvanceSettings
	audits    []*models.AuditEntry
	getCalls  int
	saveCalls int
}

func (s *stubStore) Get(ctx context.Context) (*models.AdvanceSettings, error) {
	s.getCalls++
	return s.row, nil
}

func (s *stubStore) Save(ctx context.Context, row *models.AdvanceSettings) error {
	s.saveCalls++
	s.saved = row
	return nil
}

func (s *stubStore) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	s.audits = append(s.audits, entry)
	return nil
}

type stubCache struct {
	values map[string]string
	dels   []string
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]string{}}
}

func (c *stubCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := c.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (c *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.values[key] = value.(string)
	return nil
}

func (c *stubCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
		c.dels = append(c.dels, key)
	}
	return nil
}

func (c *stubCache) CacheKey(name string) string {
	return "test:cache:" + name
}

func seedRow() *models.AdvanceSettings {
	return &models.AdvanceSettings{
		ID:                         1,
		NoAdvanceUpto:              decimal.NewFromInt(2000),
		MinAdvancePercentUpto5000:  50,
		MinAdvancePercentAbove5000: 25,
		CreditEnabled:              true,
	}
}

func TestCurrentFillsAndUsesCache(t *testing.T) {
	store := &stubStore{row: seedRow()}
	cache := newStubCache()
	svc := NewService(store, cache, nil)

	first, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.MinAdvancePercentUpto5000 != 50 {
		t.Fatalf("unexpected settings: %+v", first)
	}
	if store.getCalls != 1 {
		t.Fatalf("expected one store read, got %d", store.getCalls)
	}

	second, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getCalls != 1 {
		t.Fatalf("expected cache hit, store reads = %d", store.getCalls)
	}
	if !second.NoAdvanceUpto.Equal(first.NoAdvanceUpto) {
		t.Fatal("cached settings diverged")
	}
}

func TestUpdatePersistsAuditsAndInvalidates(t *testing.T) {
	store := &stubStore{row: seedRow()}
	cache := newStubCache()
	svc := NewService(store, cache, nil)

	// warm the cache first
	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.Update(context.Background(), UpdateInput{
		NoAdvanceUpto:              decimal.NewFromInt(3000),
		MinAdvancePercentUpto5000:  40,
		MinAdvancePercentAbove5000: 20,
		CreditEnabled:              false,
		UpdatedBy:                  "admin@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.MinAdvancePercentUpto5000 != 40 || updated.CreditEnabled {
		t.Fatalf("unexpected updated settings: %+v", updated)
	}
	if store.saveCalls != 1 || store.saved == nil {
		t.Fatal("expected a save")
	}
	if len(store.audits) != 1 || store.audits[0].Action != "advance_settings.update" {
		t.Fatalf("expected one audit entry, got %+v", store.audits)
	}
	if len(cache.dels) == 0 {
		t.Fatal("expected cache invalidation")
	}

	// next read must come from the store again
	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getCalls != 2 {
		t.Fatalf("expected store re-read after invalidation, got %d", store.getCalls)
	}
}

func TestUpdateRejectsBadInput(t *testing.T) {
	svc := NewService(&stubStore{row: seedRow()}, newStubCache(), nil)

	cases := []UpdateInput{
		{NoAdvanceUpto: decimal.NewFromInt(-1), MinAdvancePercentUpto5000: 50, MinAdvancePercentAbove5000: 25, UpdatedBy: "a"},
		{NoAdvanceUpto: decimal.NewFromInt(100), MinAdvancePercentUpto5000: 120, MinAdvancePercentAbove5000: 25, UpdatedBy: "a"},
		{NoAdvanceUpto: decimal.NewFromInt(100), MinAdvancePercentUpto5000: 50, MinAdvancePercentAbove5000: -5, UpdatedBy: "a"},
		{NoAdvanceUpto: decimal.NewFromInt(100), MinAdvancePercentUpto5000: 50, MinAdvancePercentAbove5000: 25},
	}
	for i, input := range cases {
		_, err := svc.Update(context.Background(), input)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}
