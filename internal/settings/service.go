package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shreeglass/erp-backend/internal/advance"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/redis"
)

const (
	cacheName = "advance_settings"
	cacheTTL  = 5 * time.Minute
)

// Cache is the slice of the Redis client the service needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

// Store is the persistence surface the service depends on.
type Store interface {
	Get(ctx context.Context) (*models.AdvanceSettings, error)
	Save(ctx context.Context, row *models.AdvanceSettings) error
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
}

// UpdateInput is the admin-facing mutation payload.
type UpdateInput struct {
	NoAdvanceUpto              decimal.Decimal `json:"no_advance_upto"`
	MinAdvancePercentUpto5000  int             `json:"min_advance_percent_upto_5000"`
	MinAdvancePercentAbove5000 int             `json:"min_advance_percent_above_5000"`
	CreditEnabled              bool            `json:"credit_enabled"`
	UpdatedBy                  string          `json:"-"`
}

// Service serves the advance policy settings with a short read-through cache.
// Updates write through and invalidate so every node converges quickly.
type Service struct {
	store Store
	cache Cache
	logg  *logger.Logger
}

func NewService(store Store, cache Cache, logg *logger.Logger) *Service {
	return &Service{store: store, cache: cache, logg: logg}
}

// Current returns the policy snapshot, preferring the cache. Cache failures
// degrade to a database read rather than failing the request.
func (s *Service) Current(ctx context.Context) (advance.Settings, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheName))
		if err == nil {
			var cached advance.Settings
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		} else if err != redis.Nil && s.logg != nil {
			s.logg.Warn(ctx, "advance settings cache read failed")
		}
	}

	row, err := s.store.Get(ctx)
	if err != nil {
		return advance.Settings{}, err
	}
	current := toPolicy(row)
	s.fillCache(ctx, current)
	return current, nil
}

// Update validates and persists a new policy, appends an audit entry, and
// drops the cache entry.
func (s *Service) Update(ctx context.Context, input UpdateInput) (advance.Settings, error) {
	if err := validate(input); err != nil {
		return advance.Settings{}, err
	}

	row := &models.AdvanceSettings{
		NoAdvanceUpto:              input.NoAdvanceUpto,
		MinAdvancePercentUpto5000:  input.MinAdvancePercentUpto5000,
		MinAdvancePercentAbove5000: input.MinAdvancePercentAbove5000,
		CreditEnabled:              input.CreditEnabled,
		UpdatedBy:                  input.UpdatedBy,
	}
	if err := s.store.Save(ctx, row); err != nil {
		return advance.Settings{}, err
	}

	audit := &models.AuditEntry{
		Actor:  input.UpdatedBy,
		Action: "advance_settings.update",
		Detail: fmt.Sprintf(
			"no_advance_upto=%s upto5000=%d above5000=%d credit=%t",
			input.NoAdvanceUpto, input.MinAdvancePercentUpto5000,
			input.MinAdvancePercentAbove5000, input.CreditEnabled,
		),
	}
	if err := s.store.AppendAudit(ctx, audit); err != nil && s.logg != nil {
		s.logg.Error(ctx, "audit entry for settings update failed", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.CacheKey(cacheName)); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "advance settings cache invalidation failed")
		}
	}

	if s.logg != nil {
		s.logg.Info(ctx, "advance settings updated")
	}
	return toPolicy(row), nil
}

func (s *Service) fillCache(ctx context.Context, current advance.Settings) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(current)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(cacheName), string(payload), cacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "advance settings cache write failed")
	}
}

func validate(input UpdateInput) error {
	if input.NoAdvanceUpto.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "no-advance threshold cannot be negative")
	}
	for _, pct := range []int{input.MinAdvancePercentUpto5000, input.MinAdvancePercentAbove5000} {
		if pct < 0 || pct > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "minimum advance percent must be between 0 and 100")
		}
	}
	if input.UpdatedBy == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "updated_by is required")
	}
	return nil
}

func toPolicy(row *models.AdvanceSettings) advance.Settings {
	return advance.Settings{
		NoAdvanceUpto:              row.NoAdvanceUpto,
		MinAdvancePercentUpto5000:  row.MinAdvancePercentUpto5000,
		MinAdvancePercentAbove5000: row.MinAdvancePercentAbove5000,
		CreditEnabled:              row.CreditEnabled,
	}
}
