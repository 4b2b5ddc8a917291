package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// Prefixes for the human-readable number families.
const (
	PrefixOrder   = "ORD"
	PrefixJobCard = "JC"
	PrefixJobwork = "JW"
	PrefixInvoice = "INV"
)

// Service allocates opaque ids and monotonic human numbers. Uniqueness and
// monotonicity are promised; gap-free sequences are not.
type Service interface {
	NewID() uuid.UUID
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (string, error)
	NextJobCardNumber(ctx context.Context, tx *gorm.DB) (string, error)
	NextJobworkNumber(ctx context.Context, tx *gorm.DB) (string, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, error)
}

type service struct {
	now func() time.Time
}

// NewService builds the numbering service on the deployment clock.
func NewService() Service {
	return &service{now: time.Now}
}

func (s *service) NewID() uuid.UUID {
	return uuid.New()
}

func (s *service) NextOrderNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	return s.nextDaily(ctx, tx, PrefixOrder)
}

func (s *service) NextJobCardNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	return s.nextDaily(ctx, tx, PrefixJobCard)
}

func (s *service) NextJobworkNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	return s.nextDaily(ctx, tx, PrefixJobwork)
}

func (s *service) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	period := s.now().Format("2006")
	seq, err := nextSeq(ctx, tx, PrefixInvoice, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", PrefixInvoice, period, seq), nil
}

func (s *service) nextDaily(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	period := s.now().Format("20060102")
	seq, err := nextSeq(ctx, tx, prefix, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, period, seq), nil
}

// nextSeq bumps the per-prefix, per-period counter in one atomic upsert.
func nextSeq(ctx context.Context, tx *gorm.DB, prefix, period string) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "numbering requires a db handle")
	}

	var seq int64
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO number_sequences (prefix, period, seq, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (prefix, period)
		DO UPDATE SET seq = number_sequences.seq + 1, updated_at = NOW()
		RETURNING seq`,
		prefix, period,
	).Scan(&seq).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate sequence number")
	}
	return seq, nil
}
