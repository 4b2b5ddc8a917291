package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

const singletonID = 1

// Repository persists the advance-settings singleton row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Get loads the singleton. A missing row means the deployment was never
// seeded, which the migration prevents, so it surfaces as an internal error.
func (r *Repository) Get(ctx context.Context) (*models.AdvanceSettings, error) {
	var row models.AdvanceSettings
	err := r.db.WithContext(ctx).First(&row, "id = ?", singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "advance settings row is missing")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load advance settings")
	}
	return &row, nil
}

// Save overwrites the singleton's mutable fields.
func (r *Repository) Save(ctx context.Context, row *models.AdvanceSettings) error {
	row.ID = singletonID
	err := r.db.WithContext(ctx).
		Model(&models.AdvanceSettings{}).
		Where("id = ?", singletonID).
		Updates(map[string]any{
			"no_advance_upto":                row.NoAdvanceUpto,
			"min_advance_percent_upto_5000":  row.MinAdvancePercentUpto5000,
			"min_advance_percent_above_5000": row.MinAdvancePercentAbove5000,
			"credit_enabled":                 row.CreditEnabled,
			"updated_by":                     row.UpdatedBy,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save advance settings")
	}
	return nil
}

// AppendAudit records a privileged settings mutation.
func (r *Repository) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit entry")
	}
	return nil
}
