package production

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
	"github.com/shreeglass/erp-backend/pkg/pagination"
)

// Repository owns job card and breakage persistence.
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

func (r *Repository) Create(ctx context.Context, card *models.ProductionOrder) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create job card")
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.ProductionOrder, error) {
	var card models.ProductionOrder
	err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job card not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job card")
	}
	return &card, nil
}

func (r *Repository) GetByNumber(ctx context.Context, number string) (*models.ProductionOrder, error) {
	var card models.ProductionOrder
	err := r.db.WithContext(ctx).First(&card, "job_card_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job card not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job card")
	}
	return &card, nil
}

// ListQuery filters the job card listing.
type ListQuery struct {
	pagination.Params
	Stage   *enums.ProductionStatus
	OrderID *uuid.UUID
	Open    bool
}

func (r *Repository) List(ctx context.Context, query ListQuery) (*pagination.Page[models.ProductionOrder], error) {
	params := pagination.Normalize(query.Params)

	scope := r.db.WithContext(ctx).Model(&models.ProductionOrder{})
	if query.Stage != nil {
		scope = scope.Where("current_stage = ?", *query.Stage)
	}
	if query.OrderID != nil {
		scope = scope.Where("order_id = ?", *query.OrderID)
	}
	if query.Open {
		scope = scope.Where("closed_at IS NULL")
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count job cards")
	}

	var rows []models.ProductionOrder
	err := scope.
		Order("priority DESC, created_at ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list job cards")
	}

	return &pagination.Page[models.ProductionOrder]{
		Items:      rows,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
	}, nil
}

func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ProductionOrder, error) {
	var rows []models.ProductionOrder
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list job cards for order")
	}
	return rows, nil
}

// AdvanceStage flips the card's stage with the current value pinned in the
// WHERE clause.
func (r *Repository) AdvanceStage(ctx context.Context, cardID uuid.UUID, from, to enums.ProductionStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductionOrder{}).
		Where("id = ? AND current_stage = ? AND closed_at IS NULL", cardID, from).
		Update("current_stage", to)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "advance job card stage")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "job card stage changed concurrently")
	}
	return nil
}

// CloseForOrder stamps closed_at on every open card of the order.
func (r *Repository) CloseForOrder(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.ProductionOrder{}).
		Where("order_id = ? AND closed_at IS NULL", orderID).
		Update("closed_at", at).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close job cards")
	}
	return nil
}

func (r *Repository) SetPriority(ctx context.Context, cardID uuid.UUID, priority int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductionOrder{}).
		Where("id = ?", cardID).
		Update("priority", priority)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "set job card priority")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "job card not found")
	}
	return nil
}

func (r *Repository) AppendBreakage(ctx context.Context, event *models.BreakageEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append breakage event")
	}
	return nil
}

func (r *Repository) ListBreakage(ctx context.Context, orderID *uuid.UUID) ([]models.BreakageEvent, error) {
	scope := r.db.WithContext(ctx).Model(&models.BreakageEvent{})
	if orderID != nil {
		scope = scope.Where("order_id = ?", *orderID)
	}
	var rows []models.BreakageEvent
	if err := scope.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list breakage events")
	}
	return rows, nil
}

// StageCount is one bucket of the pipeline distribution.
type StageCount struct {
	Stage enums.ProductionStatus `json:"stage"`
	Count int64                  `json:"count"`
}

func (r *Repository) PipelineDistribution(ctx context.Context) ([]StageCount, error) {
	var rows []StageCount
	err := r.db.WithContext(ctx).
		Model(&models.ProductionOrder{}).
		Select("current_stage AS stage, COUNT(*) AS count").
		Where("closed_at IS NULL").
		Group("current_stage").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pipeline distribution")
	}
	return rows, nil
}

// BreakageBucket aggregates losses by one dimension.
type BreakageBucket struct {
	Key      string  `json:"key"`
	Quantity int64   `json:"quantity"`
	Cost     float64 `json:"cost"`
}

func (r *Repository) BreakageByStage(ctx context.Context, since time.Time) ([]BreakageBucket, error) {
	return r.breakageGrouped(ctx, "stage", since)
}

func (r *Repository) BreakageByOperator(ctx context.Context, since time.Time) ([]BreakageBucket, error) {
	return r.breakageGrouped(ctx, "operator", since)
}

func (r *Repository) BreakageDaily(ctx context.Context, since time.Time) ([]BreakageBucket, error) {
	var rows []BreakageBucket
	err := r.db.WithContext(ctx).
		Model(&models.BreakageEvent{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') AS key, SUM(quantity) AS quantity, SUM(quantity * unit_cost) AS cost").
		Where("created_at >= ?", since).
		Group("1").
		Order("1 ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "daily breakage")
	}
	return rows, nil
}

func (r *Repository) TopGlassTypes(ctx context.Context, since time.Time, limit int) ([]BreakageBucket, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []BreakageBucket
	err := r.db.WithContext(ctx).
		Model(&models.BreakageEvent{}).
		Select("glass_type AS key, SUM(quantity) AS quantity, SUM(quantity * unit_cost) AS cost").
		Where("created_at >= ?", since).
		Group("glass_type").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "top glass types")
	}
	return rows, nil
}

func (r *Repository) breakageGrouped(ctx context.Context, column string, since time.Time) ([]BreakageBucket, error) {
	var rows []BreakageBucket
	err := r.db.WithContext(ctx).
		Model(&models.BreakageEvent{}).
		Select(column+" AS key, SUM(quantity) AS quantity, SUM(quantity * unit_cost) AS cost").
		Where("created_at >= ?", since).
		Group(column).
		Order("quantity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grouped breakage")
	}
	return rows, nil
}
