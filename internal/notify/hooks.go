package notify

import (
	"context"

	"github.com/shreeglass/erp-backend/internal/artifacts"
	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
	"github.com/shreeglass/erp-backend/pkg/logger"
	"github.com/shreeglass/erp-backend/pkg/mailer"
)

// Hooks bridges aggregate transitions to notifications and background
// artifact rendering. It satisfies both the order and job-work hook
// surfaces.
type Hooks struct {
	notify   *Service
	renderer *artifacts.Renderer
	pool     *artifacts.Pool
	logg     *logger.Logger
}

func NewHooks(notify *Service, renderer *artifacts.Renderer, pool *artifacts.Pool, logg *logger.Logger) *Hooks {
	return &Hooks{notify: notify, renderer: renderer, pool: pool, logg: logg}
}

func (h *Hooks) PaymentTransition(ctx context.Context, order *models.Order, transition enums.OrderTransition) {
	h.notify.OrderTransition(order, transition)
}

func (h *Hooks) StageTransition(ctx context.Context, order *models.Order, stage enums.ProductionStatus) {
	// dispatch announces via InvoiceCreated so the invoice can ride along
	if stage == enums.ProductionStatusDispatched {
		return
	}
	h.notify.OrderTransition(order, enums.StageTransition(stage))
}

func (h *Hooks) InvoiceCreated(ctx context.Context, order *models.Order, invoice *models.Invoice) {
	submitted := h.pool.Submit("invoice "+invoice.InvoiceNumber, func(ctx context.Context) error {
		pdf, err := h.renderer.Invoice(invoice)
		if err != nil {
			return err
		}
		h.notify.OrderTransition(order,
			enums.StageTransition(enums.ProductionStatusDispatched),
			mailer.Attachment{
				Filename:    invoice.InvoiceNumber + ".pdf",
				ContentType: "application/pdf",
				Data:        pdf,
			})
		return nil
	})
	if !submitted {
		// still announce the dispatch, just without the attachment
		h.notify.OrderTransition(order, enums.StageTransition(enums.ProductionStatusDispatched))
	}
}

func (h *Hooks) Milestone(ctx context.Context, order *models.JobworkOrder, milestone enums.JobworkMilestone) {
	h.notify.JobworkMilestone(order, milestone)
}

func (h *Hooks) DesignSheetRequested(ctx context.Context, order *models.JobworkOrder) {
	if order.CustomerEmail == "" {
		return
	}
	h.pool.Submit("design sheet "+order.JobworkNumber, func(ctx context.Context) error {
		pieces := make([]artifacts.DesignPiece, 0, len(order.Items))
		for _, item := range order.Items {
			if len(item.Cutouts) == 0 {
				continue
			}
			pieces = append(pieces, artifacts.DesignPiece{
				Label:      item.GlassType,
				WidthInch:  item.WidthInch,
				HeightInch: item.HeightInch,
				Cutouts:    item.Cutouts,
			})
		}
		if len(pieces) == 0 {
			return nil
		}
		pdf, err := h.renderer.DesignSheet(order.JobworkNumber, pieces)
		if err != nil {
			return err
		}
		h.notify.AdminAlert(ctx, []string{order.CustomerEmail},
			"Cutting design for "+order.JobworkNumber,
			"Please review the attached cutting design for your job-work order.",
			mailer.Attachment{
				Filename:    order.JobworkNumber + "-design.pdf",
				ContentType: "application/pdf",
				Data:        pdf,
			})
		return nil
	})
}
