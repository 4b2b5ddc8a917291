package notify

import (
	"fmt"
	"strings"

	"github.com/shreeglass/erp-backend/pkg/db/models"
	"github.com/shreeglass/erp-backend/pkg/enums"
)

// Message is one rendered notification. Subject is empty for WhatsApp.
type Message struct {
	Subject string
	Body    string
}

// RenderOrder produces the customer-facing message for an order transition
// on a channel. ok is false for transitions that stay quiet.
func RenderOrder(order *models.Order, transition enums.OrderTransition, channel enums.NotificationChannel) (Message, bool) {
	name := order.CustomerName
	number := order.OrderNumber

	switch transition {
	case enums.TransitionAdvancePaid:
		return render(channel,
			fmt.Sprintf("Order %s confirmed", number),
			fmt.Sprintf("Dear %s, we have received your advance of Rs. %s. Order %s is confirmed and will enter production shortly. Balance due: Rs. %s.",
				name, order.PaidAmount.StringFixed(2), number, order.RemainingAmount.StringFixed(2)),
		), true
	case enums.TransitionFullyPaid:
		return render(channel,
			fmt.Sprintf("Order %s fully paid", number),
			fmt.Sprintf("Dear %s, payment for order %s is complete. Thank you for your business.", name, number),
		), true
	case enums.TransitionRefunded:
		return render(channel,
			fmt.Sprintf("Order %s refunded", number),
			fmt.Sprintf("Dear %s, your payment against order %s has been refunded. The amount will reflect in your account per your bank's timelines.", name, number),
		), true
	}

	if stage, ok := stageOf(transition); ok {
		switch stage {
		case enums.ProductionStatusDispatched:
			return render(channel,
				fmt.Sprintf("Order %s dispatched", number),
				fmt.Sprintf("Dear %s, order %s has been dispatched. The invoice is attached; please keep it handy at delivery.", name, number),
			), true
		case enums.ProductionStatusDelivered:
			return render(channel,
				fmt.Sprintf("Order %s delivered", number),
				fmt.Sprintf("Dear %s, order %s has been delivered. We would love your feedback.", name, number),
			), true
		case enums.ProductionStatusCutting:
			return render(channel,
				fmt.Sprintf("Order %s in production", number),
				fmt.Sprintf("Dear %s, production has started on order %s.", name, number),
			), true
		}
	}
	return Message{}, false
}

// RenderJobworkMilestone produces the WhatsApp message for a job-work
// milestone.
func RenderJobworkMilestone(order *models.JobworkOrder, milestone enums.JobworkMilestone) (Message, bool) {
	name := order.CustomerName
	number := order.JobworkNumber

	var body string
	switch milestone {
	case enums.JobworkAccepted:
		body = fmt.Sprintf("Dear %s, job-work order %s has been accepted. Advance due: Rs. %s.",
			name, number, order.AdvanceAmount.StringFixed(2))
	case enums.JobworkMaterialReceived:
		body = fmt.Sprintf("Dear %s, we have received your glass for job %s.", name, number)
	case enums.JobworkInProcess:
		body = fmt.Sprintf("Dear %s, job %s is in process.", name, number)
	case enums.JobworkCompleted:
		body = fmt.Sprintf("Dear %s, processing for job %s is complete and under quality check.", name, number)
	case enums.JobworkReadyForDelivery:
		body = fmt.Sprintf("Dear %s, job %s is ready for delivery. Balance due: Rs. %s.",
			name, number, order.RemainingAmount.StringFixed(2))
	case enums.JobworkDelivered:
		body = fmt.Sprintf("Dear %s, job %s has been delivered. Thank you.", name, number)
	default:
		return Message{}, false
	}
	return Message{Body: body}, true
}

func render(channel enums.NotificationChannel, subject, body string) Message {
	if channel == enums.ChannelWhatsApp {
		return Message{Body: body}
	}
	return Message{Subject: subject, Body: body}
}

func stageOf(transition enums.OrderTransition) (enums.ProductionStatus, bool) {
	raw := string(transition)
	prefix := string(enums.TransitionStagePrefix)
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	stage, err := enums.ParseProductionStatus(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return "", false
	}
	return stage, true
}
