package enums

// JobworkMilestone names the customer-facing job-work statuses used by the
// WhatsApp template table. Production stages map onto the coarser milestones.
type JobworkMilestone string

const (
	JobworkAccepted         JobworkMilestone = "accepted"
	JobworkMaterialReceived JobworkMilestone = "material_received"
	JobworkInProcess        JobworkMilestone = "in_process"
	JobworkCompleted        JobworkMilestone = "completed"
	JobworkReadyForDelivery JobworkMilestone = "ready_for_delivery"
	JobworkDelivered        JobworkMilestone = "delivered"
)

func (m JobworkMilestone) String() string {
	return string(m)
}

// MilestoneForStage maps a production stage onto the job-work milestone that
// should be announced to the customer. Not every stage announces; the zero
// value means "stay quiet".
func MilestoneForStage(stage ProductionStatus) JobworkMilestone {
	switch stage {
	case ProductionStatusPending:
		return JobworkMaterialReceived
	case ProductionStatusCutting, ProductionStatusPolishing, ProductionStatusGrinding, ProductionStatusToughening:
		return JobworkInProcess
	case ProductionStatusQualityCheck:
		return JobworkCompleted
	case ProductionStatusPacking, ProductionStatusDispatched:
		return JobworkReadyForDelivery
	case ProductionStatusDelivered:
		return JobworkDelivered
	}
	return ""
}
