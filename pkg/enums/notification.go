package enums

import "fmt"

// NotificationChannel identifies an outbound delivery channel.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

var validNotificationChannels = []NotificationChannel{
	ChannelEmail,
	ChannelWhatsApp,
}

func (c NotificationChannel) String() string {
	return string(c)
}

func (c NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}

// OrderTransition names a state-machine transition for templating and dedup.
type OrderTransition string

const (
	TransitionAdvancePaid OrderTransition = "advance_paid"
	TransitionFullyPaid   OrderTransition = "fully_paid"
	TransitionRefunded    OrderTransition = "refunded"
	TransitionStagePrefix OrderTransition = "stage_" // + production status
)

// StageTransition builds the transition key for a production stage change.
func StageTransition(stage ProductionStatus) OrderTransition {
	return TransitionStagePrefix + OrderTransition(stage)
}
