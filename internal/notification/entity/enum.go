package entity

// Channel values match notification_templates.channel and
// notification_delivery_logs.channel.
type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelEmail   Channel = 2
)

func (c Channel) String() string {
	if c == ChannelEmail {
		return "email"
	}
	return "unknown"
}

// DeliveryStatus is the lifecycle of one delivery log row. Values are
// persisted, so gaps are kept.
type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusQueued  DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 3
	DeliveryStatusFailed  DeliveryStatus = 4
	// DeliveryStatusSkipped is a message dropped before sending, such as a
	// code that expired while queued.
	DeliveryStatusSkipped DeliveryStatus = 5
)

var deliveryStatusNames = map[DeliveryStatus]string{
	DeliveryStatusQueued:  "queued",
	DeliveryStatusSent:    "sent",
	DeliveryStatusFailed:  "failed",
	DeliveryStatusSkipped: "skipped",
}

func (s DeliveryStatus) String() string {
	if name, ok := deliveryStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Final reports whether no further transition is expected.
func (s DeliveryStatus) Final() bool {
	return s == DeliveryStatusSent || s == DeliveryStatusFailed || s == DeliveryStatusSkipped
}

// TriggerKey names the event a template renders for.
type TriggerKey string

const (
	TriggerKeyPaymentOTP            TriggerKey = "training_payment_otp"
	TriggerKeyRegistrationConfirmed TriggerKey = "training_registration_confirmed"
)

func (tk TriggerKey) String() string { return string(tk) }
