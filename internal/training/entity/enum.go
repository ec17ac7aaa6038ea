package entity

import "strings"

type TrainingMode int16

const (
	TrainingModeUnknown TrainingMode = 0
	TrainingModeOnline  TrainingMode = 1
	TrainingModeOffline TrainingMode = 2
)

func (m TrainingMode) String() string {
	switch m {
	case TrainingModeOnline:
		return "online"
	case TrainingModeOffline:
		return "offline"
	default:
		return "unknown"
	}
}

type TrainingStatus int16

const (
	TrainingStatusUnknown   TrainingStatus = 0
	TrainingStatusOpen      TrainingStatus = 1
	TrainingStatusClosed    TrainingStatus = 2
	TrainingStatusCancelled TrainingStatus = 3
)

func (s TrainingStatus) String() string {
	switch s {
	case TrainingStatusOpen:
		return "open"
	case TrainingStatusClosed:
		return "closed"
	case TrainingStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type PaymentMethod int16

const (
	PaymentMethodUnknown      PaymentMethod = 0
	PaymentMethodCard         PaymentMethod = 1
	PaymentMethodUPI          PaymentMethod = 2
	PaymentMethodBankTransfer PaymentMethod = 3
)

func PaymentMethodFromString(raw string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "card":
		return PaymentMethodCard
	case "upi":
		return PaymentMethodUPI
	case "bank_transfer":
		return PaymentMethodBankTransfer
	default:
		return PaymentMethodUnknown
	}
}

func (p PaymentMethod) String() string {
	switch p {
	case PaymentMethodCard:
		return "card"
	case PaymentMethodUPI:
		return "upi"
	case PaymentMethodBankTransfer:
		return "bank_transfer"
	default:
		return "unknown"
	}
}

// MarshalText keeps the stored transaction context readable.
func (p PaymentMethod) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PaymentMethod) UnmarshalText(b []byte) error {
	*p = PaymentMethodFromString(string(b))
	return nil
}

type RegistrationStatus int16

const (
	RegistrationStatusUnknown RegistrationStatus = 0
	RegistrationStatusPaid    RegistrationStatus = 1
)

func (s RegistrationStatus) String() string {
	if s == RegistrationStatusPaid {
		return "paid"
	}
	return "unknown"
}
