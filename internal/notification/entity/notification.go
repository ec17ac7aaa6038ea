package entity

import "github.com/shandysiswandi/skillbridge/internal/pkg/valueobject"

// Template is a stored subject and body pair. Both are Go templates over a
// snake_case data map.
type Template struct {
	ID         int64
	TriggerKey TriggerKey
	Channel    Channel
	Subject    string
	Body       string
}

type CreateDeliveryLog struct {
	ID          int64
	TriggerKey  TriggerKey
	Channel     Channel
	Recipient   string
	ReferenceID string
	Status      DeliveryStatus
}

type UpdateDeliveryLog struct {
	ID               int64
	Status           DeliveryStatus
	ProviderResponse valueobject.JSONMap
}

// RenderedMessage is a template after execution, ready to send.
type RenderedMessage struct {
	TriggerKey TriggerKey
	Subject    string
	HTML       string
	Text       string
}
