package entity

import "time"

type Training struct {
	ID          int64
	Title       string
	TrainerName string
	Description string
	Mode        TrainingMode
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	PriceAmount int64
	Currency    string
	Capacity    int32
	Booked      int32
	Status      TrainingStatus
}

// SeatsLeft never goes below zero.
func (t Training) SeatsLeft() int32 {
	return max(t.Capacity-t.Booked, 0)
}

func (t Training) IsFull() bool {
	return t.Booked >= t.Capacity
}

// Bookable reports whether a new registration may still be accepted.
func (t Training) Bookable() bool {
	return t.Status == TrainingStatusOpen && !t.IsFull()
}

// Charges reports whether the payment matches the training price exactly.
func (t Training) Charges(p PaymentDetails) bool {
	return t.PriceAmount == p.Amount && t.Currency == p.Currency
}

type TrainingListFilter struct {
	Search           string
	IsFilterBySearch bool
	Size             int32
	Offset           int32
}
