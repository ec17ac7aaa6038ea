package uid

import "github.com/google/uuid"

// UUID generates version 7 UUID strings, which sort by creation time.
type UUID struct {
	newV7 func() (uuid.UUID, error)
}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{newV7: uuid.NewV7}
}

// Generate returns a new id, or a random v4 id when the v7 source fails.
func (u *UUID) Generate() string {
	id, err := u.newV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
