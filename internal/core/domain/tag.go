package domain

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	// Counts are populated on list reads.
	NoteCount int `json:"noteCount"`
	TaskCount int `json:"taskCount"`
}

const DefaultTagColor = "blue"
