package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskSource string

const (
	SourceStandalone TaskSource = "STANDALONE"
	// SourceNote marks tasks embedded in a note's content; they carry a
	// client-assigned SourceID and are reconciled by the sync endpoint.
	SourceNote TaskSource = "NOTE"
)

type Task struct {
	ID        uuid.UUID    `json:"id"`
	Title     string       `json:"title"`
	Done      bool         `json:"done"`
	Priority  TaskPriority `json:"priority"`
	DueDate   *time.Time   `json:"dueDate"`
	UserID    uuid.UUID    `json:"userId"`
	NoteID    *uuid.UUID   `json:"noteId"`
	Source    TaskSource   `json:"source"`
	SourceID  *string      `json:"sourceId"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	Tags []Tag `json:"tags"`
	Note *Note `json:"note,omitempty"`
}
