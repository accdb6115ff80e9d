package models

import (
	"time"
)

type NoteCategory string

const GeneralNote NoteCategory = "general"

type Note struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Content   string       `json:"content"`
	Category  NoteCategory `json:"category"`
	CreatedAt time.Time    `json:"created_at"`
}

// Reminder is a note with a trigger time. The core only creates and lists
// reminders; completing them is up to whoever owns the store.
type Reminder struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	TriggerAt time.Time `json:"trigger_at"`
	Completed bool      `json:"completed"`
}
