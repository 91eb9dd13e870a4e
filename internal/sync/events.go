package sync

import "time"

type LibraryEvent struct {
	Type   string    `json:"type"` // "library.update" or "library.delete"
	UserID string    `json:"user_id"`
	GameID int64     `json:"game_id"`
	Status string    `json:"status,omitempty"`
	At     time.Time `json:"at"`
}
