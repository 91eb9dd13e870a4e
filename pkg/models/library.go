package models

import "time"

type LibraryItem struct {
	UserID    string    `json:"user_id"`
	GameID    int64     `json:"game_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
