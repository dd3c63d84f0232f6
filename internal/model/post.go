package model

import "time"

// Post is a text entry owned by a user.
type Post struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
