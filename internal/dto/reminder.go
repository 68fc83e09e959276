package dto

import "time"

// ReminderRequest is the add/edit form. Blank labels get defaults.
type ReminderRequest struct {
	Title     string `json:"title" binding:"max=200"`
	DateLabel string `json:"date_label" binding:"max=64"`
	TimeLabel string `json:"time_label" binding:"max=64"`
	Notes     string `json:"notes" binding:"max=2000"`
	Pinned    bool   `json:"pinned"`
	Done      bool   `json:"done"`
}

type ReminderResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DateLabel string    `json:"date_label"`
	TimeLabel string    `json:"time_label"`
	Notes     string    `json:"notes"`
	Pinned    bool      `json:"pinned"`
	Done      bool      `json:"done"`
	Rev       int64     `json:"rev"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReminderGroup struct {
	DateLabel string             `json:"date_label"`
	Items     []ReminderResponse `json:"items"`
}

// HomeResponse is the home feed: sorted reminders, the next one and date groups.
type HomeResponse struct {
	Items  []ReminderResponse `json:"items"`
	Next   *ReminderResponse  `json:"next"`
	Groups []ReminderGroup    `json:"groups"`
}
