package domain

import "time"

// Reminder is a user-created event. Date and time labels are free-text
// display strings ("Today", "09:00"), not parsed dates.
type Reminder struct {
	ID        string
	UserID    string
	Title     string
	DateLabel string
	TimeLabel string
	Notes     string
	Pinned    bool
	Done      bool

	// Rev is the per-user change revision stamped on the last write.
	Rev int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Reminder) DocID() string   { return r.ID }
func (r Reminder) Revision() int64 { return r.Rev }
