package domain

import "time"

// ShoppingItem is a catalog entry the user marked as wanted.
// Uniqueness of (Name, SectionID) is only checked at toggle time.
type ShoppingItem struct {
	ID           string
	UserID       string
	Name         string
	SectionID    string
	SectionTitle string
	Checked      bool
	Rev          int64
	CreatedAt    time.Time
}

func (i ShoppingItem) DocID() string   { return i.ID }
func (i ShoppingItem) Revision() int64 { return i.Rev }
