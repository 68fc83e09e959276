// Package events carries per-user document changes from writers to live
// subscribers.
package events

import (
	"context"
	"errors"

	dom "remindme/internal/domain"
)

const (
	CollectionReminders = "reminders"
	CollectionShopping  = "shoppingList"
)

type Kind string

const (
	KindUpsert Kind = "upsert"
	KindDelete Kind = "delete"
)

// Change is one write to a per-user collection. Rev orders changes for a user.
type Change struct {
	Collection string            `json:"collection"`
	Kind       Kind              `json:"kind"`
	DocID      string            `json:"doc_id"`
	Rev        int64             `json:"rev"`
	Reminder   *dom.Reminder     `json:"reminder,omitempty"`
	Item       *dom.ShoppingItem `json:"item,omitempty"`
}

var ErrClosed = errors.New("events: subscription closed")

// Subscription is a registered change listener. Close must be called exactly
// when the listener goes away; it is safe to call more than once.
type Subscription interface {
	C() <-chan Change
	Close() error
}

// Broker fans changes out to the subscribers of a user.
type Broker interface {
	Publish(ctx context.Context, userID string, c Change) error
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Revisions hands out a strictly increasing revision per user.
type Revisions interface {
	Next(ctx context.Context, userID string) (int64, error)
}

// IsValidCollection reports whether name is a live collection.
func IsValidCollection(name string) bool {
	return name == CollectionReminders || name == CollectionShopping
}
