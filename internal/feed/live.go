package feed

import (
	dom "remindme/internal/domain"
	"remindme/internal/events"
)

// ApplyReminderChange folds a reminders change into v. Changes for other
// collections are ignored.
func ApplyReminderChange(v *View[dom.Reminder], c events.Change) bool {
	if c.Collection != events.CollectionReminders {
		return false
	}
	switch c.Kind {
	case events.KindUpsert:
		if c.Reminder == nil {
			return false
		}
		r := *c.Reminder
		r.Rev = c.Rev
		return v.Upsert(r)
	case events.KindDelete:
		return v.Delete(c.DocID, c.Rev)
	}
	return false
}

// ApplyShoppingChange folds a shoppingList change into v.
func ApplyShoppingChange(v *View[dom.ShoppingItem], c events.Change) bool {
	if c.Collection != events.CollectionShopping {
		return false
	}
	switch c.Kind {
	case events.KindUpsert:
		if c.Item == nil {
			return false
		}
		it := *c.Item
		it.Rev = c.Rev
		return v.Upsert(it)
	case events.KindDelete:
		return v.Delete(c.DocID, c.Rev)
	}
	return false
}
