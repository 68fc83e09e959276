// Package feed derives the display views of reminders and shopping items and
// keeps live views consistent with change streams.
package feed

import (
	"sort"

	dom "remindme/internal/domain"
)

// SortReminders returns a sorted copy: pinned first, then date label, then
// time label. Labels compare lexically.
func SortReminders(in []dom.Reminder) []dom.Reminder {
	out := make([]dom.Reminder, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if a.DateLabel != b.DateLabel {
			return a.DateLabel < b.DateLabel
		}
		return a.TimeLabel < b.TimeLabel
	})
	return out
}

// NextReminder returns the first reminder in sorted that is not done.
func NextReminder(sorted []dom.Reminder) (dom.Reminder, bool) {
	for _, r := range sorted {
		if !r.Done {
			return r, true
		}
	}
	return dom.Reminder{}, false
}

type DateGroup struct {
	DateLabel string
	Reminders []dom.Reminder
}

// GroupByDate groups by literal date label in order of first occurrence.
func GroupByDate(sorted []dom.Reminder) []DateGroup {
	var groups []DateGroup
	index := make(map[string]int)
	for _, r := range sorted {
		i, ok := index[r.DateLabel]
		if !ok {
			i = len(groups)
			index[r.DateLabel] = i
			groups = append(groups, DateGroup{DateLabel: r.DateLabel})
		}
		groups[i].Reminders = append(groups[i].Reminders, r)
	}
	return groups
}

// SortShopping returns a sorted copy: unchecked first, then section title,
// then name.
func SortShopping(in []dom.ShoppingItem) []dom.ShoppingItem {
	out := make([]dom.ShoppingItem, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Checked != b.Checked {
			return !a.Checked
		}
		if a.SectionTitle != b.SectionTitle {
			return a.SectionTitle < b.SectionTitle
		}
		return a.Name < b.Name
	})
	return out
}

type CategoryGroup struct {
	SectionTitle string
	Items        []dom.ShoppingItem
}

// GroupByCategory groups by literal section title in order of first occurrence.
func GroupByCategory(items []dom.ShoppingItem) []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.SectionTitle]
		if !ok {
			i = len(groups)
			index[it.SectionTitle] = i
			groups = append(groups, CategoryGroup{SectionTitle: it.SectionTitle})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// HomeFeed is the derived home screen.
type HomeFeed struct {
	Reminders []dom.Reminder
	Next      *dom.Reminder
	Groups    []DateGroup
}

func BuildHome(reminders []dom.Reminder) HomeFeed {
	sorted := SortReminders(reminders)
	h := HomeFeed{Reminders: sorted, Groups: GroupByDate(sorted)}
	if next, ok := NextReminder(sorted); ok {
		h.Next = &next
	}
	return h
}

// ShoppingFeed is the derived shopping list screen.
type ShoppingFeed struct {
	Items  []dom.ShoppingItem
	Groups []CategoryGroup
}

func BuildShopping(items []dom.ShoppingItem) ShoppingFeed {
	sorted := SortShopping(items)
	return ShoppingFeed{Items: sorted, Groups: GroupByCategory(sorted)}
}
