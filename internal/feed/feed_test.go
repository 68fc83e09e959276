package feed

import (
	"testing"

	dom "remindme/internal/domain"
	"remindme/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(rs []dom.Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestSortReminders(t *testing.T) {
	in := []dom.Reminder{
		{ID: "a", DateLabel: "Today", TimeLabel: "18:00"},
		{ID: "b", DateLabel: "Fri 21 Nov", TimeLabel: "09:00"},
		{ID: "c", DateLabel: "Today", TimeLabel: "08:30", Pinned: true},
		{ID: "d", DateLabel: "Today", TimeLabel: "09:00"},
		{ID: "e", DateLabel: "Tomorrow", TimeLabel: "07:00", Pinned: true},
		{ID: "f", DateLabel: "Today", TimeLabel: "09:00"},
	}

	got := SortReminders(in)
	assert.Equal(t, []string{"c", "e", "b", "d", "f", "a"}, ids(got))

	t.Run("stable for a fixed input", func(t *testing.T) {
		assert.Equal(t, ids(got), ids(SortReminders(in)))
		assert.Equal(t, ids(got), ids(SortReminders(got)))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		assert.Equal(t, "a", in[0].ID)
	})
}

func TestNextReminderAndGroups(t *testing.T) {
	home := BuildHome([]dom.Reminder{
		{ID: "a", DateLabel: "Today", TimeLabel: "08:00", Done: true},
		{ID: "b", DateLabel: "Today", TimeLabel: "10:00"},
		{ID: "c", DateLabel: "Tomorrow", TimeLabel: "09:00"},
	})

	require.NotNil(t, home.Next)
	assert.Equal(t, "b", home.Next.ID)
	require.Len(t, home.Groups, 2)
	assert.Equal(t, "Today", home.Groups[0].DateLabel)
	assert.Equal(t, []string{"a", "b"}, ids(home.Groups[0].Reminders))
	assert.Equal(t, "Tomorrow", home.Groups[1].DateLabel)

	t.Run("no next when everything is done", func(t *testing.T) {
		h := BuildHome([]dom.Reminder{{ID: "a", Done: true}})
		assert.Nil(t, h.Next)
	})

	t.Run("empty", func(t *testing.T) {
		h := BuildHome(nil)
		assert.Empty(t, h.Reminders)
		assert.Empty(t, h.Groups)
		assert.Nil(t, h.Next)
	})
}

func TestShoppingSortAndGroup(t *testing.T) {
	got := BuildShopping([]dom.ShoppingItem{
		{ID: "1", Name: "Milk", SectionTitle: "Dairy", Checked: true},
		{ID: "2", Name: "Bread", SectionTitle: "Bakery"},
		{ID: "3", Name: "Eggs", SectionTitle: "Dairy"},
		{ID: "4", Name: "Butter", SectionTitle: "Dairy"},
	})

	var order []string
	for _, it := range got.Items {
		order = append(order, it.ID)
	}
	assert.Equal(t, []string{"2", "4", "3", "1"}, order)

	require.Len(t, got.Groups, 2)
	assert.Equal(t, "Bakery", got.Groups[0].SectionTitle)
	assert.Equal(t, "Dairy", got.Groups[1].SectionTitle)
	assert.Len(t, got.Groups[1].Items, 3)
}

func TestViewIgnoresStaleChanges(t *testing.T) {
	v := NewView[dom.Reminder]()
	v.Load([]dom.Reminder{
		{ID: "r1", Title: "Dentist", Rev: 4},
		{ID: "r2", Title: "Gym", Rev: 5},
	})

	t.Run("delete removes the reminder", func(t *testing.T) {
		changed := ApplyReminderChange(v, events.Change{
			Collection: events.CollectionReminders,
			Kind:       events.KindDelete,
			DocID:      "r1",
			Rev:        6,
		})
		assert.True(t, changed)
		_, ok := v.Get("r1")
		assert.False(t, ok)
	})

	t.Run("stale upsert does not resurrect", func(t *testing.T) {
		changed := ApplyReminderChange(v, events.Change{
			Collection: events.CollectionReminders,
			Kind:       events.KindUpsert,
			DocID:      "r1",
			Rev:        4,
			Reminder:   &dom.Reminder{ID: "r1", Title: "Dentist"},
		})
		assert.False(t, changed)
		_, ok := v.Get("r1")
		assert.False(t, ok)
	})

	t.Run("stale snapshot does not resurrect", func(t *testing.T) {
		v.Load([]dom.Reminder{{ID: "r1", Title: "Dentist", Rev: 4}})
		_, ok := v.Get("r1")
		assert.False(t, ok)
		assert.Equal(t, 1, v.Len())
	})

	t.Run("newer upsert wins", func(t *testing.T) {
		changed := ApplyReminderChange(v, events.Change{
			Collection: events.CollectionReminders,
			Kind:       events.KindUpsert,
			DocID:      "r2",
			Rev:        9,
			Reminder:   &dom.Reminder{ID: "r2", Title: "Gym at 7"},
		})
		assert.True(t, changed)
		r, ok := v.Get("r2")
		require.True(t, ok)
		assert.Equal(t, "Gym at 7", r.Title)
		assert.Equal(t, int64(9), r.Rev)
	})

	t.Run("other collection ignored", func(t *testing.T) {
		assert.False(t, ApplyReminderChange(v, events.Change{
			Collection: events.CollectionShopping,
			Kind:       events.KindDelete,
			DocID:      "r2",
			Rev:        99,
		}))
	})
}

func TestShoppingView(t *testing.T) {
	v := NewView[dom.ShoppingItem]()
	assert.True(t, ApplyShoppingChange(v, events.Change{
		Collection: events.CollectionShopping,
		Kind:       events.KindUpsert,
		DocID:      "i1",
		Rev:        1,
		Item:       &dom.ShoppingItem{ID: "i1", Name: "Milk"},
	}))
	assert.True(t, ApplyShoppingChange(v, events.Change{
		Collection: events.CollectionShopping,
		Kind:       events.KindDelete,
		DocID:      "i1",
		Rev:        2,
	}))
	assert.Equal(t, 0, v.Len())
	assert.Empty(t, v.Docs())
}
