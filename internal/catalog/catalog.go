// Package catalog is the fixed list of shopping categories. It is not stored.
package catalog

type Section struct {
	ID    string
	Title string
	Items []string
}

var sections = []Section{
	{ID: "produce", Title: "Produce", Items: []string{"Apples", "Bananas", "Tomatoes", "Onions", "Potatoes"}},
	{ID: "dairy", Title: "Dairy", Items: []string{"Milk", "Cheese", "Butter", "Yogurt", "Eggs"}},
	{ID: "bakery", Title: "Bakery", Items: []string{"Bread", "Buns", "Croissant", "Bagels"}},
	{ID: "meat", Title: "Meat & Seafood", Items: []string{"Chicken", "Beef", "Fish", "Shrimp"}},
	{ID: "snacks", Title: "Snacks", Items: []string{"Chips", "Biscuits", "Chocolate", "Nuts"}},
	{ID: "household", Title: "Household", Items: []string{"Detergent", "Bin bags", "Dish soap", "Toilet paper"}},
}

// Sections returns a copy of the catalog in display order.
func Sections() []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		items := make([]string, len(s.Items))
		copy(items, s.Items)
		out[i] = Section{ID: s.ID, Title: s.Title, Items: items}
	}
	return out
}

// Find returns the section with id.
func Find(id string) (Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Has reports whether item belongs to the section.
func (s Section) Has(item string) bool {
	for _, it := range s.Items {
		if it == item {
			return true
		}
	}
	return false
}
