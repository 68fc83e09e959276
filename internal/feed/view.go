package feed

import "sort"

// Doc is a document that carries the revision of its last write.
type Doc interface {
	DocID() string
	Revision() int64
}

// View is a live materialized copy of one collection. It remembers the last
// revision seen for every id, deleted ones included, and drops anything
// older, so a late upsert cannot bring back a deleted document.
type View[T Doc] struct {
	docs map[string]T
	revs map[string]int64
}

func NewView[T Doc]() *View[T] {
	return &View[T]{
		docs: make(map[string]T),
		revs: make(map[string]int64),
	}
}

// Load applies a snapshot read from the store.
func (v *View[T]) Load(snapshot []T) {
	for _, d := range snapshot {
		v.Upsert(d)
	}
}

// Upsert stores d unless a newer or equal revision is known for its id.
// Reports whether the view changed.
func (v *View[T]) Upsert(d T) bool {
	id := d.DocID()
	if seen, ok := v.revs[id]; ok && d.Revision() <= seen {
		return false
	}
	v.revs[id] = d.Revision()
	v.docs[id] = d
	return true
}

// Delete removes id and leaves a tombstone at rev.
func (v *View[T]) Delete(id string, rev int64) bool {
	if seen, ok := v.revs[id]; ok && rev <= seen {
		return false
	}
	v.revs[id] = rev
	_, existed := v.docs[id]
	delete(v.docs, id)
	return existed
}

func (v *View[T]) Len() int { return len(v.docs) }

func (v *View[T]) Get(id string) (T, bool) {
	d, ok := v.docs[id]
	return d, ok
}

// Docs returns the current documents ordered by id.
func (v *View[T]) Docs() []T {
	ids := make([]string, 0, len(v.docs))
	for id := range v.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.docs[id])
	}
	return out
}
