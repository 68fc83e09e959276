package service

import (
	"context"
	"errors"
	"strings"

	"remindme/internal/cache"
	"remindme/internal/catalog"
	dom "remindme/internal/domain"
	"remindme/internal/events"
	"remindme/internal/feed"
	"remindme/internal/repo"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrUnknownItem = errors.New("unknown catalog item")

// CategoryItem is one catalog entry with its selection state.
type CategoryItem struct {
	Name     string
	Selected bool
}

// Category is a catalog section as shown on the categories screen.
type Category struct {
	ID    string
	Title string
	Items []CategoryItem
}

// ToggleResult tells whether Toggle added or removed the item.
type ToggleResult struct {
	Added bool
	Item  dom.ShoppingItem
}

type ShoppingService struct {
	repo    repo.ShoppingRepo
	cache   *cache.ListCache
	changes *Changes
	sf      singleflight.Group
	logger  *zap.Logger
}

// NewShoppingService creates a ShoppingService. If c is nil, caching is disabled.
func NewShoppingService(r repo.ShoppingRepo, c *cache.ListCache, changes *Changes, logger *zap.Logger) *ShoppingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoppingService{repo: r, cache: c, changes: changes, logger: logger.Named("shopping")}
}

// Items returns the user's shopping list in store order, through the list
// cache when one is configured.
func (s *ShoppingService) Items(ctx context.Context, userID string) ([]dom.ShoppingItem, error) {
	if s.cache == nil {
		return s.repo.List(ctx, userID)
	}
	ch := s.sf.DoChan("shopping:"+userID, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		if list, err := s.cache.GetShopping(ctx, userID); err == nil && list != nil {
			return list, nil
		}
		gen, genErr := s.cache.ShoppingGen(ctx, userID)
		list, err := s.repo.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			s.logger.Debug("cache generation read failed", zap.Error(genErr))
			return list, nil
		}
		if err := s.cache.SetShopping(ctx, userID, gen, list); err != nil {
			s.logger.Debug("cache fill skipped", zap.String("user_id", userID), zap.Error(err))
		}
		return list, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]dom.ShoppingItem), nil
	}
}

// Snapshot reads the shopping list straight from the store.
func (s *ShoppingService) Snapshot(ctx context.Context, userID string) ([]dom.ShoppingItem, error) {
	return s.repo.List(ctx, userID)
}

// List returns the sorted shopping list and its category groups.
func (s *ShoppingService) List(ctx context.Context, userID string) (feed.ShoppingFeed, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return feed.ShoppingFeed{}, err
	}
	return feed.BuildShopping(items), nil
}

// Categories returns the catalog with each item marked selected when an item
// with the same name and section is on the list.
func (s *ShoppingService) Categories(ctx context.Context, userID string) ([]Category, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(items))
	for _, it := range items {
		selected[it.SectionID+"\x00"+it.Name] = true
	}
	sections := catalog.Sections()
	out := make([]Category, 0, len(sections))
	for _, sec := range sections {
		c := Category{ID: sec.ID, Title: sec.Title, Items: make([]CategoryItem, 0, len(sec.Items))}
		for _, name := range sec.Items {
			c.Items = append(c.Items, CategoryItem{Name: name, Selected: selected[sec.ID+"\x00"+name]})
		}
		out = append(out, c)
	}
	return out, nil
}

// Toggle removes the catalog item from the list if present, otherwise adds it
// unchecked.
func (s *ShoppingService) Toggle(ctx context.Context, userID, sectionID, name string) (ToggleResult, error) {
	sec, ok := catalog.Find(sectionID)
	if !ok || !sec.Has(name) {
		return ToggleResult{}, ErrUnknownItem
	}
	existing, err := s.repo.FindByNameAndSection(ctx, userID, name, sec.ID)
	switch {
	case err == nil:
		if err := s.Remove(ctx, userID, existing.ID); err != nil {
			return ToggleResult{}, err
		}
		return ToggleResult{Added: false, Item: existing}, nil
	case !errors.Is(err, repo.ErrNotFound):
		return ToggleResult{}, err
	}

	rev, err := s.changes.Next(ctx, userID)
	if err != nil {
		return ToggleResult{}, err
	}
	it, err := s.repo.Create(ctx, dom.ShoppingItem{
		UserID:       userID,
		Name:         name,
		SectionID:    sec.ID,
		SectionTitle: sec.Title,
		Rev:          rev,
	})
	if err != nil {
		return ToggleResult{}, err
	}
	s.written(ctx, userID, it)
	return ToggleResult{Added: true, Item: it}, nil
}

// ToggleChecked flips the checked flag.
func (s *ShoppingService) ToggleChecked(ctx context.Context, userID, id string) (dom.ShoppingItem, error) {
	if strings.TrimSpace(id) == "" {
		return dom.ShoppingItem{}, ErrNotFound
	}
	var it dom.ShoppingItem
	err := onFreshCopy(func() error {
		existing, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			return mapNotFound(err)
		}
		rev, err := s.changes.Next(ctx, userID)
		if err != nil {
			return err
		}
		it, err = s.repo.SetChecked(ctx, userID, id, !existing.Checked, rev, existing.Rev)
		return mapNotFound(err)
	})
	if err != nil {
		return dom.ShoppingItem{}, err
	}
	s.written(ctx, userID, it)
	return it, nil
}

func (s *ShoppingService) Remove(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	var rev int64
	err := onFreshCopy(func() error {
		existing, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			return mapNotFound(err)
		}
		if rev, err = s.changes.Next(ctx, userID); err != nil {
			return err
		}
		return mapNotFound(s.repo.Delete(ctx, userID, id, existing.Rev))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	s.changes.Publish(ctx, userID, events.Change{
		Collection: events.CollectionShopping,
		Kind:       events.KindDelete,
		DocID:      id,
		Rev:        rev,
	})
	return nil
}

// Clear deletes every item one by one and returns how many were removed.
// Items already gone are skipped.
func (s *ShoppingService) Clear(ctx context.Context, userID string) (int, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if err := s.Remove(ctx, userID, it.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *ShoppingService) written(ctx context.Context, userID string, it dom.ShoppingItem) {
	s.invalidate(ctx, userID)
	s.changes.Publish(ctx, userID, events.Change{
		Collection: events.CollectionShopping,
		Kind:       events.KindUpsert,
		DocID:      it.ID,
		Rev:        it.Rev,
		Item:       &it,
	})
}

func (s *ShoppingService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		if err := s.cache.InvalidateShopping(ctx, userID); err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}
