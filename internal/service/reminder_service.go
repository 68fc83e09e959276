package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"remindme/internal/cache"
	dom "remindme/internal/domain"
	"remindme/internal/events"
	"remindme/internal/feed"
	"remindme/internal/repo"
	"remindme/internal/validate"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrNotFound = errors.New("not found")

// fillTimeout bounds a shared cache fill, which no longer follows any one
// caller's context.
const fillTimeout = 10 * time.Second

type ReminderService struct {
	repo    repo.ReminderRepo
	cache   *cache.ListCache
	changes *Changes
	sf      singleflight.Group
	logger  *zap.Logger
}

// NewReminderService creates a ReminderService. If c is nil, caching is disabled.
func NewReminderService(r repo.ReminderRepo, c *cache.ListCache, changes *Changes, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{repo: r, cache: c, changes: changes, logger: logger.Named("reminders")}
}

func mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// List returns the user's reminders in store order, through the list cache
// when one is configured.
func (s *ReminderService) List(ctx context.Context, userID string) ([]dom.Reminder, error) {
	if s.cache == nil {
		return s.repo.List(ctx, userID)
	}
	ch := s.sf.DoChan("reminders:"+userID, func() (interface{}, error) {
		// The fill is shared by every waiter, so it must outlive the caller
		// that started it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		if list, err := s.cache.GetReminders(ctx, userID); err == nil && list != nil {
			return list, nil
		}
		gen, genErr := s.cache.RemindersGen(ctx, userID)
		list, err := s.repo.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			s.logger.Debug("cache generation read failed", zap.Error(genErr))
			return list, nil
		}
		if err := s.cache.SetReminders(ctx, userID, gen, list); err != nil {
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
		return res.Val.([]dom.Reminder), nil
	}
}

// Snapshot reads the reminders straight from the store. Live views start
// from it so they never begin from a cached copy.
func (s *ReminderService) Snapshot(ctx context.Context, userID string) ([]dom.Reminder, error) {
	return s.repo.List(ctx, userID)
}

// Home returns the sorted home feed with the next reminder and date groups.
func (s *ReminderService) Home(ctx context.Context, userID string) (feed.HomeFeed, error) {
	list, err := s.List(ctx, userID)
	if err != nil {
		return feed.HomeFeed{}, err
	}
	return feed.BuildHome(list), nil
}

func (s *ReminderService) Get(ctx context.Context, userID, id string) (dom.Reminder, error) {
	r, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Reminder{}, mapNotFound(err)
	}
	return r, nil
}

// Create validates the form and stores a new reminder with a backend id.
func (s *ReminderService) Create(ctx context.Context, userID string, form validate.ReminderForm) (dom.Reminder, error) {
	form, err := validate.Reminder(form)
	if err != nil {
		return dom.Reminder{}, err
	}
	rev, err := s.changes.Next(ctx, userID)
	if err != nil {
		return dom.Reminder{}, err
	}
	r, err := s.repo.Create(ctx, reminderFromForm(userID, form, rev))
	if err != nil {
		return dom.Reminder{}, err
	}
	s.written(ctx, userID, r)
	return r, nil
}

// Update overwrites every field of an existing reminder with the form.
func (s *ReminderService) Update(ctx context.Context, userID, id string, form validate.ReminderForm) (dom.Reminder, error) {
	form, err := validate.Reminder(form)
	if err != nil {
		return dom.Reminder{}, err
	}
	var r dom.Reminder
	err = onFreshCopy(func() error {
		existing, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			return mapNotFound(err)
		}
		rev, err := s.changes.Next(ctx, userID)
		if err != nil {
			return err
		}
		next := reminderFromForm(userID, form, rev)
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
		r, err = s.repo.Set(ctx, next, existing.Rev)
		return mapNotFound(err)
	})
	if err != nil {
		return dom.Reminder{}, err
	}
	s.written(ctx, userID, r)
	return r, nil
}

// ToggleDone flips the done flag.
func (s *ReminderService) ToggleDone(ctx context.Context, userID, id string) (dom.Reminder, error) {
	return s.toggle(ctx, userID, id, func(r dom.Reminder) bool { return r.Done }, s.repo.SetDone)
}

// TogglePinned flips the pinned flag.
func (s *ReminderService) TogglePinned(ctx context.Context, userID, id string) (dom.Reminder, error) {
	return s.toggle(ctx, userID, id, func(r dom.Reminder) bool { return r.Pinned }, s.repo.SetPinned)
}

type flagSetter func(ctx context.Context, userID, id string, v bool, rev, expectRev int64) (dom.Reminder, error)

// toggle flips the flag of the copy it read. If another write commits first
// the flip is redone on the new copy.
func (s *ReminderService) toggle(ctx context.Context, userID, id string, get func(dom.Reminder) bool, set flagSetter) (dom.Reminder, error) {
	if strings.TrimSpace(id) == "" {
		return dom.Reminder{}, ErrNotFound
	}
	var r dom.Reminder
	err := onFreshCopy(func() error {
		existing, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			return mapNotFound(err)
		}
		rev, err := s.changes.Next(ctx, userID)
		if err != nil {
			return err
		}
		r, err = set(ctx, userID, id, !get(existing), rev, existing.Rev)
		return mapNotFound(err)
	})
	if err != nil {
		return dom.Reminder{}, err
	}
	s.written(ctx, userID, r)
	return r, nil
}

func (s *ReminderService) Delete(ctx context.Context, userID, id string) error {
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
		Collection: events.CollectionReminders,
		Kind:       events.KindDelete,
		DocID:      id,
		Rev:        rev,
	})
	return nil
}

func (s *ReminderService) written(ctx context.Context, userID string, r dom.Reminder) {
	s.invalidate(ctx, userID)
	s.changes.Publish(ctx, userID, events.Change{
		Collection: events.CollectionReminders,
		Kind:       events.KindUpsert,
		DocID:      r.ID,
		Rev:        r.Rev,
		Reminder:   &r,
	})
}

func (s *ReminderService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		if err := s.cache.InvalidateReminders(ctx, userID); err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func reminderFromForm(userID string, f validate.ReminderForm, rev int64) dom.Reminder {
	return dom.Reminder{
		UserID:    userID,
		Title:     f.Title,
		DateLabel: f.DateLabel,
		TimeLabel: f.TimeLabel,
		Notes:     f.Notes,
		Pinned:    f.Pinned,
		Done:      f.Done,
		Rev:       rev,
	}
}

// Save creates the reminder when id is empty and overwrites it otherwise.
func (s *ReminderService) Save(ctx context.Context, userID, id string, form validate.ReminderForm) (dom.Reminder, error) {
	if strings.TrimSpace(id) == "" {
		return s.Create(ctx, userID, form)
	}
	return s.Update(ctx, userID, id, form)
}
