package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dom "remindme/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore layout: users/{uid} holds the account, with the subcollections
// users/{uid}/reminders and users/{uid}/shoppingList.
const (
	fsUsers     = "users"
	fsReminders = "reminders"
	fsShopping  = "shoppingList"
)

func fsErr(err error) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrDuplicate
	}
	return err
}

// fsGuarded runs write in a transaction after checking that the document's
// rev field still equals expectRev.
func fsGuarded(ctx context.Context, db *firestore.Client, ref *firestore.DocumentRef, expectRev int64, write func(tx *firestore.Transaction) error) error {
	err := db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		v, err := snap.DataAt("rev")
		if err != nil {
			return err
		}
		if rev, _ := v.(int64); rev != expectRev {
			return ErrStale
		}
		return write(tx)
	})
	if errors.Is(err, ErrStale) {
		return ErrStale
	}
	return fsErr(err)
}

type fsUser struct {
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"passwordHash"`
	CreatedAt    time.Time `firestore:"createdAt,serverTimestamp"`
}

type fsReminder struct {
	Title     string    `firestore:"title"`
	DateLabel string    `firestore:"dateLabel"`
	TimeLabel string    `firestore:"timeLabel"`
	Notes     string    `firestore:"notes"`
	IsPinned  bool      `firestore:"isPinned"`
	IsDone    bool      `firestore:"isDone"`
	Rev       int64     `firestore:"rev"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp"`
}

type fsShoppingItem struct {
	Name         string    `firestore:"name"`
	SectionID    string    `firestore:"sectionId"`
	SectionTitle string    `firestore:"sectionTitle"`
	IsChecked    bool      `firestore:"isChecked"`
	Rev          int64     `firestore:"rev"`
	CreatedAt    time.Time `firestore:"createdAt,serverTimestamp"`
}

// FSUserRepo implements UserRepo on Firestore.
type FSUserRepo struct {
	db *firestore.Client
}

func NewFSUserRepo(db *firestore.Client) *FSUserRepo {
	return &FSUserRepo{db: db}
}

func userFromSnap(snap *firestore.DocumentSnapshot) (dom.User, error) {
	var d fsUser
	if err := snap.DataTo(&d); err != nil {
		return dom.User{}, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	return dom.User{ID: snap.Ref.ID, Email: d.Email, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt}, nil
}

func (r *FSUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	email = strings.ToLower(email)
	snaps, err := r.db.Collection(fsUsers).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return dom.User{}, fsErr(err)
	}
	if len(snaps) == 0 {
		return dom.User{}, ErrNotFound
	}
	return userFromSnap(snaps[0])
}

func (r *FSUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	snap, err := r.db.Collection(fsUsers).Doc(id).Get(ctx)
	if err != nil {
		return dom.User{}, fsErr(err)
	}
	return userFromSnap(snap)
}

// Create checks the email and inserts the account in one transaction.
func (r *FSUserRepo) Create(ctx context.Context, email, passwordHash string) (dom.User, error) {
	email = strings.ToLower(email)
	users := r.db.Collection(fsUsers)
	ref := users.NewDoc()
	err := r.db.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrDuplicate
		}
		return tx.Create(ref, fsUser{Email: email, PasswordHash: passwordHash})
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return dom.User{}, ErrDuplicate
		}
		return dom.User{}, fsErr(err)
	}
	return r.GetByID(ctx, ref.ID)
}

// FSReminderRepo implements ReminderRepo on users/{uid}/reminders.
type FSReminderRepo struct {
	db *firestore.Client
}

func NewFSReminderRepo(db *firestore.Client) *FSReminderRepo {
	return &FSReminderRepo{db: db}
}

func (r *FSReminderRepo) col(userID string) *firestore.CollectionRef {
	return r.db.Collection(fsUsers).Doc(userID).Collection(fsReminders)
}

func reminderFromSnap(userID string, snap *firestore.DocumentSnapshot) (dom.Reminder, error) {
	var d fsReminder
	if err := snap.DataTo(&d); err != nil {
		return dom.Reminder{}, fmt.Errorf("decode reminder %s: %w", snap.Ref.ID, err)
	}
	return dom.Reminder{
		ID:        snap.Ref.ID,
		UserID:    userID,
		Title:     d.Title,
		DateLabel: d.DateLabel,
		TimeLabel: d.TimeLabel,
		Notes:     d.Notes,
		Pinned:    d.IsPinned,
		Done:      d.IsDone,
		Rev:       d.Rev,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func reminderToDoc(in dom.Reminder) fsReminder {
	return fsReminder{
		Title:     in.Title,
		DateLabel: in.DateLabel,
		TimeLabel: in.TimeLabel,
		Notes:     in.Notes,
		IsPinned:  in.Pinned,
		IsDone:    in.Done,
		Rev:       in.Rev,
		CreatedAt: in.CreatedAt,
	}
}

func (r *FSReminderRepo) Create(ctx context.Context, in dom.Reminder) (dom.Reminder, error) {
	ref := r.col(in.UserID).NewDoc()
	if _, err := ref.Create(ctx, reminderToDoc(in)); err != nil {
		return dom.Reminder{}, fsErr(err)
	}
	return r.GetByID(ctx, in.UserID, ref.ID)
}

func (r *FSReminderRepo) GetByID(ctx context.Context, userID, id string) (dom.Reminder, error) {
	snap, err := r.col(userID).Doc(id).Get(ctx)
	if err != nil {
		return dom.Reminder{}, fsErr(err)
	}
	return reminderFromSnap(userID, snap)
}

func (r *FSReminderRepo) List(ctx context.Context, userID string) ([]dom.Reminder, error) {
	snaps, err := r.col(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fsErr(err)
	}
	list := make([]dom.Reminder, 0, len(snaps))
	for _, snap := range snaps {
		rem, err := reminderFromSnap(userID, snap)
		if err != nil {
			return nil, err
		}
		list = append(list, rem)
	}
	return list, nil
}

// Set overwrites the document; CreatedAt is carried over from in.
func (r *FSReminderRepo) Set(ctx context.Context, in dom.Reminder, expectRev int64) (dom.Reminder, error) {
	ref := r.col(in.UserID).Doc(in.ID)
	err := fsGuarded(ctx, r.db, ref, expectRev, func(tx *firestore.Transaction) error {
		return tx.Set(ref, reminderToDoc(in))
	})
	if err != nil {
		return dom.Reminder{}, err
	}
	return r.GetByID(ctx, in.UserID, in.ID)
}

func (r *FSReminderRepo) update(ctx context.Context, userID, id string, path string, value bool, rev, expectRev int64) (dom.Reminder, error) {
	ref := r.col(userID).Doc(id)
	err := fsGuarded(ctx, r.db, ref, expectRev, func(tx *firestore.Transaction) error {
		return tx.Update(ref, []firestore.Update{
			{Path: path, Value: value},
			{Path: "rev", Value: rev},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return dom.Reminder{}, err
	}
	return r.GetByID(ctx, userID, id)
}

func (r *FSReminderRepo) SetDone(ctx context.Context, userID, id string, done bool, rev, expectRev int64) (dom.Reminder, error) {
	return r.update(ctx, userID, id, "isDone", done, rev, expectRev)
}

func (r *FSReminderRepo) SetPinned(ctx context.Context, userID, id string, pinned bool, rev, expectRev int64) (dom.Reminder, error) {
	return r.update(ctx, userID, id, "isPinned", pinned, rev, expectRev)
}

func (r *FSReminderRepo) Delete(ctx context.Context, userID, id string, expectRev int64) error {
	ref := r.col(userID).Doc(id)
	return fsGuarded(ctx, r.db, ref, expectRev, func(tx *firestore.Transaction) error {
		return tx.Delete(ref)
	})
}

// FSShoppingRepo implements ShoppingRepo on users/{uid}/shoppingList.
type FSShoppingRepo struct {
	db *firestore.Client
}

func NewFSShoppingRepo(db *firestore.Client) *FSShoppingRepo {
	return &FSShoppingRepo{db: db}
}

func (r *FSShoppingRepo) col(userID string) *firestore.CollectionRef {
	return r.db.Collection(fsUsers).Doc(userID).Collection(fsShopping)
}

func itemFromSnap(userID string, snap *firestore.DocumentSnapshot) (dom.ShoppingItem, error) {
	var d fsShoppingItem
	if err := snap.DataTo(&d); err != nil {
		return dom.ShoppingItem{}, fmt.Errorf("decode shopping item %s: %w", snap.Ref.ID, err)
	}
	return dom.ShoppingItem{
		ID:           snap.Ref.ID,
		UserID:       userID,
		Name:         d.Name,
		SectionID:    d.SectionID,
		SectionTitle: d.SectionTitle,
		Checked:      d.IsChecked,
		Rev:          d.Rev,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func (r *FSShoppingRepo) Create(ctx context.Context, in dom.ShoppingItem) (dom.ShoppingItem, error) {
	ref := r.col(in.UserID).NewDoc()
	_, err := ref.Create(ctx, fsShoppingItem{
		Name:         in.Name,
		SectionID:    in.SectionID,
		SectionTitle: in.SectionTitle,
		IsChecked:    in.Checked,
		Rev:          in.Rev,
	})
	if err != nil {
		return dom.ShoppingItem{}, fsErr(err)
	}
	return r.GetByID(ctx, in.UserID, ref.ID)
}

func (r *FSShoppingRepo) GetByID(ctx context.Context, userID, id string) (dom.ShoppingItem, error) {
	snap, err := r.col(userID).Doc(id).Get(ctx)
	if err != nil {
		return dom.ShoppingItem{}, fsErr(err)
	}
	return itemFromSnap(userID, snap)
}

func (r *FSShoppingRepo) FindByNameAndSection(ctx context.Context, userID, name, sectionID string) (dom.ShoppingItem, error) {
	snaps, err := r.col(userID).
		Where("name", "==", name).
		Where("sectionId", "==", sectionID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return dom.ShoppingItem{}, fsErr(err)
	}
	if len(snaps) == 0 {
		return dom.ShoppingItem{}, ErrNotFound
	}
	return itemFromSnap(userID, snaps[0])
}

func (r *FSShoppingRepo) List(ctx context.Context, userID string) ([]dom.ShoppingItem, error) {
	snaps, err := r.col(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fsErr(err)
	}
	list := make([]dom.ShoppingItem, 0, len(snaps))
	for _, snap := range snaps {
		it, err := itemFromSnap(userID, snap)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, nil
}

func (r *FSShoppingRepo) SetChecked(ctx context.Context, userID, id string, checked bool, rev, expectRev int64) (dom.ShoppingItem, error) {
	ref := r.col(userID).Doc(id)
	err := fsGuarded(ctx, r.db, ref, expectRev, func(tx *firestore.Transaction) error {
		return tx.Update(ref, []firestore.Update{
			{Path: "isChecked", Value: checked},
			{Path: "rev", Value: rev},
		})
	})
	if err != nil {
		return dom.ShoppingItem{}, err
	}
	return r.GetByID(ctx, userID, id)
}

func (r *FSShoppingRepo) Delete(ctx context.Context, userID, id string, expectRev int64) error {
	ref := r.col(userID).Doc(id)
	return fsGuarded(ctx, r.db, ref, expectRev, func(tx *firestore.Transaction) error {
		return tx.Delete(ref)
	})
}
