package repo

import (
	"context"
	"errors"

	dom "remindme/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReminderRepo stores the per-user reminders collection.
type ReminderRepo interface {
	Create(ctx context.Context, r dom.Reminder) (dom.Reminder, error)
	GetByID(ctx context.Context, userID, id string) (dom.Reminder, error)
	List(ctx context.Context, userID string) ([]dom.Reminder, error)
	// Writes below are guarded: they apply only while the stored rev still
	// equals expectRev and return ErrStale otherwise.

	// Set overwrites every user-editable field.
	Set(ctx context.Context, r dom.Reminder, expectRev int64) (dom.Reminder, error)
	SetDone(ctx context.Context, userID, id string, done bool, rev, expectRev int64) (dom.Reminder, error)
	SetPinned(ctx context.Context, userID, id string, pinned bool, rev, expectRev int64) (dom.Reminder, error)
	Delete(ctx context.Context, userID, id string, expectRev int64) error
}

type PGReminderRepo struct {
	db *pgxpool.Pool
}

func NewPGReminderRepo(db *pgxpool.Pool) *PGReminderRepo {
	return &PGReminderRepo{db: db}
}

const reminderColumns = `id, user_id, title, date_label, time_label, notes, is_pinned, is_done, rev, created_at, updated_at`

func scanReminder(row pgx.Row) (dom.Reminder, error) {
	var r dom.Reminder
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.DateLabel, &r.TimeLabel, &r.Notes,
		&r.Pinned, &r.Done, &r.Rev, &r.CreatedAt, &r.UpdatedAt)
	return r, pgErr(err)
}

func (r *PGReminderRepo) Create(ctx context.Context, in dom.Reminder) (dom.Reminder, error) {
	query := `
		INSERT INTO reminders (id, user_id, title, date_label, time_label, notes, is_pinned, is_done, rev)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + reminderColumns
	return scanReminder(r.db.QueryRow(ctx, query, uuid.NewString(), in.UserID, in.Title,
		in.DateLabel, in.TimeLabel, in.Notes, in.Pinned, in.Done, in.Rev))
}

func (r *PGReminderRepo) GetByID(ctx context.Context, userID, id string) (dom.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 AND id = $2`
	return scanReminder(r.db.QueryRow(ctx, query, userID, id))
}

func (r *PGReminderRepo) List(ctx context.Context, userID string) ([]dom.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rem)
	}
	return list, rows.Err()
}

func (r *PGReminderRepo) Set(ctx context.Context, in dom.Reminder, expectRev int64) (dom.Reminder, error) {
	query := `
		UPDATE reminders
		SET title = $3, date_label = $4, time_label = $5, notes = $6,
		    is_pinned = $7, is_done = $8, rev = $9, updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND rev = $10
		RETURNING ` + reminderColumns
	rem, err := scanReminder(r.db.QueryRow(ctx, query, in.UserID, in.ID, in.Title, in.DateLabel,
		in.TimeLabel, in.Notes, in.Pinned, in.Done, in.Rev, expectRev))
	return rem, r.guarded(ctx, in.UserID, in.ID, err)
}

func (r *PGReminderRepo) SetDone(ctx context.Context, userID, id string, done bool, rev, expectRev int64) (dom.Reminder, error) {
	query := `
		UPDATE reminders SET is_done = $3, rev = $4, updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND rev = $5
		RETURNING ` + reminderColumns
	rem, err := scanReminder(r.db.QueryRow(ctx, query, userID, id, done, rev, expectRev))
	return rem, r.guarded(ctx, userID, id, err)
}

func (r *PGReminderRepo) SetPinned(ctx context.Context, userID, id string, pinned bool, rev, expectRev int64) (dom.Reminder, error) {
	query := `
		UPDATE reminders SET is_pinned = $3, rev = $4, updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND rev = $5
		RETURNING ` + reminderColumns
	rem, err := scanReminder(r.db.QueryRow(ctx, query, userID, id, pinned, rev, expectRev))
	return rem, r.guarded(ctx, userID, id, err)
}

func (r *PGReminderRepo) Delete(ctx context.Context, userID, id string, expectRev int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE user_id = $1 AND id = $2 AND rev = $3`, userID, id, expectRev)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return guardErr(ctx, r.db, "reminders", userID, id)
	}
	return nil
}

func (r *PGReminderRepo) guarded(ctx context.Context, userID, id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return guardErr(ctx, r.db, "reminders", userID, id)
	}
	return err
}
