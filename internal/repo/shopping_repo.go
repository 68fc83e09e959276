package repo

import (
	"context"
	"errors"

	dom "remindme/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ShoppingRepo stores the per-user shoppingList collection.
type ShoppingRepo interface {
	Create(ctx context.Context, it dom.ShoppingItem) (dom.ShoppingItem, error)
	GetByID(ctx context.Context, userID, id string) (dom.ShoppingItem, error)
	// FindByNameAndSection returns ErrNotFound when the item is not selected.
	FindByNameAndSection(ctx context.Context, userID, name, sectionID string) (dom.ShoppingItem, error)
	List(ctx context.Context, userID string) ([]dom.ShoppingItem, error)
	// SetChecked and Delete apply only while the stored rev equals expectRev
	// and return ErrStale otherwise.
	SetChecked(ctx context.Context, userID, id string, checked bool, rev, expectRev int64) (dom.ShoppingItem, error)
	Delete(ctx context.Context, userID, id string, expectRev int64) error
}

type PGShoppingRepo struct {
	db *pgxpool.Pool
}

func NewPGShoppingRepo(db *pgxpool.Pool) *PGShoppingRepo {
	return &PGShoppingRepo{db: db}
}

const shoppingColumns = `id, user_id, name, section_id, section_title, is_checked, rev, created_at`

func scanShoppingItem(row pgx.Row) (dom.ShoppingItem, error) {
	var it dom.ShoppingItem
	err := row.Scan(&it.ID, &it.UserID, &it.Name, &it.SectionID, &it.SectionTitle,
		&it.Checked, &it.Rev, &it.CreatedAt)
	return it, pgErr(err)
}

func (r *PGShoppingRepo) Create(ctx context.Context, in dom.ShoppingItem) (dom.ShoppingItem, error) {
	query := `
		INSERT INTO shopping_items (id, user_id, name, section_id, section_title, is_checked, rev)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + shoppingColumns
	return scanShoppingItem(r.db.QueryRow(ctx, query, uuid.NewString(), in.UserID, in.Name,
		in.SectionID, in.SectionTitle, in.Checked, in.Rev))
}

func (r *PGShoppingRepo) GetByID(ctx context.Context, userID, id string) (dom.ShoppingItem, error) {
	query := `SELECT ` + shoppingColumns + ` FROM shopping_items WHERE user_id = $1 AND id = $2`
	return scanShoppingItem(r.db.QueryRow(ctx, query, userID, id))
}

func (r *PGShoppingRepo) FindByNameAndSection(ctx context.Context, userID, name, sectionID string) (dom.ShoppingItem, error) {
	query := `
		SELECT ` + shoppingColumns + ` FROM shopping_items
		WHERE user_id = $1 AND name = $2 AND section_id = $3
		ORDER BY created_at LIMIT 1`
	return scanShoppingItem(r.db.QueryRow(ctx, query, userID, name, sectionID))
}

func (r *PGShoppingRepo) List(ctx context.Context, userID string) ([]dom.ShoppingItem, error) {
	query := `SELECT ` + shoppingColumns + ` FROM shopping_items WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *PGShoppingRepo) SetChecked(ctx context.Context, userID, id string, checked bool, rev, expectRev int64) (dom.ShoppingItem, error) {
	query := `
		UPDATE shopping_items SET is_checked = $3, rev = $4
		WHERE user_id = $1 AND id = $2 AND rev = $5
		RETURNING ` + shoppingColumns
	it, err := scanShoppingItem(r.db.QueryRow(ctx, query, userID, id, checked, rev, expectRev))
	if errors.Is(err, ErrNotFound) {
		err = guardErr(ctx, r.db, "shopping_items", userID, id)
	}
	return it, err
}

func (r *PGShoppingRepo) Delete(ctx context.Context, userID, id string, expectRev int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shopping_items WHERE user_id = $1 AND id = $2 AND rev = $3`, userID, id, expectRev)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return guardErr(ctx, r.db, "shopping_items", userID, id)
	}
	return nil
}
