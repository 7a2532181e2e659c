package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/model"
)

type ItemStore struct {
	db     *sql.DB
	broker *live.Broker
}

func NewItemStore(db *sql.DB, broker *live.Broker) *ItemStore {
	if broker == nil {
		broker = live.NewBroker(nil)
	}
	return &ItemStore{db: db, broker: broker}
}

func scanItem(s scanner) (*model.Item, error) {
	var it model.Item
	var purchased int
	var price sql.NullFloat64
	var notes sql.NullString

	err := s.Scan(
		&it.ID, &it.ListID, &it.Name, &it.Category, &purchased,
		&it.Quantity, &price, &notes, &it.Order,
	)
	if err != nil {
		return nil, err
	}

	it.Purchased = purchased != 0
	if price.Valid {
		it.Price = &price.Float64
	}
	if notes.Valid {
		it.Notes = &notes.String
	}
	return &it, nil
}

const itemCols = `id, list_id, name, category, purchased, quantity, price, notes, sort_order`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryItems selects items matching where, ordered pending first and then by
// their assigned order.
func queryItems(ctx context.Context, q querier, where string, args ...any) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemCols+` FROM items_mercado `+where+` ORDER BY purchased ASC, sort_order ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func nullablePrice(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullableNotes(n *string) sql.NullString {
	if n == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *n, Valid: true}
}

func quantityOrDefault(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// insertItemAt stores it with an explicit order.
func insertItemAt(ctx context.Context, db execer, it *model.Item, order int) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items_mercado (list_id, name, category, purchased, quantity, price, notes, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ListID, it.Name, it.Category, boolToInt(it.Purchased), quantityOrDefault(it.Quantity),
		nullablePrice(it.Price), nullableNotes(it.Notes), order,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// insertItemNext stores it after the highest order already used in its list.
// The order is computed by the insert statement itself so concurrent inserts
// into one list never share an order.
func insertItemNext(ctx context.Context, db execer, it *model.Item) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items_mercado (list_id, name, category, purchased, quantity, price, notes, sort_order)
		 SELECT ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(sort_order) + 1, 0) FROM items_mercado WHERE list_id = ?`,
		it.ListID, it.Name, it.Category, boolToInt(it.Purchased), quantityOrDefault(it.Quantity),
		nullablePrice(it.Price), nullableNotes(it.Notes), it.ListID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// InsertItem appends it to its list and returns the new id. it.Order is
// ignored; the store assigns the next order for the list.
func (s *ItemStore) InsertItem(ctx context.Context, it *model.Item) (int64, error) {
	id, err := insertItemNext(ctx, s.db, it)
	if err != nil {
		return 0, err
	}
	s.broker.Publish(live.Items)
	return id, nil
}

// InsertItems appends every item in one transaction, in slice order.
func (s *ItemStore) InsertItems(ctx context.Context, items []model.Item) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(items))
	for i := range items {
		id, err := insertItemNext(ctx, tx, &items[i])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	if len(ids) > 0 {
		s.broker.Publish(live.Items)
	}
	return ids, nil
}

// UpdateItem overwrites the editable fields of the item with it.ID. The list
// and order of an item never change, and the purchased flag is only written
// by SetItemPurchased.
func (s *ItemStore) UpdateItem(ctx context.Context, it *model.Item) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items_mercado SET name = ?, category = ?, quantity = ?, price = ?, notes = ? WHERE id = ?`,
		it.Name, it.Category, quantityOrDefault(it.Quantity),
		nullablePrice(it.Price), nullableNotes(it.Notes), it.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if err := checkAffected(result, "update item"); err != nil {
		return err
	}
	s.broker.Publish(live.Items)
	return nil
}

func (s *ItemStore) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items_mercado WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := checkAffected(result, "delete item"); err != nil {
		return err
	}
	s.broker.Publish(live.Items)
	return nil
}

func (s *ItemStore) SetItemPurchased(ctx context.Context, id int64, purchased bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items_mercado SET purchased = ? WHERE id = ?`,
		boolToInt(purchased), id,
	)
	if err != nil {
		return fmt.Errorf("set item purchased: %w", err)
	}
	if err := checkAffected(result, "set item purchased"); err != nil {
		return err
	}
	s.broker.Publish(live.Items)
	return nil
}

func (s *ItemStore) deleteWhere(ctx context.Context, what, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", what, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		s.broker.Publish(live.Items)
	}
	return n, nil
}

func (s *ItemStore) DeleteAllItemsInList(ctx context.Context, listID int64) (int64, error) {
	return s.deleteWhere(ctx, "delete items", `DELETE FROM items_mercado WHERE list_id = ?`, listID)
}

func (s *ItemStore) DeletePurchasedItemsInList(ctx context.Context, listID int64) (int64, error) {
	return s.deleteWhere(ctx, "delete purchased items",
		`DELETE FROM items_mercado WHERE list_id = ? AND purchased = 1`, listID)
}

func (s *ItemStore) CountItems(ctx context.Context, listID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items_mercado WHERE list_id = ?`, listID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *ItemStore) CountPurchasedItems(ctx context.Context, listID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items_mercado WHERE list_id = ? AND purchased = 1`, listID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count purchased items: %w", err)
	}
	return n, nil
}

func (s *ItemStore) FindItemByID(ctx context.Context, id int64) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items_mercado WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// ItemsInList returns the items of a list, pending first, each group by order.
func (s *ItemStore) ItemsInList(ctx context.Context, listID int64) ([]model.Item, error) {
	return queryItems(ctx, s.db, `WHERE list_id = ?`, listID)
}

func (s *ItemStore) LiveItemsInList(ctx context.Context, listID int64) <-chan []model.Item {
	return live.Watch(ctx, s.broker, func(ctx context.Context) ([]model.Item, error) {
		return s.ItemsInList(ctx, listID)
	}, live.Items)
}
