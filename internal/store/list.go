package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/model"
)

type ListStore struct {
	db     *sql.DB
	broker *live.Broker
}

// NewListStore creates a ListStore. Writes are announced on broker; when
// broker is nil the store keeps a private one so live queries still work.
func NewListStore(db *sql.DB, broker *live.Broker) *ListStore {
	if broker == nil {
		broker = live.NewBroker(nil)
	}
	return &ListStore{db: db, broker: broker}
}

func scanList(s scanner) (*model.List, error) {
	var l model.List
	var createdAt int64
	var deleted int
	err := s.Scan(&l.ID, &l.Name, &createdAt, &deleted, &l.OwnerUserID)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = fromMillis(createdAt)
	l.Deleted = deleted != 0
	return &l, nil
}

const listCols = `id, name, created_at, deleted, owner_user_id`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertList(ctx context.Context, db execer, l *model.List) (int64, error) {
	createdAt := l.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO listas_mercado (name, created_at, deleted, owner_user_id) VALUES (?, ?, ?, ?)`,
		l.Name, toMillis(createdAt), boolToInt(l.Deleted), l.OwnerUserID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *ListStore) InsertList(ctx context.Context, l *model.List) (int64, error) {
	id, err := insertList(ctx, s.db, l)
	if err != nil {
		return 0, err
	}
	s.broker.Publish(live.Lists)
	return id, nil
}

// InsertListWithItems stores a list and its items in one transaction. Items
// keep the Order and Purchased values they carry; their ListID is replaced.
func (s *ListStore) InsertListWithItems(ctx context.Context, l *model.List, items []model.Item) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := insertList(ctx, tx, l)
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		it.ListID = id
		if _, err := insertItemAt(ctx, tx, &it, it.Order); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	s.broker.Publish(live.Lists, live.Items)
	return id, nil
}

// RenameList sets the name of the list with id. The deleted flag is only
// changed by the trash transitions.
func (s *ListStore) RenameList(ctx context.Context, id int64, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE listas_mercado SET name = ? WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return fmt.Errorf("rename list: %w", err)
	}
	if err := checkAffected(result, "rename list"); err != nil {
		return err
	}
	s.broker.Publish(live.Lists)
	return nil
}

func (s *ListStore) FindListByID(ctx context.Context, id int64) (*model.List, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+listCols+` FROM listas_mercado WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *ListStore) queryLists(ctx context.Context, userID int64, deleted bool) ([]model.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listCols+` FROM listas_mercado WHERE owner_user_id = ? AND deleted = ? ORDER BY created_at DESC, id DESC`,
		userID, boolToInt(deleted),
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// ActiveLists returns the user's lists outside the trash, newest first.
func (s *ListStore) ActiveLists(ctx context.Context, userID int64) ([]model.List, error) {
	return s.queryLists(ctx, userID, false)
}

// TrashedLists returns the user's lists in the trash, newest first.
func (s *ListStore) TrashedLists(ctx context.Context, userID int64) ([]model.List, error) {
	return s.queryLists(ctx, userID, true)
}

func (s *ListStore) LiveActiveLists(ctx context.Context, userID int64) <-chan []model.List {
	return live.Watch(ctx, s.broker, func(ctx context.Context) ([]model.List, error) {
		return s.ActiveLists(ctx, userID)
	}, live.Lists)
}

func (s *ListStore) LiveTrashedLists(ctx context.Context, userID int64) <-chan []model.List {
	return live.Watch(ctx, s.broker, func(ctx context.Context) ([]model.List, error) {
		return s.TrashedLists(ctx, userID)
	}, live.Lists)
}

// FindListWithItems reads a list and its items from one snapshot. It returns
// nil when the list does not exist.
func (s *ListStore) FindListWithItems(ctx context.Context, id int64) (*model.ListWithItems, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+listCols+` FROM listas_mercado WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	items, err := queryItems(ctx, tx, `WHERE list_id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &model.ListWithItems{List: *l, Items: items}, nil
}

// ActiveListsWithItems returns every active list of the user with its items,
// newest list first.
func (s *ListStore) ActiveListsWithItems(ctx context.Context, userID int64) ([]model.ListWithItems, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+listCols+` FROM listas_mercado WHERE owner_user_id = ? AND deleted = 0 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}

	items, err := queryItems(ctx, tx,
		`WHERE list_id IN (SELECT id FROM listas_mercado WHERE owner_user_id = ? AND deleted = 0)`, userID)
	if err != nil {
		return nil, err
	}
	byList := make(map[int64][]model.Item)
	for _, it := range items {
		byList[it.ListID] = append(byList[it.ListID], it)
	}

	out := make([]model.ListWithItems, 0, len(lists))
	for _, l := range lists {
		out = append(out, model.ListWithItems{List: l, Items: byList[l.ID]})
	}
	return out, nil
}

func (s *ListStore) LiveListWithItems(ctx context.Context, id int64) <-chan *model.ListWithItems {
	return live.Watch(ctx, s.broker, func(ctx context.Context) (*model.ListWithItems, error) {
		return s.FindListWithItems(ctx, id)
	}, live.Lists, live.Items)
}

func (s *ListStore) LiveActiveListsWithItems(ctx context.Context, userID int64) <-chan []model.ListWithItems {
	return live.Watch(ctx, s.broker, func(ctx context.Context) ([]model.ListWithItems, error) {
		return s.ActiveListsWithItems(ctx, userID)
	}, live.Lists, live.Items)
}

func (s *ListStore) setDeleted(ctx context.Context, id int64, deleted bool, what string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE listas_mercado SET deleted = ? WHERE id = ? AND deleted = ?`,
		boolToInt(deleted), id, boolToInt(!deleted),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := checkAffected(result, what); err != nil {
		return err
	}
	s.broker.Publish(live.Lists)
	return nil
}

// SoftDeleteList moves an active list to the trash.
func (s *ListStore) SoftDeleteList(ctx context.Context, id int64) error {
	return s.setDeleted(ctx, id, true, "soft delete list")
}

// RestoreList moves a trashed list back to the active lists.
func (s *ListStore) RestoreList(ctx context.Context, id int64) error {
	return s.setDeleted(ctx, id, false, "restore list")
}

// SetListsDeleted moves every list in ids into or out of the trash. Either
// all lists change state or none do: a list already in the target state or
// missing aborts the transaction with ErrNoRows.
func (s *ListStore) SetListsDeleted(ctx context.Context, ids []int64, deleted bool) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range dedupe(ids) {
		result, err := tx.ExecContext(ctx,
			`UPDATE listas_mercado SET deleted = ? WHERE id = ? AND deleted = ?`,
			boolToInt(deleted), id, boolToInt(!deleted),
		)
		if err != nil {
			return fmt.Errorf("set list %d deleted: %w", id, err)
		}
		if err := checkAffected(result, fmt.Sprintf("set list %d deleted", id)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.broker.Publish(live.Lists)
	return nil
}

// HardDeleteList removes a trashed list and, by cascade, its items. Active
// lists are never removed.
func (s *ListStore) HardDeleteList(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM listas_mercado WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if err := checkAffected(result, "delete list"); err != nil {
		return err
	}
	s.broker.Publish(live.Lists, live.Items)
	return nil
}

// HardDeleteLists removes every trashed list in ids, all or nothing.
func (s *ListStore) HardDeleteLists(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids = dedupe(ids)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	result, err := tx.ExecContext(ctx,
		`DELETE FROM listas_mercado WHERE deleted = 1 AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete lists: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != int64(len(ids)) {
		return fmt.Errorf("delete lists: %w", ErrNoRows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.broker.Publish(live.Lists, live.Items)
	return nil
}

// EmptyTrash removes every trashed list owned by userID and returns how many
// were removed.
func (s *ListStore) EmptyTrash(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM listas_mercado WHERE owner_user_id = ? AND deleted = 1`, userID)
	if err != nil {
		return 0, fmt.Errorf("empty trash: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		s.broker.Publish(live.Lists, live.Items)
	}
	return n, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
