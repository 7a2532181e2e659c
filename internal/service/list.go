package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/mercando/internal/model"
)

// CreateList creates an empty active list owned by userID.
func (s *Service) CreateList(ctx context.Context, name string, userID int64) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyField
	}

	id, err := s.lists.InsertList(ctx, &model.List{
		Name:        name,
		CreatedAt:   s.now(),
		OwnerUserID: userID,
	})
	if err != nil {
		return 0, storageErr(err)
	}

	s.metrics.IncrementListsCreated()
	s.logger.Info("list created", "list_id", id, "user_id", userID)
	return id, nil
}

func (s *Service) RenameList(ctx context.Context, listID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyField
	}

	return storageErr(s.lists.RenameList(ctx, listID, name))
}

// List returns the list with the given id, active or trashed, or ErrNotFound.
func (s *Service) List(ctx context.Context, id int64) (*model.List, error) {
	l, err := s.lists.FindListByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if l == nil {
		return nil, ErrNotFound
	}
	return l, nil
}

// CopyList creates a new active list holding the items of sourceID that pass
// filter. Copied items get new ids, keep their order and are reset to not
// purchased. A blank newName becomes the source name plus the filter suffix.
// The bool result is false, with no error, when the source does not exist.
func (s *Service) CopyList(ctx context.Context, sourceID int64, newName string, filter model.CopyFilter) (int64, bool, error) {
	defer s.metrics.ObserveOperation("copy_list", time.Now())

	src, err := s.lists.FindListWithItems(ctx, sourceID)
	if err != nil {
		return 0, false, storageErr(err)
	}
	if src == nil {
		return 0, false, nil
	}

	name := strings.TrimSpace(newName)
	if name == "" {
		name = src.List.Name + filter.Suffix()
	}

	var items []model.Item
	for _, it := range src.Items {
		if !filter.Keep(it.Purchased) {
			continue
		}
		it.ID = 0
		it.Purchased = false
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	id, err := s.lists.InsertListWithItems(ctx, &model.List{
		Name:        name,
		CreatedAt:   s.now(),
		OwnerUserID: src.List.OwnerUserID,
	}, items)
	if err != nil {
		return 0, true, storageErr(err)
	}

	s.metrics.IncrementListsCopied()
	s.logger.Info("list copied", "source_id", sourceID, "list_id", id, "filter", filter.String(), "items", len(items))
	return id, true, nil
}

// SoftDelete moves an active list to the trash.
func (s *Service) SoftDelete(ctx context.Context, listID int64) error {
	if err := s.lists.SoftDeleteList(ctx, listID); err != nil {
		return storageErr(err)
	}
	s.metrics.RecordTransition("trash", 1)
	return nil
}

// Restore moves a trashed list back to the active lists.
func (s *Service) Restore(ctx context.Context, listID int64) error {
	if err := s.lists.RestoreList(ctx, listID); err != nil {
		return storageErr(err)
	}
	s.metrics.RecordTransition("restore", 1)
	return nil
}

// HardDelete permanently removes a trashed list and its items. An active list
// yields ErrNotTrashed.
func (s *Service) HardDelete(ctx context.Context, listID int64) error {
	l, err := s.List(ctx, listID)
	if err != nil {
		return err
	}
	if !l.Deleted {
		return ErrNotTrashed
	}
	if err := s.lists.HardDeleteList(ctx, listID); err != nil {
		return storageErr(err)
	}
	s.metrics.RecordTransition("delete", 1)
	s.logger.Info("list deleted", "list_id", listID)
	return nil
}

// EmptyTrash permanently removes every trashed list of the user.
func (s *Service) EmptyTrash(ctx context.Context, userID int64) (int64, error) {
	n, err := s.lists.EmptyTrash(ctx, userID)
	if err != nil {
		return 0, storageErr(err)
	}
	s.metrics.RecordTransition("delete", int(n))
	s.logger.Info("trash emptied", "user_id", userID, "lists", n)
	return n, nil
}

// checkStates loads every list and verifies it is in the wanted trash state.
// A missing list is ErrNotFound; a list in the wrong state is wrongState.
func (s *Service) checkStates(ctx context.Context, ids []int64, trashed bool, wrongState error) error {
	for _, id := range ids {
		l, err := s.List(ctx, id)
		if err != nil {
			return err
		}
		if l.Deleted != trashed {
			return wrongState
		}
	}
	return nil
}

// uniqueIDs drops repeated ids, keeping first occurrence order.
func uniqueIDs(ids []int64) []int64 {
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

// SoftDeleteMany moves every list in ids to the trash, or none of them.
func (s *Service) SoftDeleteMany(ctx context.Context, ids []int64) error {
	ids = uniqueIDs(ids)
	if err := s.checkStates(ctx, ids, false, ErrNotFound); err != nil {
		return err
	}
	if err := s.lists.SetListsDeleted(ctx, ids, true); err != nil {
		return storageErr(err)
	}
	s.metrics.RecordTransition("trash", len(ids))
	return nil
}

// RestoreMany moves every list in ids out of the trash, or none of them.
func (s *Service) RestoreMany(ctx context.Context, ids []int64) error {
	ids = uniqueIDs(ids)
	if err := s.checkStates(ctx, ids, true, ErrNotFound); err != nil {
		return err
	}
	if err := s.lists.SetListsDeleted(ctx, ids, false); err != nil {
		return storageErr(err)
	}
	s.metrics.RecordTransition("restore", len(ids))
	return nil
}

// HardDeleteMany permanently removes every list in ids, or none of them. All
// of them must be in the trash.
func (s *Service) HardDeleteMany(ctx context.Context, ids []int64) error {
	ids = uniqueIDs(ids)
	if err := s.checkStates(ctx, ids, true, ErrNotTrashed); err != nil {
		return err
	}
	if err := s.lists.HardDeleteLists(ctx, ids); err != nil {
		return storageErr(err)
	}
	s.metrics.RecordTransition("delete", len(ids))
	return nil
}

// StatsFor returns the purchased and total item counts of a list.
func (s *Service) StatsFor(ctx context.Context, listID int64) (purchased, total int, err error) {
	total, err = s.items.CountItems(ctx, listID)
	if err != nil {
		return 0, 0, storageErr(err)
	}
	purchased, err = s.items.CountPurchasedItems(ctx, listID)
	if err != nil {
		return 0, 0, storageErr(err)
	}
	return purchased, total, nil
}

func (s *Service) ActiveLists(ctx context.Context, userID int64) ([]model.List, error) {
	lists, err := s.lists.ActiveLists(ctx, userID)
	return lists, storageErr(err)
}

func (s *Service) TrashedLists(ctx context.Context, userID int64) ([]model.List, error) {
	lists, err := s.lists.TrashedLists(ctx, userID)
	return lists, storageErr(err)
}

func (s *Service) ActiveListsWithItems(ctx context.Context, userID int64) ([]model.ListWithItems, error) {
	lists, err := s.lists.ActiveListsWithItems(ctx, userID)
	return lists, storageErr(err)
}

// ListDetail returns a list with its items and derived progress, or ErrNotFound.
func (s *Service) ListDetail(ctx context.Context, listID int64) (*model.ListWithItems, error) {
	lwi, err := s.lists.FindListWithItems(ctx, listID)
	if err != nil {
		return nil, storageErr(err)
	}
	if lwi == nil {
		return nil, ErrNotFound
	}
	return lwi, nil
}

// WatchActiveLists streams the user's active lists with their items,
// re-emitted after every list or item change until ctx is done.
func (s *Service) WatchActiveLists(ctx context.Context, userID int64) <-chan []model.ListWithItems {
	return s.lists.LiveActiveListsWithItems(ctx, userID)
}

func (s *Service) WatchTrash(ctx context.Context, userID int64) <-chan []model.List {
	return s.lists.LiveTrashedLists(ctx, userID)
}

func (s *Service) WatchList(ctx context.Context, listID int64) <-chan *model.ListWithItems {
	return s.lists.LiveListWithItems(ctx, listID)
}

func (s *Service) WatchItems(ctx context.Context, listID int64) <-chan []model.Item {
	return s.items.LiveItemsInList(ctx, listID)
}
