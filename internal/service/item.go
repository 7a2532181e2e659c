package service

import (
	"context"
	"strings"

	"github.com/dukerupert/mercando/internal/grocery"
	"github.com/dukerupert/mercando/internal/model"
)

// NewItem describes an item to add. An empty Category is guessed from the
// name; Quantity below 1 becomes 1.
type NewItem struct {
	ListID   int64
	Name     string
	Category string
	Quantity int
	Price    *float64
	Notes    *string
}

func canonicalCategory(category, name string) string {
	if strings.TrimSpace(category) == "" {
		return grocery.Categorize(name).String()
	}
	return grocery.ParseCategory(category).String()
}

// AddItem appends an item to an active list. The store assigns the order.
func (s *Service) AddItem(ctx context.Context, ni NewItem) (int64, error) {
	name := strings.TrimSpace(ni.Name)
	if name == "" {
		return 0, ErrEmptyField
	}

	l, err := s.List(ctx, ni.ListID)
	if err != nil {
		return 0, err
	}
	if l.Deleted {
		return 0, ErrNotFound
	}

	quantity := ni.Quantity
	if quantity < 1 {
		quantity = 1
	}

	id, err := s.items.InsertItem(ctx, &model.Item{
		ListID:   ni.ListID,
		Name:     name,
		Category: canonicalCategory(ni.Category, name),
		Quantity: quantity,
		Price:    ni.Price,
		Notes:    ni.Notes,
	})
	if err != nil {
		return 0, storageErr(err)
	}

	s.metrics.IncrementItemsAdded()
	return id, nil
}

// Item returns the item with the given id or ErrNotFound.
func (s *Service) Item(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.items.FindItemByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if it == nil {
		return nil, ErrNotFound
	}
	return it, nil
}

// UpdateItem saves the editable fields of it. The category is normalized the
// same way AddItem does it.
func (s *Service) UpdateItem(ctx context.Context, it *model.Item) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return ErrEmptyField
	}
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	it.Category = canonicalCategory(it.Category, it.Name)
	return storageErr(s.items.UpdateItem(ctx, it))
}

func (s *Service) MarkItemPurchased(ctx context.Context, itemID int64, purchased bool) error {
	return storageErr(s.items.SetItemPurchased(ctx, itemID, purchased))
}

func (s *Service) DeleteItem(ctx context.Context, item *model.Item) error {
	if item == nil {
		return ErrNotFound
	}
	return storageErr(s.items.DeleteItem(ctx, item.ID))
}

// DeletePurchasedItems removes every purchased item of the list and returns
// how many were removed.
func (s *Service) DeletePurchasedItems(ctx context.Context, listID int64) (int64, error) {
	n, err := s.items.DeletePurchasedItemsInList(ctx, listID)
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

// ItemsInList returns the items of a list, pending first.
func (s *Service) ItemsInList(ctx context.Context, listID int64) ([]model.Item, error) {
	items, err := s.items.ItemsInList(ctx, listID)
	return items, storageErr(err)
}
