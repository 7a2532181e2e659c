package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/metrics"
	"github.com/dukerupert/mercando/internal/model"
)

const minPasswordLen = 6

type UserStore interface {
	InsertUser(ctx context.Context, u *model.User) (int64, error)
	FindUserByID(ctx context.Context, id int64) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
}

type ListStore interface {
	InsertList(ctx context.Context, l *model.List) (int64, error)
	InsertListWithItems(ctx context.Context, l *model.List, items []model.Item) (int64, error)
	RenameList(ctx context.Context, id int64, name string) error
	FindListByID(ctx context.Context, id int64) (*model.List, error)
	FindListWithItems(ctx context.Context, id int64) (*model.ListWithItems, error)
	ActiveLists(ctx context.Context, userID int64) ([]model.List, error)
	TrashedLists(ctx context.Context, userID int64) ([]model.List, error)
	ActiveListsWithItems(ctx context.Context, userID int64) ([]model.ListWithItems, error)
	SoftDeleteList(ctx context.Context, id int64) error
	RestoreList(ctx context.Context, id int64) error
	SetListsDeleted(ctx context.Context, ids []int64, deleted bool) error
	HardDeleteList(ctx context.Context, id int64) error
	HardDeleteLists(ctx context.Context, ids []int64) error
	EmptyTrash(ctx context.Context, userID int64) (int64, error)
	LiveTrashedLists(ctx context.Context, userID int64) <-chan []model.List
	LiveListWithItems(ctx context.Context, id int64) <-chan *model.ListWithItems
	LiveActiveListsWithItems(ctx context.Context, userID int64) <-chan []model.ListWithItems
}

type ItemStore interface {
	InsertItem(ctx context.Context, it *model.Item) (int64, error)
	UpdateItem(ctx context.Context, it *model.Item) error
	DeleteItem(ctx context.Context, id int64) error
	SetItemPurchased(ctx context.Context, id int64, purchased bool) error
	DeletePurchasedItemsInList(ctx context.Context, listID int64) (int64, error)
	CountItems(ctx context.Context, listID int64) (int, error)
	CountPurchasedItems(ctx context.Context, listID int64) (int, error)
	FindItemByID(ctx context.Context, id int64) (*model.Item, error)
	ItemsInList(ctx context.Context, listID int64) ([]model.Item, error)
	LiveItemsInList(ctx context.Context, listID int64) <-chan []model.Item
}

// Service is the single entry point for account, list and item operations.
// It owns validation, password hashing and list state transitions; the
// stores only persist.
type Service struct {
	users   UserStore
	lists   ListStore
	items   ItemStore
	hasher  auth.Hasher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Service. m may be nil.
func New(users UserStore, lists ListStore, items ItemStore, hasher auth.Hasher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:   users,
		lists:   lists,
		items:   items,
		hasher:  hasher,
		metrics: m,
		logger:  logger.With("component", "service"),
		now:     time.Now,
	}
}
