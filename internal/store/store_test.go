package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dukerupert/mercando/internal/database"
	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/model"
)

type testStores struct {
	db     *sql.DB
	broker *live.Broker
	users  *UserStore
	lists  *ListStore
	items  *ItemStore
}

func setupTestDB(t *testing.T) *testStores {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	broker := live.NewBroker(nil)
	return &testStores{
		db:     db,
		broker: broker,
		users:  NewUserStore(db, broker),
		lists:  NewListStore(db, broker),
		items:  NewItemStore(db, broker),
	}
}

func (ts *testStores) createUser(t *testing.T, email string) int64 {
	t.Helper()
	id, err := ts.users.InsertUser(context.Background(), &model.User{
		Name: "Ana", LastName: "Ruiz", Email: email, PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func (ts *testStores) createList(t *testing.T, userID int64, name string) int64 {
	t.Helper()
	id, err := ts.lists.InsertList(context.Background(), &model.List{Name: name, OwnerUserID: userID})
	if err != nil {
		t.Fatalf("insert list: %v", err)
	}
	return id
}

func (ts *testStores) addItem(t *testing.T, listID int64, name string) int64 {
	t.Helper()
	id, err := ts.items.InsertItem(context.Background(), &model.Item{
		ListID: listID, Name: name, Category: "Otros", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	return id
}
