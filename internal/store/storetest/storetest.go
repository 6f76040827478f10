// Package storetest opens a migrated in-memory SQLite store for tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"craftmarket/internal/database"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/store"
)

func New(t testing.TB) *store.Store {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.MigrateUp(context.Background(), db.DB, database.DialectSQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return store.New(db)
}

// Clock is a manually advanced time source.
type Clock struct {
	T time.Time
}

func NewClock() *Clock {
	return &Clock{T: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// Buyer inserts a plain user account.
func Buyer(t testing.TB, s *store.Store, username string) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FullName:     "Buyer " + username,
		Role:         models.RoleUser,
	}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Seller inserts a seller-role user and its store profile.
func Seller(t testing.TB, s *store.Store, username string) (models.User, models.Seller) {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FullName:     "Seller " + username,
		Role:         models.RoleSeller,
	}
	ctx := context.Background()
	if err := s.CreateUser(ctx, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	seller := models.Seller{UserID: u.ID, StoreName: u.FullName + "'s Store"}
	if err := s.CreateSeller(ctx, &seller); err != nil {
		t.Fatalf("create seller: %v", err)
	}
	return u, seller
}

// Product inserts a product for seller.
func Product(t testing.TB, s *store.Store, sellerID int64, name string, price int64) models.Product {
	t.Helper()
	p := models.Product{SellerID: sellerID, Name: name, Description: name + " handmade item", Price: money.Amount(price)}
	if err := s.CreateProduct(context.Background(), &p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
