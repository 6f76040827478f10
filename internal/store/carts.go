package store

import (
	"context"
	"errors"

	"craftmarket/internal/models"
)

var listCartQuery = `SELECT c.id, c.user_id, c.product_id, c.quantity,
p.id AS "product.id", p.seller_id AS "product.seller_id", p.name AS "product.name",
p.description AS "product.description", p.price AS "product.price", p.image_url AS "product.image_url",
p.created_at AS "product.created_at", p.updated_at AS "product.updated_at"
FROM cart_items c JOIN products p ON p.id = c.product_id
WHERE c.user_id = $1 ORDER BY c.id`

func (s *Store) ListCart(ctx context.Context, userID int64) ([]models.CartItem, error) {
	out := []models.CartItem{}
	err := s.selectAll(ctx, &out, listCartQuery, userID)
	return out, err
}

type CartRow struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

func (s *Store) GetCartItem(ctx context.Context, id int64) (CartRow, error) {
	var row CartRow
	err := s.get(ctx, &row, "SELECT id, user_id, product_id, quantity FROM cart_items WHERE id = $1", id)
	return row, err
}

// AddToCart inserts the product or increases the existing line's quantity.
func (s *Store) AddToCart(ctx context.Context, userID, productID int64, quantity int) (CartRow, error) {
	var row CartRow
	err := s.Transact(ctx, func(ctx context.Context) error {
		err := s.get(ctx, &row, "SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id = $1 AND product_id = $2",
			userID, productID)
		switch {
		case err == nil:
			row.Quantity += quantity
			return s.execCAS(ctx, "UPDATE cart_items SET quantity = $1 WHERE id = $2", row.Quantity, row.ID)
		case errors.Is(err, ErrNotFound):
			id, err := s.insert(ctx, "INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3) RETURNING id",
				userID, productID, quantity)
			row = CartRow{ID: id, UserID: userID, ProductID: productID, Quantity: quantity}
			return err
		default:
			return err
		}
	})
	return row, err
}

func (s *Store) UpdateCartQuantity(ctx context.Context, id int64, quantity int) error {
	return s.execCAS(ctx, "UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, id)
}

func (s *Store) DeleteCartItem(ctx context.Context, id int64) error {
	return s.execCAS(ctx, "DELETE FROM cart_items WHERE id = $1", id)
}

func (s *Store) ClearCart(ctx context.Context, userID int64) (int64, error) {
	return s.exec(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
}
