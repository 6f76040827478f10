// Package checkout manages the shopping cart, turns it into per-seller orders
// and opens gateway transactions for them.
package checkout

import (
	"context"
	"errors"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
	"craftmarket/internal/store"
)

func (s *Service) GetCart(ctx context.Context, userID int64) ([]models.CartItem, error) {
	return s.store.ListCart(ctx, userID)
}

// AddToCart adds quantity of a product, merging with an existing line.
func (s *Service) AddToCart(ctx context.Context, userID, productID int64, quantity int) (store.CartRow, error) {
	if quantity < 1 {
		return store.CartRow{}, apperr.Validation("quantity must be at least 1")
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.CartRow{}, apperr.NotFound("product not found")
		}
		return store.CartRow{}, err
	}
	return s.store.AddToCart(ctx, userID, productID, quantity)
}

func (s *Service) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) (store.CartRow, error) {
	if quantity < 1 {
		return store.CartRow{}, apperr.Validation("quantity must be at least 1")
	}
	row, err := s.ownedCartItem(ctx, userID, itemID)
	if err != nil {
		return store.CartRow{}, err
	}
	if err := s.store.UpdateCartQuantity(ctx, itemID, quantity); err != nil {
		return store.CartRow{}, err
	}
	row.Quantity = quantity
	return row, nil
}

func (s *Service) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	if _, err := s.ownedCartItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.store.DeleteCartItem(ctx, itemID)
}

func (s *Service) ClearCart(ctx context.Context, userID int64) (int64, error) {
	return s.store.ClearCart(ctx, userID)
}

func (s *Service) ownedCartItem(ctx context.Context, userID, itemID int64) (store.CartRow, error) {
	row, err := s.store.GetCartItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && row.UserID != userID) {
		return store.CartRow{}, apperr.Forbidden("cart item not found or does not belong to you")
	}
	return row, err
}
