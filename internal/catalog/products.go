// Package catalog serves finished products, seller portfolios and the
// public marketplace search.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/store"
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

type ProductInput struct {
	Name        string       `json:"name" binding:"required,min=3"`
	Description string       `json:"description" binding:"required,min=10"`
	Price       money.Amount `json:"price" binding:"required,gt=0"`
	ImageURL    *string      `json:"imageUrl" binding:"omitempty,url"`
}

type ProductUpdate struct {
	Name        *string       `json:"name" binding:"omitempty,min=3"`
	Description *string       `json:"description" binding:"omitempty,min=10"`
	Price       *money.Amount `json:"price" binding:"omitempty,gt=0"`
	ImageURL    *string       `json:"imageUrl" binding:"omitempty,url"`
}

func (s *Service) ListProducts(ctx context.Context, page, limit int64) (Page[models.ProductListing], error) {
	items, err := s.store.ListProducts(ctx, limit, (page-1)*limit)
	if err != nil {
		return Page[models.ProductListing]{}, err
	}
	total, err := s.store.CountProducts(ctx)
	if err != nil {
		return Page[models.ProductListing]{}, err
	}
	return Page[models.ProductListing]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (models.ProductListing, error) {
	p, err := s.store.GetProductListing(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.ProductListing{}, apperr.NotFound("product not found")
	}
	return p, err
}

func (s *Service) ListSellerProducts(ctx context.Context, sellerUserID int64) ([]models.Product, error) {
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	return s.store.ListProductsBySeller(ctx, seller.ID)
}

func (s *Service) CreateProduct(ctx context.Context, sellerUserID int64, in ProductInput) (models.Product, error) {
	if err := validateProduct(in.Name, in.Description, in.Price); err != nil {
		return models.Product{}, err
	}
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		SellerID:    seller.ID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		ImageURL:    in.ImageURL,
	}
	if err := s.store.CreateProduct(ctx, &p); err != nil {
		return models.Product{}, err
	}
	logging.FromContext(ctx).Info("product created", slog.Int64("product_id", p.ID), slog.Int64("seller_id", seller.ID))
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, sellerUserID, id int64, in ProductUpdate) (models.Product, error) {
	p, err := s.ownedProduct(ctx, sellerUserID, id, "you do not have permission to edit this product")
	if err != nil {
		return models.Product{}, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ImageURL != nil {
		p.ImageURL = in.ImageURL
	}
	if err := validateProduct(p.Name, p.Description, p.Price); err != nil {
		return models.Product{}, err
	}
	return s.store.UpdateProduct(ctx, p)
}

// DeleteProduct removes a product that no order line refers to.
func (s *Service) DeleteProduct(ctx context.Context, sellerUserID, id int64) error {
	return s.store.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.ownedProduct(ctx, sellerUserID, id, "you do not have permission to delete this product"); err != nil {
			return err
		}
		referenced, err := s.store.ProductReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Conflict("product has been ordered and cannot be deleted")
		}
		return s.store.DeleteProduct(ctx, id)
	})
}

func (s *Service) ownedProduct(ctx context.Context, sellerUserID, id int64, denied string) (models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Product{}, apperr.Forbidden(denied)
	}
	if err != nil {
		return models.Product{}, err
	}
	seller, err := s.store.GetSellerByUserID(ctx, sellerUserID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && seller.ID != p.SellerID) {
		return models.Product{}, apperr.Forbidden(denied)
	}
	return p, err
}

func (s *Service) seller(ctx context.Context, userID int64) (models.Seller, error) {
	seller, err := s.store.GetSellerByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Seller{}, apperr.NotFound("seller profile not found")
	}
	return seller, err
}

func validateProduct(name, description string, price money.Amount) error {
	switch {
	case len(strings.TrimSpace(name)) < 3:
		return apperr.Validation("name must be at least 3 characters")
	case len(strings.TrimSpace(description)) < 10:
		return apperr.Validation("description must be at least 10 characters")
	case !price.IsPositive():
		return apperr.Validation("price must be a positive number")
	}
	return nil
}
