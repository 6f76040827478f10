package store

import (
	"context"

	"craftmarket/internal/models"
)

const productColumns = "p.id, p.seller_id, p.name, p.description, p.price, p.image_url, p.created_at, p.updated_at"

const listingSelect = "SELECT " + productColumns + `, s.store_name, u.full_name AS seller_full_name
FROM products p JOIN sellers s ON s.id = p.seller_id JOIN users u ON u.id = s.user_id`

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := s.Now()
	id, err := s.insert(ctx, `INSERT INTO products (seller_id, name, description, price, image_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		p.SellerID, p.Name, p.Description, p.Price, p.ImageURL, now, now)
	if err != nil {
		return err
	}
	p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := s.get(ctx, &p, "SELECT "+productColumns+" FROM products p WHERE p.id = $1", id)
	return p, err
}

func (s *Store) GetProductListing(ctx context.Context, id int64) (models.ProductListing, error) {
	var p models.ProductListing
	err := s.get(ctx, &p, listingSelect+" WHERE p.id = $1", id)
	return p, err
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	out := []models.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := in("SELECT "+productColumns+" FROM products p WHERE p.id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	err = s.selectAll(ctx, &out, query, args...)
	return out, err
}

func (s *Store) ListProducts(ctx context.Context, limit, offset int64) ([]models.ProductListing, error) {
	out := []models.ProductListing{}
	err := s.selectAll(ctx, &out, listingSelect+" ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2", limit, offset)
	return out, err
}

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.get(ctx, &n, "SELECT COUNT(*) FROM products")
	return n, err
}

func (s *Store) ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	out := []models.Product{}
	err := s.selectAll(ctx, &out, "SELECT "+productColumns+" FROM products p WHERE p.seller_id = $1 ORDER BY p.created_at DESC, p.id DESC", sellerID)
	return out, err
}

func (s *Store) SearchProducts(ctx context.Context, term string) ([]models.ProductListing, error) {
	out := []models.ProductListing{}
	err := s.selectAll(ctx, &out, listingSelect+`
WHERE LOWER(p.name) LIKE LOWER($1) OR LOWER(p.description) LIKE LOWER($1)
ORDER BY p.created_at DESC, p.id DESC`, likePattern(term))
	return out, err
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	p.UpdatedAt = s.Now()
	err := s.execCAS(ctx, `UPDATE products SET name = $1, description = $2, price = $3, image_url = $4, updated_at = $5
WHERE id = $6 AND seller_id = $7`, p.Name, p.Description, p.Price, p.ImageURL, p.UpdatedAt, p.ID, p.SellerID)
	return p, err
}

// ProductReferenced reports whether any order line points at the product.
func (s *Store) ProductReferenced(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.get(ctx, &n, "SELECT COUNT(*) FROM order_items WHERE product_id = $1", id); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.execCAS(ctx, "DELETE FROM products WHERE id = $1", id)
}
