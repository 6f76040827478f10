package store

import (
	"context"

	"craftmarket/internal/models"
)

const portfolioColumns = "id, seller_id, title, description, image_url, category, tags, featured, created_at"

func (s *Store) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	now := s.Now()
	id, err := s.insert(ctx, `INSERT INTO portfolios (seller_id, title, description, image_url, category, tags, featured, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.SellerID, p.Title, p.Description, p.ImageURL, p.Category, p.Tags, p.Featured, now)
	if err != nil {
		return err
	}
	p.ID, p.CreatedAt = id, now
	return nil
}

func (s *Store) GetPortfolio(ctx context.Context, id int64) (models.Portfolio, error) {
	var p models.Portfolio
	err := s.get(ctx, &p, "SELECT "+portfolioColumns+" FROM portfolios WHERE id = $1", id)
	return p, err
}

// ListPortfolio returns featured items first, newest first within each group.
func (s *Store) ListPortfolio(ctx context.Context, sellerID int64) ([]models.Portfolio, error) {
	out := []models.Portfolio{}
	err := s.selectAll(ctx, &out, "SELECT "+portfolioColumns+
		" FROM portfolios WHERE seller_id = $1 ORDER BY featured DESC, created_at DESC, id DESC", sellerID)
	return out, err
}

func (s *Store) UpdatePortfolio(ctx context.Context, p models.Portfolio) error {
	return s.execCAS(ctx, `UPDATE portfolios SET title = $1, description = $2, image_url = $3, category = $4, tags = $5, featured = $6
WHERE id = $7 AND seller_id = $8`, p.Title, p.Description, p.ImageURL, p.Category, p.Tags, p.Featured, p.ID, p.SellerID)
}

func (s *Store) SetPortfolioFeatured(ctx context.Context, id int64, featured bool) error {
	return s.execCAS(ctx, "UPDATE portfolios SET featured = $1 WHERE id = $2", featured, id)
}

func (s *Store) DeletePortfolio(ctx context.Context, id int64) error {
	return s.execCAS(ctx, "DELETE FROM portfolios WHERE id = $1", id)
}
