package catalog

import (
	"context"
	"errors"
	"strings"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
	"craftmarket/internal/store"
)

type PortfolioInput struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	ImageURL    string   `json:"imageUrl" binding:"required,url"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
}

func (s *Service) CreatePortfolio(ctx context.Context, sellerUserID int64, in PortfolioInput) (models.Portfolio, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Portfolio{}, apperr.Validation("title is required")
	}
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return models.Portfolio{}, err
	}
	p := portfolioFromInput(in)
	p.SellerID = seller.ID
	if err := s.store.CreatePortfolio(ctx, &p); err != nil {
		return models.Portfolio{}, err
	}
	return p, nil
}

func (s *Service) ListOwnPortfolio(ctx context.Context, sellerUserID int64) ([]models.Portfolio, error) {
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return nil, err
	}
	return s.store.ListPortfolio(ctx, seller.ID)
}

func (s *Service) ListPortfolio(ctx context.Context, sellerID int64) ([]models.Portfolio, error) {
	return s.store.ListPortfolio(ctx, sellerID)
}

func (s *Service) UpdatePortfolio(ctx context.Context, sellerUserID, id int64, in PortfolioInput) (models.Portfolio, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.Portfolio{}, apperr.Validation("title is required")
	}
	current, err := s.ownedPortfolio(ctx, sellerUserID, id, "you do not have permission to update this portfolio item")
	if err != nil {
		return models.Portfolio{}, err
	}
	p := portfolioFromInput(in)
	p.ID, p.SellerID, p.CreatedAt = current.ID, current.SellerID, current.CreatedAt
	if err := s.store.UpdatePortfolio(ctx, p); err != nil {
		return models.Portfolio{}, err
	}
	return p, nil
}

func (s *Service) DeletePortfolio(ctx context.Context, sellerUserID, id int64) error {
	if _, err := s.ownedPortfolio(ctx, sellerUserID, id, "you do not have permission to delete this portfolio item"); err != nil {
		return err
	}
	return s.store.DeletePortfolio(ctx, id)
}

func (s *Service) ToggleFeatured(ctx context.Context, sellerUserID, id int64) (models.Portfolio, error) {
	p, err := s.ownedPortfolio(ctx, sellerUserID, id, "you do not have permission to modify this portfolio item")
	if err != nil {
		return models.Portfolio{}, err
	}
	p.Featured = !p.Featured
	if err := s.store.SetPortfolioFeatured(ctx, id, p.Featured); err != nil {
		return models.Portfolio{}, err
	}
	return p, nil
}

func (s *Service) ownedPortfolio(ctx context.Context, sellerUserID, id int64, denied string) (models.Portfolio, error) {
	seller, err := s.seller(ctx, sellerUserID)
	if err != nil {
		return models.Portfolio{}, err
	}
	p, err := s.store.GetPortfolio(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.SellerID != seller.ID) {
		return models.Portfolio{}, apperr.Forbidden(denied)
	}
	return p, err
}

func portfolioFromInput(in PortfolioInput) models.Portfolio {
	tags := models.StringList{}
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return models.Portfolio{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		Tags:        tags,
		Featured:    in.Featured,
	}
}
