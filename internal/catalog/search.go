package catalog

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
)

type SearchResult struct {
	Products []models.ProductListing `json:"products"`
	Sellers  []models.SellerSummary  `json:"sellers"`
}

// Search matches products by name or description and sellers by store,
// owner or skill. Sellers found both ways appear once.
func (s *Service) Search(ctx context.Context, term string) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchResult{}, apperr.Validation("search term is required")
	}

	var products []models.ProductListing
	var byName, bySkill []models.SellerSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.store.SearchProducts(gctx, term)
		return err
	})
	g.Go(func() (err error) {
		byName, err = s.store.SearchSellers(gctx, term)
		return err
	})
	g.Go(func() (err error) {
		bySkill, err = s.store.SearchSellersBySkill(gctx, term)
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}

	seen := make(map[int64]struct{}, len(byName)+len(bySkill))
	sellers := make([]models.SellerSummary, 0, len(byName)+len(bySkill))
	for _, list := range [][]models.SellerSummary{byName, bySkill} {
		for _, seller := range list {
			if _, ok := seen[seller.ID]; ok {
				continue
			}
			seen[seller.ID] = struct{}{}
			sellers = append(sellers, seller)
		}
	}
	return SearchResult{Products: products, Sellers: sellers}, nil
}

func (s *Service) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return s.store.ListSkills(ctx)
}
