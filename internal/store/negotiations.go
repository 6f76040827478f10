package store

import (
	"context"

	"craftmarket/internal/models"
)

const negotiationColumns = "id, custom_order_id, proposed_by, price, message, status, created_at"

// CreateNegotiation appends an offer, superseding any offer still pending.
func (s *Store) CreateNegotiation(ctx context.Context, n *models.PriceNegotiation) error {
	return s.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.exec(ctx, "UPDATE price_negotiations SET status = $1 WHERE custom_order_id = $2 AND status = $3",
			models.OfferSuperseded, n.CustomOrderID, models.OfferPending); err != nil {
			return err
		}

		now := s.Now()
		n.Status = models.OfferPending
		id, err := s.insert(ctx, `INSERT INTO price_negotiations (custom_order_id, proposed_by, price, message, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`, n.CustomOrderID, n.ProposedBy, n.Price, n.Message, n.Status, now)
		if err != nil {
			return err
		}
		n.ID, n.CreatedAt = id, now
		return nil
	})
}

func (s *Store) GetNegotiation(ctx context.Context, id int64) (models.PriceNegotiation, error) {
	var n models.PriceNegotiation
	err := s.get(ctx, &n, "SELECT "+negotiationColumns+" FROM price_negotiations WHERE id = $1", id)
	return n, err
}

// ListNegotiations returns the offer ledger, newest first.
func (s *Store) ListNegotiations(ctx context.Context, customOrderID int64) ([]models.PriceNegotiation, error) {
	out := []models.PriceNegotiation{}
	err := s.selectAll(ctx, &out, "SELECT "+negotiationColumns+" FROM price_negotiations WHERE custom_order_id = $1 ORDER BY created_at DESC, id DESC", customOrderID)
	return out, err
}

// AcceptNegotiation flips a pending offer to accepted.
func (s *Store) AcceptNegotiation(ctx context.Context, id int64) error {
	return s.execCAS(ctx, "UPDATE price_negotiations SET status = $1 WHERE id = $2 AND status = $3",
		models.OfferAccepted, id, models.OfferPending)
}
