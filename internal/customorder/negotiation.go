package customorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"craftmarket/internal/apperr"
	"craftmarket/internal/lifecycle"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/store"
)

func normalizeMessage(message *string) *string {
	if message == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*message)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ProposePrice records a seller offer. It moves a pending or accepted order
// into negotiation; while negotiating it replaces the outstanding offer.
func (s *Service) ProposePrice(ctx context.Context, sellerUserID, id int64, price money.Amount, message *string) (models.PriceNegotiation, error) {
	if !price.IsPositive() {
		return models.PriceNegotiation{}, apperr.Validation("price must be positive")
	}

	offer := models.PriceNegotiation{CustomOrderID: id, ProposedBy: models.PartySeller, Price: price, Message: normalizeMessage(message)}
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		parties, err := s.requireSide(ctx, sellerUserID, id, models.PartySeller)
		if err != nil {
			return err
		}
		order, err := s.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.NegotiationStatus == models.NegotiationAgreed || !lifecycle.CanTransition(order.Status, models.CustomOrderNegotiating) {
			return apperr.Conflict(fmt.Sprintf("cannot propose a price while the order is %s", order.Status))
		}
		if err := s.store.ApplySellerProposal(ctx, id, order.Status, price); err != nil {
			return stale(err)
		}
		if err := s.store.CreateNegotiation(ctx, &offer); err != nil {
			return err
		}
		if _, err := s.store.EnsureCustomOrderConversation(ctx, id); err != nil {
			return err
		}
		return s.notify.Notify(ctx, parties.BuyerID, models.NotificationPriceNegotiation, "Price Proposal Received",
			fmt.Sprintf("The seller has proposed a price of %s for your custom order.", s.currency.Format(price)))
	})
	if err != nil {
		return models.PriceNegotiation{}, err
	}

	logging.FromContext(ctx).Info("price proposed",
		slog.Int64("custom_order_id", id), slog.Int64("negotiation_id", offer.ID), slog.Int64("price", int64(price)))
	return offer, nil
}

// CounterOffer records a buyer offer against an order under negotiation.
func (s *Service) CounterOffer(ctx context.Context, buyerID, id int64, price money.Amount, message *string) (models.PriceNegotiation, error) {
	if !price.IsPositive() {
		return models.PriceNegotiation{}, apperr.Validation("price must be positive")
	}

	offer := models.PriceNegotiation{CustomOrderID: id, ProposedBy: models.PartyBuyer, Price: price, Message: normalizeMessage(message)}
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		parties, err := s.requireSide(ctx, buyerID, id, models.PartyBuyer)
		if err != nil {
			return err
		}
		order, err := s.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != models.CustomOrderNegotiating {
			return apperr.Conflict(fmt.Sprintf("cannot counter-offer while the order is %s", order.Status))
		}
		if err := s.store.ApplyBuyerCounter(ctx, id, price); err != nil {
			return stale(err)
		}
		if err := s.store.CreateNegotiation(ctx, &offer); err != nil {
			return err
		}
		return s.notify.Notify(ctx, parties.SellerUserID, models.NotificationPriceNegotiation, "Counter Offer Received",
			fmt.Sprintf("The buyer has counter-offered %s for the custom order.", s.currency.Format(price)))
	})
	if err != nil {
		return models.PriceNegotiation{}, err
	}

	logging.FromContext(ctx).Info("counter offer made",
		slog.Int64("custom_order_id", id), slog.Int64("negotiation_id", offer.ID), slog.Int64("price", int64(price)))
	return offer, nil
}

// AcceptPrice agrees on the offer negotiationID. Only the side that did not
// author the offer may accept it; the order then awaits payment.
func (s *Service) AcceptPrice(ctx context.Context, userID, id, negotiationID int64) (models.CustomOrder, error) {
	var order models.CustomOrder
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		parties, role, err := s.participant(ctx, userID, id)
		if err != nil {
			return err
		}
		offer, err := s.store.GetNegotiation(ctx, negotiationID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && offer.CustomOrderID != id) {
			return apperr.NotFound("negotiation not found")
		}
		if err != nil {
			return err
		}
		if offer.ProposedBy == role {
			return apperr.Forbidden("you cannot accept your own offer")
		}
		if offer.Status != models.OfferPending {
			return apperr.Conflict(fmt.Sprintf("offer is %s", offer.Status))
		}

		current, err := s.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != models.CustomOrderNegotiating {
			return apperr.Conflict(fmt.Sprintf("cannot accept a price while the order is %s", current.Status))
		}
		if err := s.store.ApplyAgreement(ctx, id, offer.Price); err != nil {
			return stale(err)
		}
		if err := s.store.AcceptNegotiation(ctx, offer.ID); err != nil {
			return stale(err)
		}

		price := s.currency.Format(offer.Price)
		counterpart := parties.Counterpart(role)
		msg := fmt.Sprintf("Price of %s has been agreed for the custom order.", price)
		if counterpart == parties.BuyerID {
			msg = fmt.Sprintf("Price of %s has been agreed for your custom order.", price)
		}
		if err := s.notify.Notify(ctx, counterpart, models.NotificationPriceAgreed, "Price Agreement Reached", msg); err != nil {
			return err
		}

		order, err = s.store.GetCustomOrder(ctx, id)
		return err
	})
	if err != nil {
		return models.CustomOrder{}, err
	}

	logging.FromContext(ctx).Info("price agreed",
		slog.Int64("custom_order_id", id), slog.Int64("negotiation_id", negotiationID))
	return order, nil
}

// GetNegotiations returns the offer ledger in the order offers were made.
func (s *Service) GetNegotiations(ctx context.Context, userID, id int64) ([]models.PriceNegotiation, error) {
	if _, _, err := s.participant(ctx, userID, id); err != nil {
		return nil, err
	}
	offers, err := s.store.ListNegotiations(ctx, id)
	if err != nil {
		return nil, err
	}
	slices.Reverse(offers)
	return offers, nil
}
