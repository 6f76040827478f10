package customorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"craftmarket/internal/apperr"
	"craftmarket/internal/lifecycle"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/store"
)

// UpdateStatus applies a seller-driven status change and notifies the buyer.
func (s *Service) UpdateStatus(ctx context.Context, sellerUserID, id int64, status models.CustomOrderStatus) (models.CustomOrder, error) {
	if !status.Valid() {
		return models.CustomOrder{}, apperr.Validation("invalid status %q", status)
	}

	var order models.CustomOrder
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		parties, err := s.requireSide(ctx, sellerUserID, id, models.PartySeller)
		if err != nil {
			return err
		}
		current, err := s.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == status {
			return apperr.Conflict(fmt.Sprintf("custom order is already %s", status))
		}
		if err := lifecycle.CheckSellerStatusUpdate(current.Status, status); err != nil {
			return err
		}
		if err := s.store.TransitionCustomOrder(ctx, id, current.Status, status); err != nil {
			return stale(err)
		}
		if lifecycle.OpensConversation(status) {
			if _, err := s.store.EnsureCustomOrderConversation(ctx, id); err != nil {
				return err
			}
		}
		if err := s.notify.Notify(ctx, parties.BuyerID, models.NotificationCustomOrderUpdate,
			lifecycle.StatusUpdateTitle, lifecycle.StatusMessage(status)); err != nil {
			return err
		}
		order, err = s.store.GetCustomOrder(ctx, id)
		return err
	})
	if err != nil {
		return models.CustomOrder{}, err
	}

	logging.FromContext(ctx).Info("custom order status updated",
		slog.Int64("custom_order_id", id), slog.String("status", string(status)))
	return order, nil
}

// UpdateCourierStatus moves a courier request along its lifecycle.
func (s *Service) UpdateCourierStatus(ctx context.Context, sellerUserID, courierID int64, status models.CourierStatus) (models.CourierRequest, error) {
	if !status.Valid() {
		return models.CourierRequest{}, apperr.Validation("invalid courier status %q", status)
	}

	var courier models.CourierRequest
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		current, err := s.store.GetCourierRequest(ctx, courierID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("courier request not found")
		}
		if err != nil {
			return err
		}
		parties, err := s.requireSide(ctx, sellerUserID, current.CustomOrderID, models.PartySeller)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckCourierTransition(current.Status, status); err != nil {
			return err
		}
		if err := s.store.TransitionCourierRequest(ctx, courierID, current.Status, status); err != nil {
			return stale(err)
		}
		if err := s.notify.Notify(ctx, parties.BuyerID, models.NotificationCourierUpdate,
			lifecycle.CourierUpdateTitle, lifecycle.CourierMessage(status)); err != nil {
			return err
		}
		courier, err = s.store.GetCourierRequest(ctx, courierID)
		return err
	})
	return courier, err
}

// RequestCourier schedules a pickup for an order created without one, or
// after the previous request was cancelled.
func (s *Service) RequestCourier(ctx context.Context, buyerID, id int64, address string, pickupTime time.Time) (models.CourierRequest, error) {
	address = strings.TrimSpace(address)
	if address == "" || pickupTime.IsZero() {
		return models.CourierRequest{}, apperr.Validation("address and pickupTime are required")
	}

	courier := models.CourierRequest{CustomOrderID: id, Address: address, PickupTime: pickupTime}
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		if _, err := s.requireSide(ctx, buyerID, id, models.PartyBuyer); err != nil {
			return err
		}
		order, err := s.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == models.CustomOrderRejected || order.Status == models.CustomOrderCompleted {
			return apperr.Conflict(fmt.Sprintf("custom order is %s", order.Status))
		}
		_, err = s.store.GetActiveCourierRequest(ctx, id)
		switch {
		case err == nil:
			return apperr.Conflict("a courier request is already active for this order")
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return s.store.CreateCourierRequest(ctx, &courier)
	})
	return courier, err
}
