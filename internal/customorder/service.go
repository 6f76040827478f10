// Package customorder implements the custom order lifecycle: creation, seller
// status changes, courier pickups, price negotiation and payment settlement.
package customorder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/notify"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

const minDescriptionLength = 10

type Service struct {
	store         *store.Store
	notify        *notify.Service
	gateway       payment.Gateway
	currency      money.Currency
	paymentExpiry time.Duration
}

func NewService(st *store.Store, notifier *notify.Service, gateway payment.Gateway, currency money.Currency, paymentExpiry time.Duration) *Service {
	return &Service{
		store:         st,
		notify:        notifier,
		gateway:       gateway,
		currency:      currency,
		paymentExpiry: paymentExpiry,
	}
}

type CreateInput struct {
	SellerID     int64      `json:"sellerId" binding:"required"`
	ImageURL     *string    `json:"imageUrl"`
	Description  string     `json:"description" binding:"required"`
	NeedsCourier bool       `json:"needsCourier"`
	Address      *string    `json:"address"`
	PickupTime   *time.Time `json:"pickupTime"`
}

func (in CreateInput) validate() error {
	if len(strings.TrimSpace(in.Description)) < minDescriptionLength {
		return apperr.Validation("description must be at least %d characters", minDescriptionLength)
	}
	if in.NeedsCourier {
		if in.Address == nil || strings.TrimSpace(*in.Address) == "" || in.PickupTime == nil || in.PickupTime.IsZero() {
			return apperr.Validation("address and pickupTime are required when a courier is needed")
		}
	}
	return nil
}

// Create places a custom order from buyerID with the seller.
func (s *Service) Create(ctx context.Context, buyerID int64, in CreateInput) (models.CustomOrder, error) {
	if err := in.validate(); err != nil {
		return models.CustomOrder{}, err
	}

	var order models.CustomOrder
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		seller, err := s.store.GetSellerByID(ctx, in.SellerID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("seller not found")
		}
		if err != nil {
			return err
		}
		if seller.UserID == buyerID {
			return apperr.Validation("you cannot place a custom order with your own store")
		}

		order = models.CustomOrder{
			UserID:            buyerID,
			SellerID:          seller.ID,
			Description:       strings.TrimSpace(in.Description),
			ImageURL:          in.ImageURL,
			Status:            models.CustomOrderPending,
			NegotiationStatus: models.NegotiationNone,
			PaymentStatus:     models.PaymentPending,
		}
		if err := s.store.CreateCustomOrder(ctx, &order); err != nil {
			return err
		}

		if in.NeedsCourier {
			courier := models.CourierRequest{
				CustomOrderID: order.ID,
				Address:       strings.TrimSpace(*in.Address),
				PickupTime:    *in.PickupTime,
			}
			if err := s.store.CreateCourierRequest(ctx, &courier); err != nil {
				return err
			}
		}

		return s.notify.Notify(ctx, seller.UserID, models.NotificationCustomOrder,
			"New Custom Order", "You have received a new custom order request.")
	})
	if err != nil {
		return models.CustomOrder{}, err
	}

	logging.FromContext(ctx).Info("custom order created",
		slog.Int64("custom_order_id", order.ID), slog.Int64(logging.KeyUserID, buyerID))
	return order, nil
}

// GetForUser lists the buyer's custom orders, newest first.
func (s *Service) GetForUser(ctx context.Context, buyerID int64) ([]models.CustomOrderDetail, error) {
	orders, err := s.store.ListCustomOrdersByUser(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, orders, true)
}

// GetForSeller lists the custom orders addressed to the seller owned by userID.
func (s *Service) GetForSeller(ctx context.Context, sellerUserID int64) ([]models.CustomOrderDetail, error) {
	seller, err := s.store.GetSellerByUserID(ctx, sellerUserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("seller profile not found")
	}
	if err != nil {
		return nil, err
	}
	orders, err := s.store.ListCustomOrdersBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, orders, true)
}

// GetByID returns the full view of one custom order to one of its parties.
func (s *Service) GetByID(ctx context.Context, userID, id int64) (models.CustomOrderDetail, error) {
	if _, _, err := s.participant(ctx, userID, id); err != nil {
		return models.CustomOrderDetail{}, err
	}
	order, err := s.store.GetCustomOrder(ctx, id)
	if err != nil {
		return models.CustomOrderDetail{}, err
	}
	out, err := s.details(ctx, []models.CustomOrder{order}, false)
	if err != nil {
		return models.CustomOrderDetail{}, err
	}
	return out[0], nil
}

func (s *Service) details(ctx context.Context, orders []models.CustomOrder, latestOnly bool) ([]models.CustomOrderDetail, error) {
	out := make([]models.CustomOrderDetail, 0, len(orders))
	for _, o := range orders {
		buyer, err := s.store.GetUserByID(ctx, o.UserID)
		if err != nil {
			return nil, err
		}
		seller, err := s.store.GetSellerSummary(ctx, o.SellerID)
		if err != nil {
			return nil, err
		}
		negotiations, err := s.store.ListNegotiations(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		if latestOnly && len(negotiations) > 1 {
			negotiations = negotiations[:1]
		}

		detail := models.CustomOrderDetail{
			CustomOrder:  o,
			Buyer:        models.UserRef{ID: buyer.ID, FullName: buyer.FullName, Email: buyer.Email},
			Seller:       seller,
			Negotiations: negotiations,
		}
		courier, err := s.store.GetActiveCourierRequest(ctx, o.ID)
		switch {
		case err == nil:
			detail.CourierRequest = &courier
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

// participant loads the parties of a custom order and the side userID acts on.
func (s *Service) participant(ctx context.Context, userID, id int64) (models.CustomOrderParties, models.Party, error) {
	parties, err := s.store.GetCustomOrderParties(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return parties, "", apperr.NotFound("custom order not found")
	}
	if err != nil {
		return parties, "", err
	}
	role := parties.Role(userID)
	if role == "" {
		return parties, "", apperr.Forbidden("you do not have access to this custom order")
	}
	return parties, role, nil
}

func (s *Service) requireSide(ctx context.Context, userID, id int64, side models.Party) (models.CustomOrderParties, error) {
	parties, role, err := s.participant(ctx, userID, id)
	if err != nil {
		return parties, err
	}
	if role != side {
		return parties, apperr.Forbidden("you do not have permission to modify this order")
	}
	return parties, nil
}

func (s *Service) loadOrder(ctx context.Context, id int64) (models.CustomOrder, error) {
	order, err := s.store.GetCustomOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return order, apperr.NotFound("custom order not found")
	}
	return order, err
}

// stale converts a lost compare-and-set into a Conflict.
func stale(err error) error {
	if errors.Is(err, store.ErrStale) {
		return apperr.Conflict("custom order was modified concurrently, reload and retry")
	}
	return err
}
